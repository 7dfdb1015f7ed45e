package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// DistanceOptions holds flags for the distance command.
type DistanceOptions struct {
	*RootOptions
	Space  string
	Metric string
	A      string
	B      string
}

// DistanceResult is the measured distance between two points.
type DistanceResult struct {
	Space    string  `json:"space"`
	Metric   string  `json:"metric"`
	Distance float64 `json:"distance"`
}

// NewDistanceCommand creates the distance command.
func NewDistanceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DistanceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "distance <specs-dir>",
		Short: "Measure the distance between two points",
		Long: `Validate two points of a space and measure the distance between them
with one of the space's metrics.

Example:
  cadcad distance ./specs --space Position --metric euclidean \
    --a '{"x": 0.0, "y": 0.0}' --b '{"x": 3.0, "y": 4.0}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDistance(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Space, "space", "", "space name (required)")
	cmd.Flags().StringVar(&opts.Metric, "metric", "", "metric name (required)")
	cmd.Flags().StringVar(&opts.A, "a", "", "first point as a JSON object (required)")
	cmd.Flags().StringVar(&opts.B, "b", "", "second point as a JSON object (required)")
	for _, name := range []string{"space", "metric", "a", "b"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runDistance(opts *DistanceOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cat, err := loadCatalog(formatter, specsDir)
	if err != nil {
		return err
	}
	s, err := lookupSpace(formatter, cat, opts.Space)
	if err != nil {
		return err
	}
	dataA, err := parseData(formatter, "a", opts.A)
	if err != nil {
		return err
	}
	dataB, err := parseData(formatter, "b", opts.B)
	if err != nil {
		return err
	}

	a, err := s.CreatePoint(dataA)
	if err != nil {
		return spaceFailure(formatter, err)
	}
	b, err := s.CreatePoint(dataB)
	if err != nil {
		return spaceFailure(formatter, err)
	}
	d, err := s.Distance(opts.Metric, a, b)
	if err != nil {
		return spaceFailure(formatter, err)
	}

	result := DistanceResult{Space: s.Name(), Metric: opts.Metric, Distance: d}
	return formatter.Result(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s.%s(%s, %s) = %g\n", s.Name(), opts.Metric, canonical(a.Data()), canonical(b.Data()), d)
	})
}
