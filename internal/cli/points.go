package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/cadcad/internal/ir"
)

// PointsOptions holds flags for the points command.
type PointsOptions struct {
	*RootOptions
	Database string
	Space    string
	RunToken string
}

// PointsResult lists recorded points.
type PointsResult struct {
	Points []ir.PointRecord `json:"points"`
	Total  int              `json:"total"`
}

// NewPointsCommand creates the points command. defaultDB seeds --db.
func NewPointsCommand(rootOpts *RootOptions, defaultDB string) *cobra.Command {
	opts := &PointsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "points",
		Short: "List recorded points",
		Long: `List the points recorded in a database in sequence order.

Examples:
  cadcad points --db points.db
  cadcad points --db points.db --space Position
  cadcad points --db points.db --run 0190f5c2-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPoints(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", defaultDB, "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Space, "space", "", "only list points of this space")
	cmd.Flags().StringVar(&opts.RunToken, "run", "", "only list points recorded under this run token")

	return cmd
}

func runPoints(opts *PointsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	st, err := openStore(formatter, opts.Database, true)
	if err != nil {
		return err
	}
	defer st.Close()

	var points []ir.PointRecord
	if opts.RunToken != "" {
		points, err = st.ListRun(ctx, opts.RunToken)
	} else {
		points, err = st.ListPoints(ctx, opts.Space)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	if opts.RunToken != "" && opts.Space != "" {
		points = filterSpace(points, opts.Space)
	}

	result := PointsResult{Points: points, Total: len(points)}
	return formatter.Result(result, func(w io.Writer) {
		if len(points) == 0 {
			fmt.Fprintln(w, "No points recorded.")
			return
		}
		for _, p := range points {
			fmt.Fprintf(w, "%4d  %s%s\n", p.Seq, p.Space, canonical(p.Data))
			if formatter.Verbose {
				fmt.Fprintf(w, "      id: %s run: %s\n", p.ID, p.RunToken)
			}
		}
		fmt.Fprintf(w, "\n%d point(s)\n", len(points))
	})
}

func filterSpace(points []ir.PointRecord, spaceName string) []ir.PointRecord {
	out := points[:0]
	for _, p := range points {
		if p.Space == spaceName {
			out = append(out, p)
		}
	}
	return out
}
