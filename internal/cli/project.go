package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/cadcad/internal/store"
)

// ProjectOptions holds flags for the project command.
type ProjectOptions struct {
	*RootOptions
	Space      string
	Projection string
	Data       string
	Database   string
	RunToken   string
}

// NewProjectCommand creates the project command. defaultDB seeds --db.
func NewProjectCommand(rootOpts *RootOptions, defaultDB string) *cobra.Command {
	opts := &ProjectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "project <specs-dir>",
		Short: "Project a point into another space",
		Long: `Validate a point of a space and map it through one of the space's
projections. The projected point is validated against the target space
and, with --db, recorded.

Example:
  cadcad project ./specs --space Agent --projection location --data @agent.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(opts, args[0], cmd, store.UUIDv7Generator{})
		},
	}

	cmd.Flags().StringVar(&opts.Space, "space", "", "source space name (required)")
	cmd.Flags().StringVar(&opts.Projection, "projection", "", "projection name (required)")
	cmd.Flags().StringVar(&opts.Data, "data", "", "source point as a JSON object (required)")
	cmd.Flags().StringVar(&opts.Database, "db", defaultDB, "record the projected point in this SQLite database")
	cmd.Flags().StringVar(&opts.RunToken, "run", "", "run token for the recorded point (default: new UUIDv7)")
	for _, name := range []string{"space", "projection", "data"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runProject(opts *ProjectOptions, specsDir string, cmd *cobra.Command, tokens store.TokenGenerator) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cat, err := loadCatalog(formatter, specsDir)
	if err != nil {
		return err
	}
	s, err := lookupSpace(formatter, cat, opts.Space)
	if err != nil {
		return err
	}
	data, err := parseData(formatter, "data", opts.Data)
	if err != nil {
		return err
	}

	p, err := s.CreatePoint(data)
	if err != nil {
		return spaceFailure(formatter, err)
	}
	projected, err := s.Project(opts.Projection, p)
	if err != nil {
		return spaceFailure(formatter, err)
	}

	id, err := projected.ID()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidData, err.Error(), nil)
	}
	result := CheckResult{Space: projected.Space().Name(), PointID: id, Data: projected.Data()}

	if opts.Database != "" {
		runToken := opts.RunToken
		if runToken == "" {
			runToken = tokens.Generate()
		}
		if err := recordPoint(cmd, formatter, opts.Database, runToken, projected, &result); err != nil {
			return err
		}
	}

	return formatter.Result(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s -> %s\n", markOK, p, projected)
		if result.Recorded {
			fmt.Fprintf(w, "  recorded as seq %d\n", result.Seq)
		}
	})
}
