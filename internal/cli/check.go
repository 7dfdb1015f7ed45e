package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/cadcad/internal/ir"
	"github.com/roach88/cadcad/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Space    string
	Data     string
	Database string
	RunToken string
}

// CheckResult describes a validated point.
type CheckResult struct {
	Space    string    `json:"space"`
	PointID  string    `json:"point_id"`
	Data     ir.Object `json:"data"`
	Recorded bool      `json:"recorded"`
	Inserted bool      `json:"inserted,omitempty"`
	Seq      int64     `json:"seq,omitempty"`
	RunToken string    `json:"run_token,omitempty"`
}

// NewCheckCommand creates the check command. defaultDB seeds --db.
func NewCheckCommand(rootOpts *RootOptions, defaultDB string) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <specs-dir>",
		Short: "Validate a point against a space",
		Long: `Validate JSON data as a point of a space: the data must match the
space's dimensions exactly and satisfy every constraint.

With --db the validated point is recorded. Recording is idempotent:
checking the same data twice stores one point.

Exit codes:
  0 - Point is valid
  1 - Dimension mismatch or constraint violation
  2 - Command error (unloadable specs, bad JSON, database errors)

Examples:
  cadcad check ./specs --space Position --data '{"x": 1.0, "y": 2.0}'
  cadcad check ./specs --space Position --data '{"x": 1.0, "y": 2.0}' --db points.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd, store.UUIDv7Generator{})
		},
	}

	cmd.Flags().StringVar(&opts.Space, "space", "", "space name (required)")
	cmd.Flags().StringVar(&opts.Data, "data", "", "point data as a JSON object (required)")
	cmd.Flags().StringVar(&opts.Database, "db", defaultDB, "record the point in this SQLite database")
	cmd.Flags().StringVar(&opts.RunToken, "run", "", "run token for the recorded point (default: new UUIDv7)")
	_ = cmd.MarkFlagRequired("space")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runCheck(opts *CheckOptions, specsDir string, cmd *cobra.Command, tokens store.TokenGenerator) error {
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

	id, err := p.ID()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidData, err.Error(), nil)
	}
	result := CheckResult{Space: s.Name(), PointID: id, Data: p.Data()}

	if opts.Database != "" {
		runToken := opts.RunToken
		if runToken == "" {
			runToken = tokens.Generate()
		}
		if err := recordPoint(cmd, formatter, opts.Database, runToken, p, &result); err != nil {
			return err
		}
	}

	return formatter.Result(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s %s\n", markOK, p)
		fmt.Fprintf(w, "  id: %s\n", result.PointID)
		if result.Recorded {
			state := "recorded"
			if !result.Inserted {
				state = "already recorded"
			}
			fmt.Fprintf(w, "  %s as seq %d\n", state, result.Seq)
		}
	})
}
