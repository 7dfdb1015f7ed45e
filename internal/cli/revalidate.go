package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/cadcad/internal/compiler"
	"github.com/roach88/cadcad/internal/ir"
	"github.com/roach88/cadcad/internal/space"
)

// RevalidateOptions holds flags for the revalidate command.
type RevalidateOptions struct {
	*RootOptions
	Database string
	Space    string
}

// Revalidation statuses.
const (
	StatusValid        = "valid"
	StatusDrifted      = "drifted"       // shape changed but the data still validates
	StatusInvalid      = "invalid"       // data fails the current space
	StatusUnknownSpace = "unknown_space" // the space no longer exists
)

// RevalidatedPoint is the verdict for one recorded point.
type RevalidatedPoint struct {
	ID     string `json:"id"`
	Space  string `json:"space"`
	Seq    int64  `json:"seq"`
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// RevalidateResult holds the overall revalidation result.
type RevalidateResult struct {
	Points  []RevalidatedPoint `json:"points"`
	Total   int                `json:"total"`
	Valid   int                `json:"valid"`
	Drifted int                `json:"drifted"`
	Failed  int                `json:"failed"`
}

// NewRevalidateCommand creates the revalidate command. defaultDB seeds --db.
func NewRevalidateCommand(rootOpts *RootOptions, defaultDB string) *cobra.Command {
	opts := &RevalidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "revalidate <specs-dir>",
		Short: "Re-check recorded points against the current specs",
		Long: `Re-read every recorded point in sequence order and validate it again
against the current space definitions.

A point whose space changed shape since it was recorded is reported as
drifted if its data still validates, and as invalid otherwise.

Exit codes:
  0 - Every point still validates
  1 - One or more points are invalid or belong to an unknown space
  2 - Command error (database not found, unloadable specs, etc.)

Examples:
  cadcad revalidate ./specs --db points.db
  cadcad revalidate ./specs --db points.db --space Position --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRevalidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", defaultDB, "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Space, "space", "", "only revalidate points of this space")

	return cmd
}

func runRevalidate(opts *RevalidateOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cat, err := loadCatalog(formatter, specsDir)
	if err != nil {
		return err
	}

	st, err := openStore(formatter, opts.Database, true)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.ListPoints(cmd.Context(), opts.Space)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := RevalidateResult{Points: make([]RevalidatedPoint, 0, len(records)), Total: len(records)}
	for _, rec := range records {
		verdict := revalidatePoint(cat, rec)
		switch verdict.Status {
		case StatusValid:
			result.Valid++
		case StatusDrifted:
			result.Drifted++
		default:
			result.Failed++
		}
		formatter.VerboseLog("seq %d %s: %s", rec.Seq, rec.Space, verdict.Status)
		result.Points = append(result.Points, verdict)
	}

	if formatter.IsJSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if result.Failed > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{Code: "E_REVALIDATE_FAILED", Message: fmt.Sprintf("%d point(s) failed revalidation", result.Failed)}
		}
		if err := formatter.encode(resp); err != nil {
			return err
		}
	} else {
		outputRevalidateText(formatter.Writer, result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d point(s) failed revalidation", result.Failed))
	}
	return nil
}

// revalidatePoint checks one record against the catalog.
func revalidatePoint(cat *compiler.Catalog, rec ir.PointRecord) RevalidatedPoint {
	verdict := RevalidatedPoint{ID: rec.ID, Space: rec.Space, Seq: rec.Seq}

	s, ok := cat.Lookup(rec.Space)
	if !ok {
		verdict.Status = StatusUnknownSpace
		verdict.Reason = fmt.Sprintf("space %q is not defined", rec.Space)
		return verdict
	}

	hash, err := s.Shape().Hash()
	drifted := err != nil || hash != rec.ShapeHash

	if _, err := s.CreatePoint(rec.Data); err != nil {
		verdict.Status = StatusInvalid
		verdict.Reason = err.Error()
		var spaceErr *space.Error
		if errors.As(err, &spaceErr) {
			verdict.Code = string(spaceErr.Code)
		}
		return verdict
	}

	verdict.Status = StatusValid
	if drifted {
		verdict.Status = StatusDrifted
		verdict.Reason = "space shape changed since the point was recorded"
	}
	return verdict
}

func outputRevalidateText(w io.Writer, result RevalidateResult) {
	for _, p := range result.Points {
		mark := markOK
		if p.Status == StatusInvalid || p.Status == StatusUnknownSpace {
			mark = markFail
		}
		fmt.Fprintf(w, "%s %4d %s %s", mark, p.Seq, p.Space, p.Status)
		if p.Reason != "" {
			fmt.Fprintf(w, ": %s", p.Reason)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\nRevalidated %d point(s): %d valid, %d drifted, %d failed\n",
		result.Total, result.Valid, result.Drifted, result.Failed)
}
