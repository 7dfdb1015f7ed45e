package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/cadcad/internal/space"
)

// recordPoint writes p to the database at path and fills in result.
func recordPoint(cmd *cobra.Command, f *OutputFormatter, path, runToken string, p *space.Point, result *CheckResult) error {
	st, err := openStore(f, path, false)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := p.Record(runToken)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	seq, inserted, err := st.WritePoint(cmd.Context(), rec)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	slog.Debug("recorded point", "space", rec.Space, "id", rec.ID, "seq", seq, "inserted", inserted)

	result.Recorded = true
	result.Inserted = inserted
	result.Seq = seq
	result.RunToken = runToken
	return nil
}
