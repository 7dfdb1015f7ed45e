package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/cadcad/internal/ir"
)

// WritePoint records a validated point and returns its sequence number.
//
// The write is idempotent on rec.ID: if the point already exists nothing is
// written, inserted is false and seq is the original sequence number.
// Otherwise the point gets the next logical sequence number. rec.Seq is
// ignored.
func (s *Store) WritePoint(ctx context.Context, rec ir.PointRecord) (seq int64, inserted bool, err error) {
	if rec.ID == "" {
		return 0, false, fmt.Errorf("write point: id is required")
	}
	if rec.IRVersion == "" {
		rec.IRVersion = ir.IRVersion
	}

	dataJSON, err := marshalData(rec.Data)
	if err != nil {
		return 0, false, fmt.Errorf("write point: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("write point: begin: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `SELECT seq FROM points WHERE id = ?`, rec.ID).Scan(&seq)
	switch {
	case err == nil:
		return seq, false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, false, fmt.Errorf("write point: lookup: %w", err)
	}

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM points`).Scan(&seq); err != nil {
		return 0, false, fmt.Errorf("write point: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO points
		(id, space, shape_hash, data, run_token, seq, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Space,
		rec.ShapeHash,
		dataJSON,
		rec.RunToken,
		seq,
		rec.IRVersion,
	)
	if err != nil {
		return 0, false, fmt.Errorf("write point: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("write point: commit: %w", err)
	}
	return seq, true, nil
}
