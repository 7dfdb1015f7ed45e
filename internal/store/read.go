package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/cadcad/internal/ir"
)

const pointColumns = `id, space, shape_hash, data, run_token, seq, ir_version`

// ReadPoint returns the point with the given ID. found is false when no such
// point exists.
func (s *Store) ReadPoint(ctx context.Context, id string) (rec ir.PointRecord, found bool, err error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pointColumns+` FROM points WHERE id = ?`, id)
	rec, err = scanPoint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.PointRecord{}, false, nil
	}
	if err != nil {
		return ir.PointRecord{}, false, fmt.Errorf("read point: %w", err)
	}
	return rec, true, nil
}

// ListPoints returns the points of one space, or of every space when
// spaceName is empty, in deterministic order.
//
// Returns an empty slice (not nil) if no points exist.
func (s *Store) ListPoints(ctx context.Context, spaceName string) ([]ir.PointRecord, error) {
	if spaceName == "" {
		return s.queryPoints(ctx, `
			SELECT `+pointColumns+`
			FROM points
			ORDER BY seq ASC, id COLLATE BINARY ASC
		`)
	}
	return s.queryPoints(ctx, `
		SELECT `+pointColumns+`
		FROM points
		WHERE space = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, spaceName)
}

// ListRun returns the points first recorded under runToken, in
// deterministic order.
func (s *Store) ListRun(ctx context.Context, runToken string) ([]ir.PointRecord, error) {
	return s.queryPoints(ctx, `
		SELECT `+pointColumns+`
		FROM points
		WHERE run_token = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runToken)
}

// CountPoints counts the points of one space, or of every space when
// spaceName is empty.
func (s *Store) CountPoints(ctx context.Context, spaceName string) (int, error) {
	var count int
	var err error
	if spaceName == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM points`).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM points WHERE space = ?`, spaceName).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return count, nil
}

func (s *Store) queryPoints(ctx context.Context, query string, args ...any) ([]ir.PointRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	points := []ir.PointRecord{}
	for rows.Next() {
		rec, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate points: %w", err)
	}
	return points, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoint(row rowScanner) (ir.PointRecord, error) {
	var rec ir.PointRecord
	var dataJSON string
	if err := row.Scan(&rec.ID, &rec.Space, &rec.ShapeHash, &dataJSON, &rec.RunToken, &rec.Seq, &rec.IRVersion); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan point: %w", err)
	}
	data, err := unmarshalData(dataJSON)
	if err != nil {
		return rec, fmt.Errorf("point %s: %w", rec.ID, err)
	}
	rec.Data = data
	return rec, nil
}
