package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/cadcad/internal/ir"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestPoint creates a record whose ID is derived from space and data.
func createTestPoint(space, runToken string, data ir.Object) ir.PointRecord {
	return ir.PointRecord{
		ID:        ir.MustPointID(space, data),
		Space:     space,
		ShapeHash: "shape-" + space,
		Data:      data,
		RunToken:  runToken,
	}
}
