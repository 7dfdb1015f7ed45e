package store

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cadcad/internal/ir"
)

func posInf() float64 { return math.Inf(1) }

func TestReadPoint_RoundTripsKinds(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	data := ir.Object{
		"i":    ir.Int(3),
		"f":    ir.Float(3),
		"big":  ir.Int(1 << 60),
		"s":    ir.String("caf\u00e9"),
		"b":    ir.Bool(true),
		"l":    ir.List{ir.Int(1), ir.Float(1.5)},
		"nest": ir.Object{"x": ir.Float(-0.25)},
	}
	rec := createTestPoint("Mixed", "run", data)
	_, _, err := s.WritePoint(ctx, rec)
	require.NoError(t, err)

	got, found, err := s.ReadPoint(ctx, rec.ID)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, data, got.Data)
	assert.IsType(t, ir.Float(0), got.Data["f"], "3.0 stays a float")
	assert.Equal(t, "Mixed", got.Space)
	assert.Equal(t, "shape-Mixed", got.ShapeHash)
	assert.Equal(t, int64(1), got.Seq)
}

func TestReadPoint_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, found, err := s.ReadPoint(context.Background(), "missing")

	require.NoError(t, err)
	assert.False(t, found)
}

func TestListPoints_FiltersAndOrders(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	writes := []ir.PointRecord{
		createTestPoint("A", "run", ir.Object{"n": ir.Int(1)}),
		createTestPoint("B", "run", ir.Object{"n": ir.Int(1)}),
		createTestPoint("A", "run", ir.Object{"n": ir.Int(2)}),
	}
	for _, rec := range writes {
		_, _, err := s.WritePoint(ctx, rec)
		require.NoError(t, err)
	}

	all, err := s.ListPoints(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, rec := range all {
		assert.Equal(t, int64(i+1), rec.Seq)
		assert.Equal(t, writes[i].ID, rec.ID)
	}

	onlyA, err := s.ListPoints(ctx, "A")
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.Equal(t, int64(1), onlyA[0].Seq)
	assert.Equal(t, int64(3), onlyA[1].Seq)

	count, err := s.CountPoints(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestListPoints_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)

	points, err := s.ListPoints(context.Background(), "nothing")

	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestListRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, rec := range []ir.PointRecord{
		createTestPoint("A", "run-1", ir.Object{"n": ir.Int(1)}),
		createTestPoint("A", "run-2", ir.Object{"n": ir.Int(2)}),
		createTestPoint("B", "run-1", ir.Object{"n": ir.Int(3)}),
	} {
		_, _, err := s.WritePoint(ctx, rec)
		require.NoError(t, err)
	}

	run1, err := s.ListRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, run1, 2)
	assert.Equal(t, "A", run1[0].Space)
	assert.Equal(t, "B", run1[1].Space)
}
