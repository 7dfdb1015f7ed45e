package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cadcad/internal/ir"
)

func TestWritePoint_AssignsSequentialSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i, x := range []int64{1, 2, 3} {
		seq, inserted, err := s.WritePoint(ctx, createTestPoint("Counter", "run-1", ir.Object{"n": ir.Int(x)}))
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.Equal(t, int64(i+1), seq)
	}
}

func TestWritePoint_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := createTestPoint("Counter", "run-1", ir.Object{"n": ir.Int(7)})
	seq1, inserted, err := s.WritePoint(ctx, rec)
	require.NoError(t, err)
	require.True(t, inserted)

	_, _, err = s.WritePoint(ctx, createTestPoint("Counter", "run-1", ir.Object{"n": ir.Int(8)}))
	require.NoError(t, err)

	rec.RunToken = "run-2"
	seq2, inserted, err := s.WritePoint(ctx, rec)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, seq1, seq2)

	count, err := s.CountPoints(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stored, found, err := s.ReadPoint(ctx, rec.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "run-1", stored.RunToken, "first write wins")
}

func TestWritePoint_RequiresID(t *testing.T) {
	s := createTestStore(t)

	_, _, err := s.WritePoint(context.Background(), ir.PointRecord{Space: "S"})

	assert.ErrorContains(t, err, "id is required")
}

func TestWritePoint_RejectsNonFiniteData(t *testing.T) {
	s := createTestStore(t)
	rec := ir.PointRecord{ID: "x", Space: "S", Data: ir.Object{"bad": ir.Float(posInf())}}

	_, _, err := s.WritePoint(context.Background(), rec)

	assert.ErrorContains(t, err, "non-finite")
}

func TestWritePoint_DefaultsIRVersion(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	rec := createTestPoint("S", "run", ir.Object{})

	_, _, err := s.WritePoint(ctx, rec)
	require.NoError(t, err)

	stored, _, err := s.ReadPoint(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, ir.IRVersion, stored.IRVersion)
}

func TestWritePoint_CancelledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.WritePoint(ctx, createTestPoint("S", "run", ir.Object{}))

	assert.Error(t, err)
}
