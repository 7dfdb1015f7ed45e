package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cadcad/internal/ir"
)

func refSpec(name string, refs ...string) ir.SpaceSpec {
	spec := ir.SpaceSpec{Name: name, Dimensions: []ir.DimensionSpec{}}
	for _, ref := range refs {
		spec.Dimensions = append(spec.Dimensions, ir.DimensionSpec{Name: "to" + ref, Type: ir.TypeSpace, Ref: ref})
	}
	return spec
}

func TestFindCycles_Empty(t *testing.T) {
	assert.Empty(t, FindCycles(nil))
}

func TestFindCycles_DAG(t *testing.T) {
	specs := []ir.SpaceSpec{
		refSpec("Agent", "Position", "Velocity"),
		refSpec("Position"),
		refSpec("Velocity", "Position"),
	}
	assert.Empty(t, FindCycles(specs))
}

func TestFindCycles_SelfReference(t *testing.T) {
	cycles := FindCycles([]ir.SpaceSpec{refSpec("Node", "Node")})

	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"Node", "Node"}, cycles[0].Path)
	assert.Contains(t, cycles[0].Message, "references itself")
}

func TestFindCycles_ThreeNodeCycle(t *testing.T) {
	specs := []ir.SpaceSpec{
		refSpec("C", "A"),
		refSpec("A", "B"),
		refSpec("B", "C"),
		refSpec("Free"),
	}

	cycles := FindCycles(specs)

	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"A", "B", "C", "A"}, cycles[0].Path)
	assert.Equal(t, "reference cycle: A -> B -> C -> A", cycles[0].Message)
}

func TestFindCycles_NestedReferencesCount(t *testing.T) {
	a := ir.SpaceSpec{Name: "A", Dimensions: []ir.DimensionSpec{
		{Name: "inner", Type: ir.TypeObject, Fields: []ir.DimensionSpec{{Name: "b", Type: ir.TypeSpace, Ref: "B"}}},
	}}
	b := refSpec("B", "A")

	cycles := FindCycles([]ir.SpaceSpec{a, b})

	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"A", "B", "A"}, cycles[0].Path)
}

func TestFindCycles_ProjectionsAreNotEdges(t *testing.T) {
	a := refSpec("A")
	a.Projections = []ir.ProjectionSpec{{Name: "toB", Target: "B"}}
	b := refSpec("B")
	b.Projections = []ir.ProjectionSpec{{Name: "toA", Target: "A"}}

	assert.Empty(t, FindCycles([]ir.SpaceSpec{a, b}))
}

func TestFindCycles_Deterministic(t *testing.T) {
	specs := []ir.SpaceSpec{
		refSpec("Y", "X"), refSpec("X", "Y"),
		refSpec("B", "A"), refSpec("A", "B"),
	}

	first := FindCycles(specs)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, FindCycles(specs))
	}
	require.Len(t, first, 2)
	assert.Equal(t, "A", first[0].Path[0])
	assert.Equal(t, "X", first[1].Path[0])
}
