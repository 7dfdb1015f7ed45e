package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cadcad/internal/ir"
)

func f64(v float64) *float64 { return &v }

func validPosition() ir.SpaceSpec {
	return ir.SpaceSpec{
		Name: "Position",
		Dimensions: []ir.DimensionSpec{
			{Name: "x", Type: ir.TypeFloat},
			{Name: "y", Type: ir.TypeFloat},
		},
		Constraints: []ir.ConstraintSpec{{Name: "inside", Kind: ir.ConstraintRange, Path: "x", Min: f64(0), Max: f64(100)}},
		Metrics:     []ir.MetricSpec{{Name: "euclidean", Kind: ir.MetricEuclidean}},
		Operations:  []string{"add"},
	}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateSpaceSpecValid(t *testing.T) {
	spec := validPosition()
	assert.Empty(t, Validate(&spec))
	assert.Empty(t, Validate(spec))
}

func TestValidateUnsupportedType(t *testing.T) {
	errs := Validate("not a spec")
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnsupportedIRType, errs[0].Code)
}

func TestValidateSpaceSpecErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ir.SpaceSpec)
		code   string
	}{
		{"missing dimensions", func(s *ir.SpaceSpec) { s.Dimensions = nil }, ErrMissingDimensions},
		{"bad space name", func(s *ir.SpaceSpec) { s.Name = "9lives" }, ErrInvalidSpaceName},
		{"dotted dimension", func(s *ir.SpaceSpec) { s.Dimensions[0].Name = "a.b" }, ErrInvalidDimension},
		{"invalid type", func(s *ir.SpaceSpec) { s.Dimensions[0].Type = "double" }, ErrInvalidFieldType},
		{"reference without name", func(s *ir.SpaceSpec) { s.Dimensions[0] = ir.DimensionSpec{Name: "x", Type: ir.TypeSpace} }, ErrInvalidFieldType},
		{"duplicate dimension", func(s *ir.SpaceSpec) { s.Dimensions[1].Name = "x" }, ErrDuplicateName},
		{"nested invalid type", func(s *ir.SpaceSpec) {
			s.Dimensions[0] = ir.DimensionSpec{Name: "x", Type: ir.TypeObject, Fields: []ir.DimensionSpec{{Name: "z", Type: "number"}}}
		}, ErrInvalidFieldType},
		{"unknown constraint kind", func(s *ir.SpaceSpec) { s.Constraints[0].Kind = "regex" }, ErrInvalidConstraint},
		{"constraint without path", func(s *ir.SpaceSpec) { s.Constraints[0].Path = "" }, ErrInvalidConstraint},
		{"unbounded range", func(s *ir.SpaceSpec) { s.Constraints[0].Min, s.Constraints[0].Max = nil, nil }, ErrInvalidConstraint},
		{"inverted range", func(s *ir.SpaceSpec) { s.Constraints[0].Min = f64(200) }, ErrInvalidConstraint},
		{"unknown metric kind", func(s *ir.SpaceSpec) { s.Metrics[0].Kind = "cosine" }, ErrInvalidMetric},
		{"projection without target", func(s *ir.SpaceSpec) {
			s.Projections = []ir.ProjectionSpec{{Name: "p", Fields: map[string]string{"a": "x"}}}
		}, ErrInvalidProjection},
		{"projection without fields", func(s *ir.SpaceSpec) {
			s.Projections = []ir.ProjectionSpec{{Name: "p", Target: "Real"}}
		}, ErrInvalidProjection},
		{"unknown operation", func(s *ir.SpaceSpec) { s.Operations = []string{"xor"} }, ErrUnknownOperation},
		{"duplicate operation", func(s *ir.SpaceSpec) { s.Operations = []string{"add", "add"} }, ErrDuplicateName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validPosition()
			tt.mutate(&spec)

			errs := Validate(&spec)

			require.Len(t, errs, 1, "%v", errs)
			assert.Equal(t, tt.code, errs[0].Code)
		})
	}
}

func TestValidateAll(t *testing.T) {
	agent := ir.SpaceSpec{
		Name:       "Agent",
		Dimensions: []ir.DimensionSpec{{Name: "pos", Type: ir.TypeSpace, Ref: "Position"}},
		Projections: []ir.ProjectionSpec{
			{Name: "location", Target: "Position", Fields: map[string]string{"x": "pos.x", "y": "pos.y"}},
		},
	}

	t.Run("valid set", func(t *testing.T) {
		assert.Empty(t, ValidateAll([]ir.SpaceSpec{agent, validPosition()}))
	})

	t.Run("unresolved references", func(t *testing.T) {
		errs := ValidateAll([]ir.SpaceSpec{agent})
		assert.Equal(t, []string{ErrUnresolvedReference, ErrUnresolvedReference}, codes(errs))
		assert.Equal(t, "space.Agent.dimensions", errs[0].Field)
	})

	t.Run("primitive spaces resolve", func(t *testing.T) {
		wrap := ir.SpaceSpec{Name: "Wrap", Dimensions: []ir.DimensionSpec{{Name: "r", Type: ir.TypeSpace, Ref: "Real"}}}
		assert.Empty(t, ValidateAll([]ir.SpaceSpec{wrap}))
	})

	t.Run("duplicate space names", func(t *testing.T) {
		errs := ValidateAll([]ir.SpaceSpec{validPosition(), validPosition()})
		assert.Equal(t, []string{ErrDuplicateName}, codes(errs))
	})

	t.Run("shadowing a primitive", func(t *testing.T) {
		shadow := ir.SpaceSpec{Name: "Real", Dimensions: []ir.DimensionSpec{}}
		assert.Equal(t, []string{ErrDuplicateName}, codes(ValidateAll([]ir.SpaceSpec{shadow})))
	})

	t.Run("per-spec errors are prefixed", func(t *testing.T) {
		bad := validPosition()
		bad.Operations = []string{"xor"}
		errs := ValidateAll([]ir.SpaceSpec{bad})
		require.Len(t, errs, 1)
		assert.Equal(t, "space.Position.operations[0]", errs[0].Field)
	})

	t.Run("cycles", func(t *testing.T) {
		a := ir.SpaceSpec{Name: "A", Dimensions: []ir.DimensionSpec{{Name: "b", Type: ir.TypeSpace, Ref: "B"}}}
		b := ir.SpaceSpec{Name: "B", Dimensions: []ir.DimensionSpec{{Name: "a", Type: ir.TypeSpace, Ref: "A"}}}
		errs := ValidateAll([]ir.SpaceSpec{a, b})
		assert.Equal(t, []string{ErrReferenceCycle}, codes(errs))
	})
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Field: "dimensions", Message: "dimensions are required", Code: ErrMissingDimensions}
	assert.Equal(t, "[E101] dimensions: dimensions are required", e.Error())

	e.Line = 4
	assert.Equal(t, "[E101] line 4: dimensions: dimensions are required", e.Error())
}
