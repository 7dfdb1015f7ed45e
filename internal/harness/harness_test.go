package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var specsDir = filepath.Join("..", "..", "testdata", "specs")

func TestRun_CreateAndRecord(t *testing.T) {
	scenario := &Scenario{
		Name:        "create",
		Description: "d",
		Specs:       specsDir,
		RunToken:    "run-1",
		Steps: []Step{
			{Create: "Position", Data: map[string]any{"x": 1.0, "y": 2.0}},
			{Create: "Position", Data: map[string]any{"x": 3.0, "y": 4.0}},
		},
		Assertions: []Assertion{{Type: AssertStoredCount, Space: "Position", Count: 2}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 2)
	assert.Equal(t, OutcomeOK, result.Trace[0].Outcome)
	assert.Equal(t, int64(1), result.Trace[0].Seq)
	assert.Equal(t, int64(2), result.Trace[1].Seq)
	assert.NotEmpty(t, result.Trace[0].PointID)
}

func TestRun_UnexpectedFailure(t *testing.T) {
	scenario := &Scenario{
		Name:        "unexpected",
		Description: "d",
		Specs:       specsDir,
		Steps: []Step{
			{Create: "Position", Data: map[string]any{"x": 1, "y": 2.0}},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected outcome ok, got dimension_mismatch")
	assert.Equal(t, OutcomeDimensionMismatch, result.Trace[0].Outcome)
	assert.Empty(t, result.Trace[0].PointID)
}

func TestRun_ExpectedFailureWrongConstraint(t *testing.T) {
	scenario := &Scenario{
		Name:        "constraint",
		Description: "d",
		Specs:       specsDir,
		Steps: []Step{{
			Create: "Position",
			Data:   map[string]any{"x": -1.0, "y": 0.0},
			Expect: &ExpectClause{Error: OutcomeConstraintViolation, Constraint: "elsewhere"},
		}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, "inside", result.Trace[0].Constraint)
	assert.Contains(t, result.Errors[0], `expected constraint "elsewhere", got "inside"`)
}

func TestRun_ExpectValueAndData(t *testing.T) {
	wrong := 4.0
	scenario := &Scenario{
		Name:        "values",
		Description: "d",
		Specs:       specsDir,
		Steps: []Step{
			{
				Distance: "euclidean",
				Space:    "Position",
				A:        map[string]any{"x": 0.0, "y": 0.0},
				B:        map[string]any{"x": 3.0, "y": 4.0},
				Expect:   &ExpectClause{Value: &wrong},
			},
			{
				Apply:  "sub",
				Space:  "Position",
				A:      map[string]any{"x": 5.0, "y": 5.0},
				B:      map[string]any{"x": 1.0, "y": 2.0},
				Expect: &ExpectClause{Data: map[string]any{"x": 4.0, "y": 3.0}},
			},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected value 4, got 5")
	require.NotNil(t, result.Trace[0].Value)
	assert.InDelta(t, 5.0, *result.Trace[0].Value, 1e-12)
	assert.Equal(t, OutcomeOK, result.Trace[1].Outcome)
}

func TestRun_PrimitiveSpaces(t *testing.T) {
	scenario := &Scenario{
		Name:        "primitives",
		Description: "d",
		Specs:       specsDir,
		Steps: []Step{
			{Create: "Bit", Data: map[string]any{"bit": true}},
			{Apply: "and", Space: "Bit", A: map[string]any{"bit": true}, B: map[string]any{"bit": false},
				Expect: &ExpectClause{Error: OutcomeUnknownOperation}},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_OperationFailureIsAnOutcome(t *testing.T) {
	scenario := &Scenario{
		Name:        "operation_failure",
		Description: "d",
		Specs:       specsDir,
		Steps: []Step{
			{Apply: "floordiv", Space: "Counter", A: map[string]any{"n": 7}, B: map[string]any{"n": 0},
				Expect: &ExpectClause{Error: OutcomeOperationFailed}},
			{Apply: "mul", Space: "Counter", A: map[string]any{"n": int64(1) << 62}, B: map[string]any{"n": 4},
				Expect: &ExpectClause{Error: OutcomeOperationFailed}},
			{Apply: "floordiv", Space: "Counter", A: map[string]any{"n": 7}, B: map[string]any{"n": 2},
				Expect: &ExpectClause{Data: map[string]any{"n": 3}}},
		},
		Assertions: []Assertion{
			{Type: AssertOutcomeCount, Outcome: OutcomeOperationFailed, Count: 2},
			{Type: AssertStoredCount, Space: "Counter", Count: 1},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 3)
	assert.Contains(t, result.Trace[0].Message, "division by zero")
	assert.Contains(t, result.Trace[1].Message, "integer overflow")
	assert.Empty(t, result.Trace[0].PointID)
}

func TestRun_UnknownSpace(t *testing.T) {
	scenario := &Scenario{
		Name:        "unknown",
		Description: "d",
		Specs:       specsDir,
		Steps:       []Step{{Create: "Nowhere", Data: map[string]any{}}},
	}

	_, err := Run(context.Background(), scenario)

	assert.ErrorContains(t, err, `unknown space "Nowhere"`)
}

func TestRun_NullData(t *testing.T) {
	scenario := &Scenario{
		Name:        "null",
		Description: "d",
		Specs:       specsDir,
		Steps:       []Step{{Create: "Position", Data: map[string]any{"x": nil, "y": 1.0}}},
	}

	_, err := Run(context.Background(), scenario)

	assert.ErrorContains(t, err, "null")
}

func TestRun_BadSpecs(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad",
		Description: "d",
		Specs:       t.TempDir(),
		Steps:       []Step{{Create: "Bit", Data: map[string]any{"bit": true}}},
	}

	_, err := Run(context.Background(), scenario)

	assert.ErrorContains(t, err, "failed to load specs")
}

func TestRun_FreshStorePerRun(t *testing.T) {
	scenario := &Scenario{
		Name:        "fresh",
		Description: "d",
		Specs:       specsDir,
		Steps:       []Step{{Create: "Counter", Data: map[string]any{"n": 1}}},
		Assertions:  []Assertion{{Type: AssertStoredCount, Count: 1}},
	}

	for i := 0; i < 2; i++ {
		result, err := Run(context.Background(), scenario)
		require.NoError(t, err)
		assert.True(t, result.Pass, "run %d errors: %v", i, result.Errors)
		assert.Equal(t, int64(1), result.Trace[0].Seq)
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "position_points.yaml"))
	require.NoError(t, err)

	first, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	second, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	a, err := MarshalTrace(scenario, first)
	require.NoError(t, err)
	b, err := MarshalTrace(scenario, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
