package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/cadcad/internal/ir"
)

// TraceSnapshot captures the trace of a scenario run for golden comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	RunToken     string       `json:"run_token,omitempty"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts the snapshot to plain values that
// ir.MarshalCanonical accepts.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"step":    event.Step,
			"kind":    event.Kind,
			"space":   event.Space,
			"outcome": event.Outcome,
		}
		if event.Block != "" {
			eventMap["block"] = event.Block
		}
		if event.Constraint != "" {
			eventMap["constraint"] = event.Constraint
		}
		if event.PointID != "" {
			eventMap["point_id"] = event.PointID
			eventMap["seq"] = event.Seq
			eventMap["data"] = event.Data
		}
		if event.Value != nil {
			eventMap["value"] = *event.Value
		}
		traceList[i] = eventMap
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
	}
	if s.RunToken != "" {
		result["run_token"] = s.RunToken
	}
	return result
}

// MarshalTrace renders a scenario's trace as canonical JSON.
func MarshalTrace(scenario *Scenario, result *Result) ([]byte, error) {
	token := scenario.RunToken
	if token == "" {
		token = DefaultRunToken
	}
	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		RunToken:     token,
		Trace:        result.Trace,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its trace with
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	traceJSON, err := MarshalTrace(scenario, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return result, nil
}
