package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/cadcad/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s", event.Step, event.Kind, event.Space)
		if event.Block != "" {
			fmt.Fprintf(&buf, ".%s", event.Block)
		}
		fmt.Fprintf(&buf, " -> %s\n", event.Outcome)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and the
// store the scenario wrote to, returning one message per failure.
func EvaluateAssertions(ctx context.Context, result *Result, assertions []Assertion, st *store.Store) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertStoredCount:
			err = assertStoredCount(ctx, result.Trace, a, st)
		case AssertOutcomeCount:
			err = assertOutcomeCount(result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// assertStoredCount checks the number of points recorded for a space, or
// for every space when none is named.
func assertStoredCount(ctx context.Context, trace []TraceEvent, a Assertion, st *store.Store) error {
	count, err := st.CountPoints(ctx, a.Space)
	if err != nil {
		return fmt.Errorf("stored_count: %w", err)
	}
	if count == a.Count {
		return nil
	}

	target := "all spaces"
	if a.Space != "" {
		target = a.Space
	}
	return &AssertionError{
		Type:     AssertStoredCount,
		Expected: fmt.Sprintf("%d points stored in %s", a.Count, target),
		Actual:   fmt.Sprintf("%d points", count),
		Trace:    trace,
	}
}

// assertOutcomeCount checks how many steps ended with the given outcome.
func assertOutcomeCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Outcome == a.Outcome {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertOutcomeCount,
		Expected: fmt.Sprintf("%d steps with outcome %s", a.Count, a.Outcome),
		Actual:   fmt.Sprintf("%d steps", count),
		Trace:    trace,
	}
}
