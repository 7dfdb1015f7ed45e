package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/roach88/cadcad/internal/compiler"
	"github.com/roach88/cadcad/internal/ir"
	"github.com/roach88/cadcad/internal/space"
	"github.com/roach88/cadcad/internal/store"
)

// valueTolerance is the slack allowed when comparing expected distances.
const valueTolerance = 1e-9

// Harness executes the steps of one scenario.
type Harness struct {
	catalog  *compiler.Catalog
	store    *store.Store
	runToken string
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// The scenario's specs are loaded and linked, then each step runs in order
// against a fresh in-memory store. A step that fails the way its expect
// clause says is a pass. The returned error is reserved for problems with
// the scenario itself, such as unloadable specs or an unknown space.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	catalog, err := LoadCatalog(scenario.Specs)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	token := scenario.RunToken
	if token == "" {
		token = DefaultRunToken
	}

	h := &Harness{
		catalog:  catalog,
		store:    st,
		runToken: token,
		logger:   slog.Default().With("scenario", scenario.Name),
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		event, err := h.execute(ctx, i, step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		result.AddEvent(event)
		for _, msg := range checkExpect(event, step.Expect) {
			result.AddError(fmt.Sprintf("step %d (%s %s): %s", i, event.Kind, event.Space, msg))
		}
		h.logger.Debug("step completed",
			"step", i,
			"kind", event.Kind,
			"space", event.Space,
			"outcome", event.Outcome,
		)
	}

	for _, msg := range EvaluateAssertions(ctx, result, scenario.Assertions, st) {
		result.AddError(msg)
	}
	return result, nil
}

// LoadCatalog loads and links every space definition in dir.
func LoadCatalog(dir string) (*compiler.Catalog, error) {
	loaded, errs := compiler.LoadSpecs(dir, compiler.LoadModeCollectAll)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load specs: %w", errors.Join(errs...))
	}
	catalog, err := compiler.Link(loaded.Spaces)
	if err != nil {
		return nil, fmt.Errorf("failed to link specs: %w", err)
	}
	return catalog, nil
}

// execute runs one step. Space errors become the event's outcome; any
// other error aborts the scenario.
func (h *Harness) execute(ctx context.Context, index int, step Step) (TraceEvent, error) {
	event := TraceEvent{
		Step:  index,
		Kind:  step.Kind(),
		Space: step.SpaceName(),
		Block: step.BlockName(),
	}

	s, ok := h.catalog.Lookup(event.Space)
	if !ok {
		return event, fmt.Errorf("unknown space %q", event.Space)
	}

	var (
		produced *space.Point
		err      error
	)
	switch event.Kind {
	case StepCreate:
		produced, err = h.create(s, step.Data)
	case StepDistance:
		var d float64
		d, err = h.distance(s, step)
		if err == nil {
			event.Value = &d
		}
	case StepProject:
		var p *space.Point
		if p, err = h.create(s, step.Data); err == nil {
			produced, err = s.Project(step.Project, p)
		}
	case StepApply:
		var a, b *space.Point
		if a, b, err = h.pair(s, step); err == nil {
			produced, err = a.Apply(step.Apply, b)
		}
	default:
		return event, fmt.Errorf("invalid step kind")
	}

	if err != nil {
		var spaceErr *space.Error
		if !errors.As(err, &spaceErr) {
			return event, err
		}
		event.Outcome = strings.ToLower(string(spaceErr.Code))
		event.Message = spaceErr.Error()
		if spaceErr.Code == space.ErrCodeConstraintViolation {
			event.Constraint = spaceErr.Block
		}
		return event, nil
	}

	event.Outcome = OutcomeOK
	if produced != nil {
		if err := h.record(ctx, produced, &event); err != nil {
			return event, err
		}
	}
	return event, nil
}

// create converts YAML data and validates it as a point of s.
func (h *Harness) create(s *space.Space, data map[string]any) (*space.Point, error) {
	obj, err := ir.ObjectFromGo(data)
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	return s.CreatePoint(obj)
}

func (h *Harness) pair(s *space.Space, step Step) (*space.Point, *space.Point, error) {
	a, err := h.create(s, step.A)
	if err != nil {
		return nil, nil, err
	}
	b, err := h.create(s, step.B)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func (h *Harness) distance(s *space.Space, step Step) (float64, error) {
	a, b, err := h.pair(s, step)
	if err != nil {
		return 0, err
	}
	return s.Distance(step.Distance, a, b)
}

// record writes a produced point to the store and fills in the event.
func (h *Harness) record(ctx context.Context, p *space.Point, event *TraceEvent) error {
	rec, err := p.Record(h.runToken)
	if err != nil {
		return fmt.Errorf("record point: %w", err)
	}
	seq, _, err := h.store.WritePoint(ctx, rec)
	if err != nil {
		return err
	}
	event.Space = rec.Space
	event.PointID = rec.ID
	event.Seq = seq
	event.Data = rec.Data
	return nil
}

// checkExpect compares an event with its expect clause.
func checkExpect(event TraceEvent, expect *ExpectClause) []string {
	want := OutcomeOK
	if expect != nil && expect.Error != "" {
		want = expect.Error
	}
	if event.Outcome != want {
		msg := fmt.Sprintf("expected outcome %s, got %s", want, event.Outcome)
		if event.Message != "" {
			msg += ": " + event.Message
		}
		return []string{msg}
	}
	if expect == nil {
		return nil
	}

	var errs []string
	if expect.Constraint != "" && expect.Constraint != event.Constraint {
		errs = append(errs, fmt.Sprintf("expected constraint %q, got %q", expect.Constraint, event.Constraint))
	}
	if expect.Value != nil {
		switch {
		case event.Value == nil:
			errs = append(errs, fmt.Sprintf("expected value %v, got none", *expect.Value))
		case math.Abs(*event.Value-*expect.Value) > valueTolerance:
			errs = append(errs, fmt.Sprintf("expected value %v, got %v", *expect.Value, *event.Value))
		}
	}
	if expect.Data != nil {
		want, err := ir.ObjectFromGo(expect.Data)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("expected data: %v", err))
		case !ir.Equal(want, event.Data):
			errs = append(errs, fmt.Sprintf("expected data %s, got %s", canonicalString(want), canonicalString(event.Data)))
		}
	}
	return errs
}

func canonicalString(obj ir.Object) string {
	b, err := ir.MarshalCanonical(obj)
	if err != nil {
		return fmt.Sprintf("%v", obj)
	}
	return string(b)
}
