package harness

import "github.com/roach88/cadcad/internal/ir"

// TraceEvent records the outcome of one scenario step.
type TraceEvent struct {
	Step    int    `json:"step"`
	Kind    string `json:"kind"`
	Space   string `json:"space"`
	Block   string `json:"block,omitempty"`
	Outcome string `json:"outcome"`

	// Constraint names the violated constraint.
	Constraint string `json:"constraint,omitempty"`

	// PointID, Seq and Data describe the point the step recorded.
	// Seq is zero when nothing was recorded.
	PointID string    `json:"point_id,omitempty"`
	Seq     int64     `json:"seq,omitempty"`
	Data    ir.Object `json:"data,omitempty"`

	// Value is the measured distance.
	Value *float64 `json:"value,omitempty"`

	// Message is the error text of a failed step. It is not part of the
	// golden trace.
	Message string `json:"-"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	Trace []TraceEvent `json:"trace"`

	// Errors is empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEvent appends a step event to the trace.
func (r *Result) AddEvent(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
