package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultRunToken is used when a scenario does not set run_token.
const DefaultRunToken = "test-run-default"

// Scenario is a sequence of steps run against one set of space definitions.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Specs is the directory of CUE space definitions. Relative paths are
	// resolved against the scenario file's directory by LoadScenario.
	Specs string `yaml:"specs"`

	// RunToken tags every point the scenario records.
	RunToken string `yaml:"run_token,omitempty"`

	Steps []Step `yaml:"steps"`

	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step performs exactly one of create, distance, project or apply.
type Step struct {
	// Create names the space to create a point in from Data.
	Create string `yaml:"create,omitempty"`

	// Distance names a metric of Space, measured between A and B.
	Distance string `yaml:"distance,omitempty"`

	// Project names a projection of Space, applied to Data.
	Project string `yaml:"project,omitempty"`

	// Apply names an operation of Space, applied as A op B.
	Apply string `yaml:"apply,omitempty"`

	Space string         `yaml:"space,omitempty"`
	Data  map[string]any `yaml:"data,omitempty"`
	A     map[string]any `yaml:"a,omitempty"`
	B     map[string]any `yaml:"b,omitempty"`

	// Expect is checked against the step's outcome. A step without Expect
	// must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// Step kinds.
const (
	StepCreate   = "create"
	StepDistance = "distance"
	StepProject  = "project"
	StepApply    = "apply"
)

// Kind returns the step kind, or "" if the step sets none or several.
func (s Step) Kind() string {
	kind := ""
	for k, v := range map[string]string{
		StepCreate:   s.Create,
		StepDistance: s.Distance,
		StepProject:  s.Project,
		StepApply:    s.Apply,
	} {
		if v == "" {
			continue
		}
		if kind != "" {
			return ""
		}
		kind = k
	}
	return kind
}

// SpaceName returns the space the step works in.
func (s Step) SpaceName() string {
	if s.Create != "" {
		return s.Create
	}
	return s.Space
}

// BlockName returns the metric, projection or operation the step uses.
func (s Step) BlockName() string {
	switch s.Kind() {
	case StepDistance:
		return s.Distance
	case StepProject:
		return s.Project
	case StepApply:
		return s.Apply
	}
	return ""
}

// ExpectClause states the expected outcome of a step.
type ExpectClause struct {
	// Error is the expected outcome, e.g. "constraint_violation".
	// Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Constraint is the name of the violated constraint.
	Constraint string `yaml:"constraint,omitempty"`

	// Value is the expected distance.
	Value *float64 `yaml:"value,omitempty"`

	// Data is the expected data of the produced point.
	Data map[string]any `yaml:"data,omitempty"`
}

// Assertion validates the run as a whole.
type Assertion struct {
	Type string `yaml:"type"`

	// Space restricts stored_count to one space. Empty counts every point.
	Space string `yaml:"space,omitempty"`

	// Outcome is the step outcome counted by outcome_count.
	Outcome string `yaml:"outcome,omitempty"`

	Count int `yaml:"count"`
}

// Assertion type constants.
const (
	AssertStoredCount  = "stored_count"
	AssertOutcomeCount = "outcome_count"
)

// Step outcomes. Failed steps report their space error code in lower case.
const (
	OutcomeOK                  = "ok"
	OutcomeDimensionMismatch   = "dimension_mismatch"
	OutcomeConstraintViolation = "constraint_violation"
	OutcomeArityMismatch       = "arity_mismatch"
	OutcomeInvalidSpace        = "invalid_space"
	OutcomeInvalidBlock        = "invalid_block"
	OutcomeUnknownOperation    = "unknown_operation"
	OutcomeUnknownBlock        = "unknown_block"
	OutcomeOperationFailed     = "operation_failed"
)

var validOutcomes = map[string]bool{
	OutcomeOK:                  true,
	OutcomeDimensionMismatch:   true,
	OutcomeConstraintViolation: true,
	OutcomeArityMismatch:       true,
	OutcomeInvalidSpace:        true,
	OutcomeInvalidBlock:        true,
	OutcomeUnknownOperation:    true,
	OutcomeUnknownBlock:        true,
	OutcomeOperationFailed:     true,
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected and a relative specs path is resolved
// against the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Specs != "" && !filepath.IsAbs(scenario.Specs) {
		scenario.Specs = filepath.Join(filepath.Dir(path), scenario.Specs)
	}
	if _, err := os.Stat(scenario.Specs); os.IsNotExist(err) {
		return nil, fmt.Errorf("invalid scenario: specs directory not found: %s", scenario.Specs)
	}
	return scenario, nil
}

// ParseScenario parses and validates scenario YAML without touching the
// file system.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Specs == "" {
		return fmt.Errorf("specs is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step Step) error {
	kind := step.Kind()
	if kind == "" {
		return fmt.Errorf("steps[%d]: exactly one of create, distance, project or apply is required", index)
	}

	switch kind {
	case StepCreate:
		if step.Data == nil {
			return fmt.Errorf("steps[%d]: data is required for create", index)
		}
	case StepProject:
		if step.Space == "" || step.Data == nil {
			return fmt.Errorf("steps[%d]: space and data are required for project", index)
		}
	case StepDistance, StepApply:
		if step.Space == "" || step.A == nil || step.B == nil {
			return fmt.Errorf("steps[%d]: space, a and b are required for %s", index, kind)
		}
	}

	if step.Expect != nil && step.Expect.Error != "" && !validOutcomes[step.Expect.Error] {
		return fmt.Errorf("steps[%d].expect: unknown error %q", index, step.Expect.Error)
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}

	switch a.Type {
	case AssertStoredCount:
	case AssertOutcomeCount:
		if !validOutcomes[a.Outcome] {
			return fmt.Errorf("assertions[%d]: unknown outcome %q for outcome_count", index, a.Outcome)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
