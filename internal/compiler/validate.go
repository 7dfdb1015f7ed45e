package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/cadcad/internal/ir"
	"github.com/roach88/cadcad/internal/space"
)

// Validation error codes (E100-E199)
const (
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	ErrMissingDimensions   = "E101" // dimensions are required
	ErrInvalidSpaceName    = "E102" // space name is not an identifier
	ErrInvalidDimension    = "E103" // dimension name empty or dotted
	ErrInvalidFieldType    = "E104" // invalid dimension type
	ErrDuplicateName       = "E105" // duplicate space, dimension or block name
	ErrUnresolvedReference = "E106" // reference to an unknown space
	ErrReferenceCycle      = "E107" // spaces reference each other in a cycle
	ErrInvalidConstraint   = "E108" // invalid constraint declaration
	ErrInvalidMetric       = "E109" // invalid metric declaration
	ErrInvalidProjection   = "E110" // invalid projection declaration
	ErrUnknownOperation    = "E111" // operation has no built-in rule
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates one compiled space against schema rules that need no
// other spaces. Returns all errors found (does not fail-fast).
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.SpaceSpec:
		return validateSpaceSpec(spec)
	case ir.SpaceSpec:
		return validateSpaceSpec(&spec)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// ValidateAll validates a set of spaces: each one on its own, then name
// uniqueness, reference resolution and reference cycles across the set.
// The primitive spaces Bit, Integer and Real are always resolvable.
func ValidateAll(specs []ir.SpaceSpec) []ValidationError {
	var errs []ValidationError

	known := builtinSpaces()
	seen := make(map[string]bool)
	for i := range specs {
		spec := &specs[i]
		for _, e := range validateSpaceSpec(spec) {
			e.Field = "space." + spec.Name + "." + e.Field
			errs = append(errs, e)
		}

		if _, builtin := known[spec.Name]; builtin || seen[spec.Name] {
			errs = append(errs, ValidationError{
				Field:   "space." + spec.Name,
				Message: fmt.Sprintf("duplicate space name: %q", spec.Name),
				Code:    ErrDuplicateName,
			})
		}
		seen[spec.Name] = true
	}

	for i := range specs {
		spec := &specs[i]
		for _, ref := range spec.References() {
			if _, ok := known[ref]; !ok && !seen[ref] {
				errs = append(errs, ValidationError{
					Field:   "space." + spec.Name + ".dimensions",
					Message: fmt.Sprintf("unknown space %q", ref),
					Code:    ErrUnresolvedReference,
				})
			}
		}
		for _, p := range spec.Projections {
			if _, ok := known[p.Target]; p.Target != "" && !ok && !seen[p.Target] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("space.%s.projections.%s.target", spec.Name, p.Name),
					Message: fmt.Sprintf("unknown space %q", p.Target),
					Code:    ErrUnresolvedReference,
				})
			}
		}
	}

	for _, c := range FindCycles(specs) {
		errs = append(errs, ValidationError{
			Field:   "space." + c.Path[0] + ".dimensions",
			Message: c.Message,
			Code:    ErrReferenceCycle,
		})
	}

	return errs
}

// validateSpaceSpec validates a single space specification.
func validateSpaceSpec(spec *ir.SpaceSpec) []ValidationError {
	var errs []ValidationError

	if !identPattern.MatchString(spec.Name) {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("invalid space name %q", spec.Name),
			Code:    ErrInvalidSpaceName,
		})
	}

	if spec.Dimensions == nil {
		errs = append(errs, ValidationError{
			Field:   "dimensions",
			Message: "dimensions are required",
			Code:    ErrMissingDimensions,
		})
	}
	errs = append(errs, validateDimensions(spec.Dimensions, "dimensions")...)

	constraintNames := make(map[string]bool)
	for _, c := range spec.Constraints {
		field := "constraints." + c.Name
		if constraintNames[c.Name] {
			errs = append(errs, duplicate(field, "constraint", c.Name))
		}
		constraintNames[c.Name] = true

		if c.Kind != ir.ConstraintRange {
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("unknown constraint kind %q, must be %q", c.Kind, ir.ConstraintRange),
				Code:    ErrInvalidConstraint,
			})
		}
		if strings.TrimSpace(c.Path) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".path",
				Message: "path is required",
				Code:    ErrInvalidConstraint,
			})
		}
		if c.Min == nil && c.Max == nil {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "range constraint needs min, max or both",
				Code:    ErrInvalidConstraint,
			})
		}
		if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("min %v exceeds max %v", *c.Min, *c.Max),
				Code:    ErrInvalidConstraint,
			})
		}
	}

	metricNames := make(map[string]bool)
	for _, m := range spec.Metrics {
		field := "metrics." + m.Name
		if metricNames[m.Name] {
			errs = append(errs, duplicate(field, "metric", m.Name))
		}
		metricNames[m.Name] = true

		if m.Kind != ir.MetricEuclidean {
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("unknown metric kind %q, must be %q", m.Kind, ir.MetricEuclidean),
				Code:    ErrInvalidMetric,
			})
		}
	}

	projectionNames := make(map[string]bool)
	for _, p := range spec.Projections {
		field := "projections." + p.Name
		if projectionNames[p.Name] {
			errs = append(errs, duplicate(field, "projection", p.Name))
		}
		projectionNames[p.Name] = true

		if strings.TrimSpace(p.Target) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".target",
				Message: "target space is required",
				Code:    ErrInvalidProjection,
			})
		}
		if len(p.Fields) == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".fields",
				Message: "at least one field mapping is required",
				Code:    ErrInvalidProjection,
			})
		}
	}

	ops := make(map[string]bool)
	for i, op := range spec.Operations {
		field := fmt.Sprintf("operations[%d]", i)
		if ops[op] {
			errs = append(errs, duplicate(field, "operation", op))
		}
		ops[op] = true

		if !space.KnownOperations[op] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("unknown operation %q", op),
				Code:    ErrUnknownOperation,
			})
		}
	}

	return errs
}

func validateDimensions(dims []ir.DimensionSpec, prefix string) []ValidationError {
	var errs []ValidationError
	names := make(map[string]bool)

	for _, d := range dims {
		field := prefix + "." + d.Name

		if d.Name == "" || strings.Contains(d.Name, ".") {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid dimension name %q, must be non-empty and contain no dots", d.Name),
				Code:    ErrInvalidDimension,
			})
		}
		if names[d.Name] {
			errs = append(errs, duplicate(field, "dimension", d.Name))
		}
		names[d.Name] = true

		if !ir.ValidDimensionTypes[d.Type] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid type %q for dimension %q", d.Type, d.Name),
				Code:    ErrInvalidFieldType,
			})
			continue
		}

		switch d.Type {
		case ir.TypeSpace:
			if d.Ref == "" {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("dimension %q references no space", d.Name),
					Code:    ErrInvalidFieldType,
				})
			}
		case ir.TypeObject:
			errs = append(errs, validateDimensions(d.Fields, field)...)
		}
	}

	return errs
}

func duplicate(field, what, name string) ValidationError {
	return ValidationError{
		Field:   field,
		Message: fmt.Sprintf("duplicate %s name: %q", what, name),
		Code:    ErrDuplicateName,
	}
}

// identPattern matches space names: a letter followed by letters, digits or
// underscores.
var identPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// builtinSpaces returns the primitive spaces every catalog can reference.
func builtinSpaces() map[string]*space.Space {
	return map[string]*space.Space{
		space.Bit.Name():  space.Bit,
		space.Int.Name():  space.Int,
		space.Real.Name(): space.Real,
	}
}
