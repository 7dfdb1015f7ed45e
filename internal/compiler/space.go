package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/cadcad/internal/ir"
)

// CompileSpace parses a CUE value into a SpaceSpec.
//
// The CUE value should be the space struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`space: Position: { dimensions: {x: float, y: float} }`)
//	spec, err := CompileSpace(v.LookupPath(cue.ParsePath("space.Position")))
//
// Dimension values are CUE types: bool, int, float, string, a list type or a
// struct of further dimensions. A concrete string names another space.
func CompileSpace(v cue.Value) (*ir.SpaceSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.SpaceSpec{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	descVal := v.LookupPath(cue.ParsePath("description"))
	if descVal.Exists() {
		desc, err := descVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.Description = desc
	}

	dimsVal := v.LookupPath(cue.ParsePath("dimensions"))
	if !dimsVal.Exists() {
		return nil, &CompileError{
			Field:   "dimensions",
			Message: "dimensions are required",
			Pos:     v.Pos(),
		}
	}
	dims, err := parseDimensions(dimsVal, "dimensions")
	if err != nil {
		return nil, err
	}
	spec.Dimensions = dims

	if spec.Constraints, err = parseConstraints(v); err != nil {
		return nil, err
	}
	if spec.Metrics, err = parseMetrics(v); err != nil {
		return nil, err
	}
	if spec.Projections, err = parseProjections(v); err != nil {
		return nil, err
	}
	if spec.Operations, err = parseStringList(v.LookupPath(cue.ParsePath("operations")), "operations"); err != nil {
		return nil, err
	}

	return spec, nil
}

// parseDimensions walks a struct of dimension declarations in source order.
func parseDimensions(v cue.Value, field string) ([]ir.DimensionSpec, error) {
	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   field,
			Message: "must be a struct of dimensions",
			Pos:     v.Pos(),
		}
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	dims := []ir.DimensionSpec{}
	for iter.Next() {
		dim, err := parseDimension(iter.Label(), iter.Value(), field)
		if err != nil {
			return nil, err
		}
		dims = append(dims, dim)
	}
	return dims, nil
}

func parseDimension(name string, v cue.Value, parent string) (ir.DimensionSpec, error) {
	dim := ir.DimensionSpec{Name: name}
	kind := v.IncompleteKind()

	switch kind {
	case cue.StructKind:
		fields, err := parseDimensions(v, parent+"."+name)
		if err != nil {
			return dim, err
		}
		dim.Type = ir.TypeObject
		dim.Fields = fields
		return dim, nil
	case cue.ListKind:
		dim.Type = ir.TypeList
		return dim, nil
	}

	if v.IsConcrete() {
		if kind != cue.StringKind {
			return dim, &CompileError{
				Field:   "type",
				Message: fmt.Sprintf("dimension %q: concrete %v is not a type, use a type or a space name", name, kind),
				Pos:     v.Pos(),
			}
		}
		ref, err := v.String()
		if err != nil {
			return dim, formatCUEError(err)
		}
		dim.Type = ir.TypeSpace
		dim.Ref = ref
		return dim, nil
	}

	switch kind {
	case cue.BoolKind:
		dim.Type = ir.TypeBool
	case cue.IntKind:
		dim.Type = ir.TypeInt
	case cue.FloatKind:
		dim.Type = ir.TypeFloat
	case cue.StringKind:
		dim.Type = ir.TypeString
	case cue.NumberKind:
		return dim, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("dimension %q: number is ambiguous, use int or float", name),
			Pos:     v.Pos(),
		}
	default:
		return dim, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("dimension %q: unsupported type kind: %v", name, kind),
			Pos:     v.Pos(),
		}
	}
	return dim, nil
}

// parseConstraints reads the optional constraints struct.
func parseConstraints(v cue.Value) ([]ir.ConstraintSpec, error) {
	var out []ir.ConstraintSpec
	err := eachField(v, "constraints", func(name string, cv cue.Value) error {
		c := ir.ConstraintSpec{Name: name}
		var err error
		if c.Kind, err = requiredString(cv, "kind", "constraints"); err != nil {
			return err
		}
		if c.Path, err = requiredString(cv, "path", "constraints"); err != nil {
			return err
		}
		if c.Min, err = optionalNumber(cv, "min", "constraints"); err != nil {
			return err
		}
		if c.Max, err = optionalNumber(cv, "max", "constraints"); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

// parseMetrics reads the optional metrics struct.
func parseMetrics(v cue.Value) ([]ir.MetricSpec, error) {
	var out []ir.MetricSpec
	err := eachField(v, "metrics", func(name string, mv cue.Value) error {
		m := ir.MetricSpec{Name: name}
		var err error
		if m.Kind, err = requiredString(mv, "kind", "metrics"); err != nil {
			return err
		}
		if m.Paths, err = parseStringList(mv.LookupPath(cue.ParsePath("paths")), "metrics"); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

// parseProjections reads the optional projections struct.
func parseProjections(v cue.Value) ([]ir.ProjectionSpec, error) {
	var out []ir.ProjectionSpec
	err := eachField(v, "projections", func(name string, pv cue.Value) error {
		p := ir.ProjectionSpec{Name: name, Fields: make(map[string]string)}
		var err error
		if p.Target, err = requiredString(pv, "target", "projections"); err != nil {
			return err
		}
		fieldsVal := pv.LookupPath(cue.ParsePath("fields"))
		if !fieldsVal.Exists() {
			return &CompileError{
				Field:   "projections",
				Message: fmt.Sprintf("projection %q: fields are required", name),
				Pos:     pv.Pos(),
			}
		}
		return eachField(pv, "fields", func(target string, sv cue.Value) error {
			source, err := sv.String()
			if err != nil {
				return &CompileError{
					Field:   "projections",
					Message: fmt.Sprintf("projection %q: field %q must map to a source path string", name, target),
					Pos:     sv.Pos(),
				}
			}
			p.Fields[target] = source
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// eachField calls fn for every regular field of the struct at v.field.
// A missing struct is not an error.
func eachField(v cue.Value, field string, fn func(name string, fv cue.Value) error) error {
	sv := v.LookupPath(cue.ParsePath(field))
	if !sv.Exists() {
		return nil
	}
	iter, err := sv.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if err := fn(iter.Label(), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

func requiredString(v cue.Value, name, field string) (string, error) {
	sv := v.LookupPath(cue.ParsePath(name))
	if !sv.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", name),
			Pos:     v.Pos(),
		}
	}
	s, err := sv.String()
	if err != nil {
		return "", &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s must be a string", name),
			Pos:     sv.Pos(),
		}
	}
	return s, nil
}

func optionalNumber(v cue.Value, name, field string) (*float64, error) {
	nv := v.LookupPath(cue.ParsePath(name))
	if !nv.Exists() {
		return nil, nil
	}
	f, err := nv.Float64()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s must be a number", name),
			Pos:     nv.Pos(),
		}
	}
	return &f, nil
}

// parseStringList reads an optional list of strings.
func parseStringList(v cue.Value, field string) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: "must be a list of strings",
			Pos:     v.Pos(),
		}
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   field,
				Message: "must be a list of strings",
				Pos:     iter.Value().Pos(),
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// First error with a position wins.
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
