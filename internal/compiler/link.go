package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/cadcad/internal/ir"
	"github.com/roach88/cadcad/internal/space"
)

// Catalog holds the live spaces built from a set of specs, plus the
// primitive spaces.
type Catalog struct {
	spaces map[string]*space.Space
	specs  map[string]ir.SpaceSpec
	order  []string
}

// Lookup returns the named space.
func (c *Catalog) Lookup(name string) (*space.Space, bool) {
	s, ok := c.spaces[name]
	return s, ok
}

// Spec returns the spec a space was built from. Primitive spaces have none.
func (c *Catalog) Spec(name string) (ir.SpaceSpec, bool) {
	spec, ok := c.specs[name]
	return spec, ok
}

// Names returns the names of the linked spaces in build order, references
// before the spaces that use them. Primitive spaces are not listed.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// LinkError reports every validation or build failure found while linking.
type LinkError struct {
	Errors []ValidationError
}

func (e *LinkError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("link failed: %s", strings.Join(msgs, "; "))
}

// Link validates specs and builds a Catalog of live spaces.
//
// Spaces are built in reference order so every Space reference points at an
// already-built space. Constraints, metrics and operations are attached to
// each space once it exists, and projections are attached last because
// their targets may be any space in the catalog.
func Link(specs []ir.SpaceSpec) (*Catalog, error) {
	if errs := ValidateAll(specs); len(errs) > 0 {
		return nil, &LinkError{Errors: errs}
	}

	cat := &Catalog{
		spaces: builtinSpaces(),
		specs:  make(map[string]ir.SpaceSpec, len(specs)),
	}
	for _, spec := range specs {
		cat.specs[spec.Name] = spec
	}

	var errs []ValidationError
	for _, name := range buildOrder(specs) {
		spec := cat.specs[name]
		s, err := space.NewSpace(name, buildDimensions(spec.Dimensions, cat.spaces), space.WithDescription(spec.Description))
		if err != nil {
			return nil, fmt.Errorf("building space %s: %w", name, err)
		}
		cat.spaces[name] = s
		cat.order = append(cat.order, name)
		errs = append(errs, attachBlocks(s, spec)...)
		slog.Debug("linked space", "space", name, "shape", s.Shape().String())
	}

	for _, name := range cat.order {
		errs = append(errs, attachProjections(cat.spaces[name], cat.specs[name], cat.spaces)...)
	}

	if len(errs) > 0 {
		return nil, &LinkError{Errors: errs}
	}
	return cat, nil
}

// buildOrder sorts spec names so that references come first. Ties keep
// declaration order. specs must be free of cycles.
func buildOrder(specs []ir.SpaceSpec) []string {
	byName := make(map[string]*ir.SpaceSpec, len(specs))
	for i := range specs {
		byName[specs[i].Name] = &specs[i]
	}

	var order []string
	done := make(map[string]bool)
	var visit func(name string)
	visit = func(name string) {
		spec, ok := byName[name]
		if !ok || done[name] {
			return
		}
		done[name] = true
		for _, ref := range spec.References() {
			visit(ref)
		}
		order = append(order, name)
	}
	for i := range specs {
		visit(specs[i].Name)
	}
	return order
}

func buildDimensions(dims []ir.DimensionSpec, spaces map[string]*space.Space) space.Dimensions {
	out := make(space.Dimensions, len(dims))
	for _, d := range dims {
		switch d.Type {
		case ir.TypeSpace:
			out[d.Name] = space.Ref(spaces[d.Ref])
		case ir.TypeObject:
			out[d.Name] = space.Nested(buildDimensions(d.Fields, spaces))
		default:
			kind, _ := ir.ParseKind(d.Type)
			out[d.Name] = space.Of(kind)
		}
	}
	return out
}

func attachBlocks(s *space.Space, spec ir.SpaceSpec) []ValidationError {
	var errs []ValidationError
	fail := func(field, code string, err error) {
		errs = append(errs, ValidationError{
			Field:   "space." + s.Name() + "." + field,
			Message: blockMessage(err),
			Code:    code,
		})
	}

	for _, c := range spec.Constraints {
		b, err := space.RangeConstraint(s, c.Name, c.Path, c.Min, c.Max)
		if err == nil {
			err = s.AddConstraint(b)
		}
		if err != nil {
			fail("constraints."+c.Name, ErrInvalidConstraint, err)
		}
	}

	for _, m := range spec.Metrics {
		b, err := space.EuclideanMetric(s, m.Name, m.Paths)
		if err == nil {
			err = s.AddMetric(b)
		}
		if err != nil {
			fail("metrics."+m.Name, ErrInvalidMetric, err)
		}
	}

	for _, op := range spec.Operations {
		fn, err := space.ElementwiseOperation(op)
		if err == nil {
			err = s.DefineOperation(op, fn)
		}
		if err != nil {
			fail("operations", ErrUnknownOperation, err)
		}
	}

	return errs
}

func attachProjections(s *space.Space, spec ir.SpaceSpec, spaces map[string]*space.Space) []ValidationError {
	var errs []ValidationError
	for _, p := range spec.Projections {
		b, err := space.FieldProjection(s, spaces[p.Target], p.Name, p.Fields)
		if err == nil {
			err = s.AddProjection(b)
		}
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("space.%s.projections.%s", s.Name(), p.Name),
				Message: blockMessage(err),
				Code:    ErrInvalidProjection,
			})
		}
	}
	return errs
}

// blockMessage strips the space error code, which the validation code
// replaces.
func blockMessage(err error) string {
	var se *space.Error
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
