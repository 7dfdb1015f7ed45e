package space

import (
	"fmt"
	"sort"

	"github.com/roach88/cadcad/internal/ir"
)

// Dimension is one named slot of a space. It is exactly one of a leaf kind
// (Of), a reference to another space (Ref) or an inline nested mapping
// (Nested).
type Dimension struct {
	kind   ir.Kind
	space  *Space
	fields Dimensions
	nested bool
	ref    bool
}

// Dimensions maps dimension names to their declarations.
type Dimensions map[string]Dimension

// Of declares a leaf dimension of the given kind. Of(ir.KindObject) declares
// an empty nested mapping.
func Of(kind ir.Kind) Dimension {
	if kind == ir.KindObject {
		return Nested(Dimensions{})
	}
	return Dimension{kind: kind}
}

// Ref declares a dimension whose value must match another space's dimensions.
func Ref(s *Space) Dimension {
	return Dimension{kind: ir.KindObject, space: s, ref: true}
}

// Nested declares an inline nested mapping.
func Nested(dims Dimensions) Dimension {
	return Dimension{kind: ir.KindObject, fields: dims.clone(), nested: true}
}

// Kind returns the kind a value in this slot must have.
func (d Dimension) Kind() ir.Kind { return d.kind }

// Space returns the referenced space, or nil when d is not a reference.
func (d Dimension) Space() *Space { return d.space }

// Fields returns a copy of the nested mapping, or nil when d is not nested.
func (d Dimension) Fields() Dimensions {
	if !d.nested {
		return nil
	}
	return d.fields.clone()
}

// IsRef reports whether d references another space.
func (d Dimension) IsRef() bool { return d.ref }

// IsNested reports whether d is an inline nested mapping.
func (d Dimension) IsNested() bool { return d.nested }

// String renders a leaf as its kind, a reference as the space name and a
// nested mapping in the same form as Shape.String.
func (d Dimension) String() string {
	switch {
	case d.ref && d.space != nil:
		return d.space.Name()
	case d.ref:
		return "<nil space>"
	case d.nested:
		return d.fields.String()
	}
	return d.kind.String()
}

// Names returns the dimension names in sorted order.
func (d Dimensions) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String renders the mapping as "{a: int, b: Position}".
func (d Dimensions) String() string {
	s := "{"
	for i, name := range d.Names() {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s: %s", name, d[name])
	}
	return s + "}"
}

// clone copies the mapping recursively. Referenced spaces are shared.
func (d Dimensions) clone() Dimensions {
	out := make(Dimensions, len(d))
	for name, dim := range d {
		if dim.nested {
			dim.fields = dim.fields.clone()
		}
		out[name] = dim
	}
	return out
}

// check rejects nil references and invalid kinds, returning the dotted path
// of the first offending dimension.
func (d Dimensions) check(prefix string) (string, error) {
	for _, name := range d.Names() {
		dim := d[name]
		path := joinPath(prefix, name)
		switch {
		case dim.ref && dim.space == nil:
			return path, fmt.Errorf("dimension %q references a nil space", path)
		case dim.nested:
			if p, err := dim.fields.check(path); err != nil {
				return p, err
			}
		case dim.kind == ir.KindInvalid:
			return path, fmt.Errorf("dimension %q has no kind", path)
		}
	}
	return "", nil
}

// MergeDimensions returns the union of a and b. On a name collision the
// dimension from b wins.
func MergeDimensions(a, b Dimensions) Dimensions {
	out := a.clone()
	for name, dim := range b.clone() {
		out[name] = dim
	}
	return out
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
