package space

import (
	"sort"
	"strings"

	"github.com/roach88/cadcad/internal/ir"
)

// Shape is the structural type of a mapping: every key maps to a leaf kind
// or to a nested shape. Expand and Convert both produce shapes so that
// dimensions and data can be compared directly.
type Shape map[string]Node

// Node is one entry of a Shape. Fields is set only when Kind is
// ir.KindObject.
type Node struct {
	Kind   ir.Kind
	Fields Shape
}

// Expand resolves a dimension mapping into a shape. Space references are
// replaced by the expansion of the referenced space's dimensions, inline
// nested mappings are expanded recursively and leaf kinds pass through.
func Expand(dims Dimensions) Shape {
	shape := make(Shape, len(dims))
	for name, dim := range dims {
		switch {
		case dim.ref:
			shape[name] = Node{Kind: ir.KindObject, Fields: Expand(dim.space.dims)}
		case dim.nested:
			shape[name] = Node{Kind: ir.KindObject, Fields: Expand(dim.fields)}
		default:
			shape[name] = Node{Kind: dim.kind}
		}
	}
	return shape
}

// Convert computes the shape of concrete data. Nested objects are converted
// recursively and every other leaf is replaced by its runtime kind.
func Convert(data ir.Object) Shape {
	shape := make(Shape, len(data))
	for key, value := range data {
		if obj, ok := value.(ir.Object); ok {
			shape[key] = Node{Kind: ir.KindObject, Fields: Convert(obj)}
			continue
		}
		shape[key] = Node{Kind: ir.KindOf(value)}
	}
	return shape
}

// Equal reports structural equality: same keys at every level and identical
// leaf kinds. Key order is irrelevant.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for key, node := range s {
		o, ok := other[key]
		if !ok || node.Kind != o.Kind {
			return false
		}
		if node.Kind == ir.KindObject && !node.Fields.Equal(o.Fields) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	for key, node := range s {
		if node.Fields != nil {
			node.Fields = node.Fields.Clone()
		}
		out[key] = node
	}
	return out
}

// Lookup resolves a dotted path to a node.
func (s Shape) Lookup(path string) (Node, bool) {
	parts := strings.Split(path, ".")
	cur := s
	for i, part := range parts {
		node, ok := cur[part]
		if !ok {
			return Node{}, false
		}
		if i == len(parts)-1 {
			return node, true
		}
		if node.Kind != ir.KindObject {
			return Node{}, false
		}
		cur = node.Fields
	}
	return Node{}, false
}

// Leaves returns the dotted paths of every non-object node, sorted.
func (s Shape) Leaves() []string {
	var paths []string
	var walk func(prefix string, sh Shape)
	walk = func(prefix string, sh Shape) {
		for key, node := range sh {
			path := joinPath(prefix, key)
			if node.Kind == ir.KindObject {
				walk(path, node.Fields)
				continue
			}
			paths = append(paths, path)
		}
	}
	walk("", s)
	sort.Strings(paths)
	return paths
}

// Object renders the shape as an ir.Object of kind names, the form used for
// hashing and JSON output.
func (s Shape) Object() ir.Object {
	obj := make(ir.Object, len(s))
	for key, node := range s {
		if node.Kind == ir.KindObject {
			obj[key] = node.Fields.Object()
			continue
		}
		obj[key] = ir.String(node.Kind.String())
	}
	return obj
}

// Hash returns the content hash of the shape.
func (s Shape) Hash() (string, error) {
	return ir.ShapeHash(s.Object())
}

// MarshalJSON implements json.Marshaler.
func (s Shape) MarshalJSON() ([]byte, error) {
	return ir.MarshalCanonical(s.Object())
}

// String renders the shape as "{a: int, b: {c: float}}" with sorted keys.
func (s Shape) String() string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(key)
		b.WriteString(": ")
		node := s[key]
		if node.Kind == ir.KindObject {
			b.WriteString(node.Fields.String())
		} else {
			b.WriteString(node.Kind.String())
		}
	}
	b.WriteByte('}')
	return b.String()
}

// MismatchReason says why a path differs.
type MismatchReason string

const (
	MismatchMissing MismatchReason = "missing"
	MismatchExtra   MismatchReason = "extra"
	MismatchKind    MismatchReason = "kind"
)

// Mismatch is one structural difference between an expected and an actual
// shape.
type Mismatch struct {
	Path     string         `json:"path"`
	Reason   MismatchReason `json:"reason"`
	Expected string         `json:"expected,omitempty"`
	Actual   string         `json:"actual,omitempty"`
}

// String renders the mismatch for diagnostics.
func (m Mismatch) String() string {
	switch m.Reason {
	case MismatchMissing:
		return m.Path + ": missing (expected " + m.Expected + ")"
	case MismatchExtra:
		return m.Path + ": unexpected " + m.Actual
	}
	return m.Path + ": expected " + m.Expected + ", got " + m.Actual
}

// Diff lists every difference between expected and actual, sorted by path.
// An empty result means the shapes are equal.
func Diff(expected, actual Shape) []Mismatch {
	var out []Mismatch
	diffInto(&out, "", expected, actual)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func diffInto(out *[]Mismatch, prefix string, expected, actual Shape) {
	for key, want := range expected {
		path := joinPath(prefix, key)
		got, ok := actual[key]
		if !ok {
			*out = append(*out, Mismatch{Path: path, Reason: MismatchMissing, Expected: nodeName(want)})
			continue
		}
		if want.Kind != got.Kind {
			*out = append(*out, Mismatch{Path: path, Reason: MismatchKind, Expected: nodeName(want), Actual: nodeName(got)})
			continue
		}
		if want.Kind == ir.KindObject {
			diffInto(out, path, want.Fields, got.Fields)
		}
	}
	for key, got := range actual {
		if _, ok := expected[key]; !ok {
			*out = append(*out, Mismatch{Path: joinPath(prefix, key), Reason: MismatchExtra, Actual: nodeName(got)})
		}
	}
}

func nodeName(n Node) string {
	if n.Kind == ir.KindObject {
		return n.Fields.String()
	}
	return n.Kind.String()
}
