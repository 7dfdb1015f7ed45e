package space

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/roach88/cadcad/internal/ir"
)

// RangeConstraint builds a [s] -> [Bit] block that holds when the numeric
// leaf at path lies within [min, max]. A nil bound is open. The block is not
// registered; pass it to AddConstraint.
func RangeConstraint(s *Space, name, path string, min, max *float64) (*Block, error) {
	if s == nil {
		return nil, newArityMismatch("", name, "range constraint requires a space")
	}
	if err := numericLeaf(s, name, path); err != nil {
		return nil, err
	}
	if min != nil && max != nil && *min > *max {
		return nil, &Error{Code: ErrCodeInvalidBlock, Message: fmt.Sprintf("min %v exceeds max %v", *min, *max), Space: s.name, Block: name}
	}
	lo, hi := math.Inf(-1), math.Inf(1)
	if min != nil {
		lo = *min
	}
	if max != nil {
		hi = *max
	}
	return NewBlock(name, []*Space{s}, []*Space{Bit}, func(ps []*Point) ([]*Point, error) {
		v, _ := ir.Lookup(ps[0].data, path)
		f, _ := ir.AsFloat(v)
		ok := f >= lo && f <= hi
		return []*Point{BitPoint(ok)}, nil
	})
}

// EuclideanMetric builds a [s, s] -> [Real] block computing the Euclidean
// distance over the numeric leaves at paths. An empty paths list means every
// numeric leaf of s in path order.
func EuclideanMetric(s *Space, name string, paths []string) (*Block, error) {
	if s == nil {
		return nil, newArityMismatch("", name, "euclidean metric requires a space")
	}
	if len(paths) == 0 {
		for _, leaf := range s.shape.Leaves() {
			if node, _ := s.shape.Lookup(leaf); node.Kind.IsNumeric() {
				paths = append(paths, leaf)
			}
		}
		if len(paths) == 0 {
			return nil, &Error{Code: ErrCodeInvalidBlock, Message: "space has no numeric dimensions", Space: s.name, Block: name}
		}
	}
	for _, path := range paths {
		if err := numericLeaf(s, name, path); err != nil {
			return nil, err
		}
	}
	paths = append([]string(nil), paths...)

	return NewBlock(name, []*Space{s, s}, []*Space{Real}, func(ps []*Point) ([]*Point, error) {
		var sum float64
		for _, path := range paths {
			va, _ := ir.Lookup(ps[0].data, path)
			vb, _ := ir.Lookup(ps[1].data, path)
			fa, _ := ir.AsFloat(va)
			fb, _ := ir.AsFloat(vb)
			sum += (fa - fb) * (fa - fb)
		}
		p, err := RealPoint(math.Sqrt(sum))
		if err != nil {
			return nil, err
		}
		return []*Point{p}, nil
	})
}

// FieldProjection builds a [from] -> [to] block that copies source leaves
// into a new target point. fields maps target leaf paths to source paths.
// Every leaf of to must be mapped and kinds must agree.
func FieldProjection(from, to *Space, name string, fields map[string]string) (*Block, error) {
	if from == nil || to == nil {
		return nil, newArityMismatch("", name, "projection requires a source and a target space")
	}
	invalid := func(format string, args ...any) error {
		return &Error{Code: ErrCodeInvalidBlock, Message: fmt.Sprintf(format, args...), Space: from.name, Block: name}
	}

	targets := make([]string, 0, len(fields))
	for target := range fields {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	for _, target := range targets {
		tn, ok := to.shape.Lookup(target)
		if !ok || tn.Kind == ir.KindObject {
			return nil, invalid("%q is not a leaf of %s", target, to.name)
		}
		source := fields[target]
		sn, ok := from.shape.Lookup(source)
		if !ok || sn.Kind == ir.KindObject {
			return nil, invalid("%q is not a leaf of %s", source, from.name)
		}
		if sn.Kind != tn.Kind {
			return nil, invalid("%s.%s is %s but %s.%s is %s", from.name, source, sn.Kind, to.name, target, tn.Kind)
		}
	}
	for _, leaf := range to.shape.Leaves() {
		if _, ok := fields[leaf]; !ok {
			return nil, invalid("target leaf %s.%s is not mapped", to.name, leaf)
		}
	}

	mapping := make(map[string]string, len(fields))
	for k, v := range fields {
		mapping[k] = v
	}

	return NewBlock(name, []*Space{from}, []*Space{to}, func(ps []*Point) ([]*Point, error) {
		data := skeleton(to.shape)
		for _, target := range targets {
			v, _ := ir.Lookup(ps[0].data, mapping[target])
			if err := ir.Set(data, target, ir.Clone(v)); err != nil {
				return nil, err
			}
		}
		p, err := NewPoint(to, data)
		if err != nil {
			return nil, err
		}
		return []*Point{p}, nil
	})
}

// ElementwiseOperation returns the built-in rule for op. Arithmetic applies
// to int and float leaves, and and/or apply to bool leaves. Nested objects
// are combined key by key. Any other leaf kind is an error.
func ElementwiseOperation(op string) (BinaryOp, error) {
	leaf, ok := leafOps[op]
	if !ok {
		return nil, &Error{Code: ErrCodeUnknownOperation, Message: fmt.Sprintf("no built-in rule for operation %q", op), Block: op}
	}
	return func(a, b ir.Object) (ir.Object, error) {
		return combine(op, leaf, "", a, b)
	}, nil
}

type leafOp func(a, b ir.Value) (ir.Value, error)

var leafOps = map[string]leafOp{
	OpAdd: arith(addInt, func(a, b float64) float64 { return a + b }),
	OpSub: arith(subInt, func(a, b float64) float64 { return a - b }),
	OpMul: arith(mulInt, func(a, b float64) float64 { return a * b }),
	OpTrueDiv: arith(nil, func(a, b float64) float64 { return a / b }),
	OpFloorDiv: arith(func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, fmt.Errorf("integer division by zero")
		}
		if a == math.MinInt64 && b == -1 {
			return 0, errIntOverflow
		}
		q := a / b
		if (a%b != 0) && ((a < 0) != (b < 0)) {
			q--
		}
		return q, nil
	}, func(a, b float64) float64 { return math.Floor(a / b) }),
	OpMod: arith(func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, fmt.Errorf("integer modulo by zero")
		}
		m := a % b
		if m != 0 && ((m < 0) != (b < 0)) {
			m += b
		}
		return m, nil
	}, func(a, b float64) float64 {
		m := math.Mod(a, b)
		if m != 0 && ((m < 0) != (b < 0)) {
			m += b
		}
		return m
	}),
	OpPow: arith(powInt, math.Pow),
	OpAnd: logic(func(a, b bool) bool { return a && b }),
	OpOr:  logic(func(a, b bool) bool { return a || b }),
}

var errIntOverflow = errors.New("integer overflow")

func addInt(a, b int64) (int64, error) {
	c := a + b
	if (c > a) != (b > 0) {
		return 0, errIntOverflow
	}
	return c, nil
}

func subInt(a, b int64) (int64, error) {
	c := a - b
	if (c < a) != (b > 0) {
		return 0, errIntOverflow
	}
	return c, nil
}

func mulInt(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || c/b != a {
		return 0, errIntOverflow
	}
	return c, nil
}

// powInt raises a to b by squaring, so the cost is logarithmic in b.
func powInt(a, b int64) (int64, error) {
	if b < 0 {
		return 0, fmt.Errorf("negative integer exponent %d", b)
	}
	r := int64(1)
	for b > 0 {
		var err error
		if b&1 == 1 {
			if r, err = mulInt(r, a); err != nil {
				return 0, err
			}
		}
		b >>= 1
		if b > 0 {
			if a, err = mulInt(a, a); err != nil {
				return 0, err
			}
		}
	}
	return r, nil
}

// arith lifts integer and float functions to a leaf op. A nil integer
// function leaves the op undefined for int leaves.
func arith(ints func(a, b int64) (int64, error), floats func(a, b float64) float64) leafOp {
	return func(a, b ir.Value) (ir.Value, error) {
		switch av := a.(type) {
		case ir.Int:
			bv, ok := b.(ir.Int)
			if !ok || ints == nil {
				break
			}
			n, err := ints(int64(av), int64(bv))
			if err != nil {
				return nil, err
			}
			return ir.Int(n), nil
		case ir.Float:
			bv, ok := b.(ir.Float)
			if !ok {
				break
			}
			return ir.FromGo(floats(float64(av), float64(bv)))
		}
		return nil, fmt.Errorf("unsupported operands %s and %s", ir.KindOf(a), ir.KindOf(b))
	}
}

func logic(fn func(a, b bool) bool) leafOp {
	return func(a, b ir.Value) (ir.Value, error) {
		av, aok := a.(ir.Bool)
		bv, bok := b.(ir.Bool)
		if !aok || !bok {
			return nil, fmt.Errorf("unsupported operands %s and %s", ir.KindOf(a), ir.KindOf(b))
		}
		return ir.Bool(fn(bool(av), bool(bv))), nil
	}
}

func combine(op string, leaf leafOp, prefix string, a, b ir.Object) (ir.Object, error) {
	out := make(ir.Object, len(a))
	for _, key := range a.SortedKeys() {
		path := joinPath(prefix, key)
		va, vb := a[key], b[key]
		if oa, ok := va.(ir.Object); ok {
			ob, ok := vb.(ir.Object)
			if !ok {
				return nil, fmt.Errorf("%s: cannot %s object and %s", path, op, ir.KindOf(vb))
			}
			sub, err := combine(op, leaf, path, oa, ob)
			if err != nil {
				return nil, err
			}
			out[key] = sub
			continue
		}
		v, err := leaf(va, vb)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", path, op, err)
		}
		out[key] = v
	}
	return out, nil
}

func numericLeaf(s *Space, block, path string) error {
	node, ok := s.shape.Lookup(path)
	if !ok {
		return &Error{Code: ErrCodeInvalidBlock, Message: fmt.Sprintf("%q is not a dimension of %s", path, s.name), Space: s.name, Block: block}
	}
	if !node.Kind.IsNumeric() {
		return &Error{Code: ErrCodeInvalidBlock, Message: fmt.Sprintf("%q is %s, not numeric", path, node.Kind), Space: s.name, Block: block}
	}
	return nil
}

// skeleton builds empty objects for every nested node of shape so that
// empty nested mappings survive projection.
func skeleton(shape Shape) ir.Object {
	obj := make(ir.Object)
	for key, node := range shape {
		if node.Kind == ir.KindObject {
			obj[key] = skeleton(node.Fields)
		}
	}
	return obj
}
