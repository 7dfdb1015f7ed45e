package space

import (
	"github.com/roach88/cadcad/internal/ir"
)

// Primitive spaces. Constraints produce Bit points and metrics produce Real
// points.
var (
	Bit  = MustSpace("Bit", Dimensions{"bit": Of(ir.KindBool)})
	Int  = MustSpace("Integer", Dimensions{"int": Of(ir.KindInt)})
	Real = MustSpace("Real", Dimensions{"real": Of(ir.KindFloat)})
)

// BitPoint returns a Bit point holding v.
func BitPoint(v bool) *Point {
	return &Point{space: Bit, data: ir.Object{"bit": ir.Bool(v)}}
}

// IntPoint returns an Integer point holding v.
func IntPoint(v int64) *Point {
	return &Point{space: Int, data: ir.Object{"int": ir.Int(v)}}
}

// RealPoint returns a Real point holding v. NaN and infinities are rejected.
func RealPoint(v float64) (*Point, error) {
	f, err := ir.FromGo(v)
	if err != nil {
		return nil, err
	}
	return &Point{space: Real, data: ir.Object{"real": f}}, nil
}

// BitValue reads the verdict of a Bit-shaped point.
func BitValue(p *Point) bool {
	b, _ := p.data["bit"].(ir.Bool)
	return bool(b)
}

// RealValue reads the value of a Real-shaped point.
func RealValue(p *Point) float64 {
	f, _ := p.data["real"].(ir.Float)
	return float64(f)
}
