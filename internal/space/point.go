package space

import (
	"fmt"

	"github.com/roach88/cadcad/internal/ir"
)

// Point is an immutable data instance of a Space. Its data always has the
// same shape as the space's expanded dimensions.
type Point struct {
	space *Space
	data  ir.Object
}

// NewPoint checks data against s and builds a Point. Constraints are not
// evaluated; use Space.CreatePoint for that.
func NewPoint(s *Space, data ir.Object) (*Point, error) {
	if s == nil {
		return nil, newArityMismatch("", "", "a point requires a space")
	}
	data = data.Clone()
	given := Convert(data)
	if !s.shape.Equal(given) {
		return nil, newDimensionMismatch(s.name, s.shape, given, Diff(s.shape, given))
	}
	return &Point{space: s, data: data}, nil
}

// MustPoint is like NewPoint but panics on error.
func MustPoint(s *Space, data ir.Object) *Point {
	p, err := NewPoint(s, data)
	if err != nil {
		panic(err)
	}
	return p
}

// Space returns the owning space.
func (p *Point) Space() *Space { return p.space }

// Data returns a deep copy of the point's data.
func (p *Point) Data() ir.Object { return p.data.Clone() }

// Get resolves a dotted path inside the data.
func (p *Point) Get(path string) (ir.Value, bool) {
	v, ok := ir.Lookup(p.data, path)
	if !ok {
		return nil, false
	}
	return ir.Clone(v), true
}

// ID returns the content hash of the owning space name and the data.
func (p *Point) ID() (string, error) {
	return ir.PointID(p.space.name, p.data)
}

// MarshalJSON renders the data in canonical form.
func (p *Point) MarshalJSON() ([]byte, error) {
	return ir.MarshalCanonical(p.data)
}

// String renders the point as "Space{...data...}".
func (p *Point) String() string {
	b, err := ir.MarshalCanonical(p.data)
	if err != nil {
		return fmt.Sprintf("%s<%v>", p.space.name, err)
	}
	return p.space.name + string(b)
}

// Apply combines p with other using the named entry of the owning space's
// operation table. other must be shaped like p's space, and the result is
// built with Space.CreatePoint so it is checked against the constraints too.
func (p *Point) Apply(op string, other *Point) (*Point, error) {
	if other == nil {
		return nil, newArityMismatch(p.space.name, op, "operation %q requires a second point", op)
	}
	fn, ok := p.space.Operation(op)
	if !ok {
		return nil, &Error{
			Code:    ErrCodeUnknownOperation,
			Message: fmt.Sprintf("space does not define operation %q", op),
			Space:   p.space.name,
			Block:   op,
		}
	}
	if err := conform(p.space, other); err != nil {
		return nil, err
	}
	result, err := fn(p.Data(), other.Data())
	if err != nil {
		return nil, &Error{
			Code:    ErrCodeOperationFailed,
			Message: err.Error(),
			Space:   p.space.name,
			Block:   op,
			Err:     err,
		}
	}
	return p.space.CreatePoint(result)
}

// Record builds the store record for p under runToken.
func (p *Point) Record(runToken string) (ir.PointRecord, error) {
	id, err := p.ID()
	if err != nil {
		return ir.PointRecord{}, err
	}
	shapeHash, err := p.space.shape.Hash()
	if err != nil {
		return ir.PointRecord{}, err
	}
	return ir.PointRecord{
		ID:        id,
		Space:     p.space.name,
		ShapeHash: shapeHash,
		Data:      p.Data(),
		RunToken:  runToken,
		IRVersion: ir.IRVersion,
	}, nil
}
