// Package space models typed dimension bundles (spaces), validated data
// instances within them (points) and typed functions between them (blocks).
//
// The central check is structural: a point's data, with every leaf replaced
// by its runtime kind (Convert), must equal its space's dimensions with every
// space reference resolved (Expand). Keys must match exactly and kinds are
// compared by identity, so an int never satisfies a float dimension.
//
// Blocks carry constraints, metrics and projections:
//
//	Position, _ := space.NewSpace("Position", space.Dimensions{
//	    "x": space.Of(ir.KindFloat),
//	    "y": space.Of(ir.KindFloat),
//	})
//	_, _ = Position.CreateConstraint("inside", func(p *space.Point) (bool, error) {
//	    x, _ := p.Get("x")
//	    return x.(ir.Float) >= 0, nil
//	})
//	p, err := Position.CreatePoint(ir.Object{"x": ir.Float(1), "y": ir.Float(2)})
//
// Every failure is returned immediately as an *Error whose Code names the
// violated invariant. Nothing in this package retries, logs or aggregates.
//
// A Space's dimensions are frozen at construction and may only reference
// spaces that already exist, so reference cycles cannot be expressed.
// Registries and the operation table are guarded by a mutex; spaces may be
// shared between goroutines.
package space
