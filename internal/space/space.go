package space

import (
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/cadcad/internal/ir"
)

// Space is a named schema of typed dimensions plus ordered registries of
// constraint, metric and projection blocks and an operation table.
//
// Dimensions are copied and frozen by NewSpace. The registries and the
// operation table may grow afterwards and are safe for concurrent use.
type Space struct {
	name        string
	description string
	dims        Dimensions
	shape       Shape

	mu          sync.RWMutex
	constraints registry
	metrics     registry
	projections registry
	ops         map[string]BinaryOp
}

// registry keeps blocks by name in insertion order. Registering a name
// again replaces the block but keeps its position.
type registry struct {
	names  []string
	blocks map[string]*Block
}

func (r *registry) put(b *Block) {
	if r.blocks == nil {
		r.blocks = make(map[string]*Block)
	}
	if _, ok := r.blocks[b.name]; !ok {
		r.names = append(r.names, b.name)
	}
	r.blocks[b.name] = b
}

func (r *registry) list() []*Block {
	out := make([]*Block, len(r.names))
	for i, name := range r.names {
		out[i] = r.blocks[name]
	}
	return out
}

// Option configures a Space during construction.
type Option func(*Space) error

// WithDescription sets a human-readable description.
func WithDescription(desc string) Option {
	return func(s *Space) error {
		s.description = desc
		return nil
	}
}

// WithConstraint registers a constraint block. See AddConstraint.
func WithConstraint(b *Block) Option {
	return func(s *Space) error { return s.AddConstraint(b) }
}

// WithMetric registers a metric block. See AddMetric.
func WithMetric(b *Block) Option {
	return func(s *Space) error { return s.AddMetric(b) }
}

// WithProjection registers a projection block. See AddProjection.
func WithProjection(b *Block) Option {
	return func(s *Space) error { return s.AddProjection(b) }
}

// WithOperation adds an entry to the operation table.
func WithOperation(name string, op BinaryOp) Option {
	return func(s *Space) error { return s.DefineOperation(name, op) }
}

// NewSpace builds a Space named name with the given dimensions.
//
// Blocks passed through options are typed on a Space, so they can only name
// the Space being built when created after it; use the Add methods for
// those.
func NewSpace(name string, dims Dimensions, opts ...Option) (*Space, error) {
	if name == "" {
		return nil, &Error{Code: ErrCodeInvalidSpace, Message: "space name is required"}
	}
	if path, err := dims.check(""); err != nil {
		return nil, newArityMismatch(name, "", "dimension %q: %v", path, err)
	}

	s := &Space{
		name: name,
		dims: dims.clone(),
		ops:  make(map[string]BinaryOp),
	}
	s.shape = Expand(s.dims)

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustSpace is like NewSpace but panics on error. Use it for package-level
// spaces whose arguments are known to be valid.
func MustSpace(name string, dims Dimensions, opts ...Option) *Space {
	s, err := NewSpace(name, dims, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the space name.
func (s *Space) Name() string { return s.name }

// Description returns the description set by WithDescription.
func (s *Space) Description() string { return s.description }

// Dimensions returns a copy of the declared dimensions.
func (s *Space) Dimensions() Dimensions { return s.dims.clone() }

// Shape returns a copy of the expanded dimensions.
func (s *Space) Shape() Shape { return s.shape.Clone() }

// String renders the space as "Name{dims}".
func (s *Space) String() string { return s.name + s.dims.String() }

// AddConstraint registers b as a constraint. b must take one point of this
// space and produce one Bit-shaped point.
func (s *Space) AddConstraint(b *Block) error {
	if err := s.checkSignature(b, 1, Bit); err != nil {
		return err
	}
	s.mu.Lock()
	s.constraints.put(b)
	s.mu.Unlock()
	return nil
}

// AddMetric registers b as a metric. b must take two points of this space
// and produce one Real-shaped point.
func (s *Space) AddMetric(b *Block) error {
	if err := s.checkSignature(b, 2, Real); err != nil {
		return err
	}
	s.mu.Lock()
	s.metrics.put(b)
	s.mu.Unlock()
	return nil
}

// AddProjection registers b as a projection. b must take one point of this
// space and produce exactly one point of any space.
func (s *Space) AddProjection(b *Block) error {
	if err := s.checkSignature(b, 1, nil); err != nil {
		return err
	}
	s.mu.Lock()
	s.projections.put(b)
	s.mu.Unlock()
	return nil
}

// checkSignature verifies that b has arity domain spaces all shaped like s
// and a single codomain, shaped like want when want is non-nil.
func (s *Space) checkSignature(b *Block, arity int, want *Space) error {
	if b == nil {
		return newArityMismatch(s.name, "", "a block is required")
	}
	if len(b.domains) != arity {
		return newArityMismatch(s.name, b.name, "expected %d domain spaces, got %d", arity, len(b.domains))
	}
	for i, d := range b.domains {
		if d != s && !d.shape.Equal(s.shape) {
			return newArityMismatch(s.name, b.name, "domain %d is %s, not %s", i, d.name, s.name)
		}
	}
	if len(b.codomains) != 1 {
		return newArityMismatch(s.name, b.name, "expected 1 codomain space, got %d", len(b.codomains))
	}
	if want != nil && !b.codomains[0].shape.Equal(want.shape) {
		return newArityMismatch(s.name, b.name, "codomain is %s, not %s", b.codomains[0].name, want.name)
	}
	return nil
}

// Predicate decides whether a point satisfies a constraint.
type Predicate func(p *Point) (bool, error)

// MetricFunc computes the distance between two points.
type MetricFunc func(a, b *Point) (float64, error)

// ProjectFunc derives the data of a target point from a source point.
type ProjectFunc func(p *Point) (ir.Object, error)

// CreateConstraint wraps pred in a [s] -> [Bit] block and registers it.
func (s *Space) CreateConstraint(name string, pred Predicate) (*Block, error) {
	if pred == nil {
		return nil, &Error{Code: ErrCodeInvalidBlock, Message: "constraint predicate is required", Space: s.name, Block: name}
	}
	b, err := NewBlock(name, []*Space{s}, []*Space{Bit}, func(ps []*Point) ([]*Point, error) {
		ok, err := pred(ps[0])
		if err != nil {
			return nil, err
		}
		return []*Point{BitPoint(ok)}, nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.AddConstraint(b); err != nil {
		return nil, err
	}
	return b, nil
}

// CreateMetric wraps fn in a [s, s] -> [Real] block and registers it.
func (s *Space) CreateMetric(name string, fn MetricFunc) (*Block, error) {
	if fn == nil {
		return nil, &Error{Code: ErrCodeInvalidBlock, Message: "metric function is required", Space: s.name, Block: name}
	}
	b, err := NewBlock(name, []*Space{s, s}, []*Space{Real}, func(ps []*Point) ([]*Point, error) {
		d, err := fn(ps[0], ps[1])
		if err != nil {
			return nil, err
		}
		p, err := RealPoint(d)
		if err != nil {
			return nil, fmt.Errorf("metric %s: %w", name, err)
		}
		return []*Point{p}, nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.AddMetric(b); err != nil {
		return nil, err
	}
	return b, nil
}

// CreateProjection wraps fn in a [s] -> [target] block and registers it.
func (s *Space) CreateProjection(name string, target *Space, fn ProjectFunc) (*Block, error) {
	if fn == nil {
		return nil, &Error{Code: ErrCodeInvalidBlock, Message: "projection function is required", Space: s.name, Block: name}
	}
	b, err := NewBlock(name, []*Space{s}, []*Space{target}, func(ps []*Point) ([]*Point, error) {
		data, err := fn(ps[0])
		if err != nil {
			return nil, err
		}
		p, err := NewPoint(target, data)
		if err != nil {
			return nil, err
		}
		return []*Point{p}, nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.AddProjection(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Constraints returns the constraint blocks in registration order.
func (s *Space) Constraints() []*Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.constraints.list()
}

// Metrics returns the metric blocks in registration order.
func (s *Space) Metrics() []*Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics.list()
}

// Projections returns the projection blocks in registration order.
func (s *Space) Projections() []*Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projections.list()
}

// Constraint returns the named constraint block.
func (s *Space) Constraint(name string) (*Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.constraints.blocks[name]
	return b, ok
}

// Metric returns the named metric block.
func (s *Space) Metric(name string) (*Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.metrics.blocks[name]
	return b, ok
}

// Projection returns the named projection block.
func (s *Space) Projection(name string) (*Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.projections.blocks[name]
	return b, ok
}

// Distance evaluates the named metric on a and b.
func (s *Space) Distance(metric string, a, b *Point) (float64, error) {
	blk, ok := s.Metric(metric)
	if !ok {
		return 0, &Error{Code: ErrCodeUnknownBlock, Message: fmt.Sprintf("no metric named %q", metric), Space: s.name, Block: metric}
	}
	out, err := blk.Map([]*Point{a, b})
	if err != nil {
		return 0, err
	}
	return RealValue(out[0]), nil
}

// Project evaluates the named projection on p.
func (s *Space) Project(projection string, p *Point) (*Point, error) {
	blk, ok := s.Projection(projection)
	if !ok {
		return nil, &Error{Code: ErrCodeUnknownBlock, Message: fmt.Sprintf("no projection named %q", projection), Space: s.name, Block: projection}
	}
	out, err := blk.Map([]*Point{p})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// Product returns a new space whose dimensions are the union of s and
// other's, with other winning on name collisions. An empty name defaults to
// "AxB". Registries and operations are not carried over.
func (s *Space) Product(name string, other *Space) (*Space, error) {
	if other == nil {
		return nil, newArityMismatch(s.name, "", "product requires a space")
	}
	if name == "" {
		name = s.name + "x" + other.name
	}
	return NewSpace(name, MergeDimensions(s.dims, other.dims))
}

// CreatePoint builds a point of s and checks it against every registered
// constraint in registration order. The first failing constraint is named in
// the returned CONSTRAINT_VIOLATION error.
func (s *Space) CreatePoint(data ir.Object) (*Point, error) {
	p, err := NewPoint(s, data)
	if err != nil {
		return nil, err
	}
	for _, c := range s.Constraints() {
		out, err := c.Map([]*Point{p})
		if err != nil {
			return nil, err
		}
		if !BitValue(out[0]) {
			return nil, newConstraintViolation(s.name, c.name)
		}
	}
	return p, nil
}

// DefineOperation adds or replaces an entry in the operation table.
func (s *Space) DefineOperation(name string, op BinaryOp) error {
	if name == "" || op == nil {
		return &Error{Code: ErrCodeInvalidSpace, Message: "operation requires a name and a function", Space: s.name}
	}
	s.mu.Lock()
	s.ops[name] = op
	s.mu.Unlock()
	return nil
}

// Operation returns the named entry of the operation table.
func (s *Space) Operation(name string) (BinaryOp, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	op, ok := s.ops[name]
	return op, ok
}

// Operations returns the operation names in sorted order.
func (s *Space) Operations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.ops))
	for name := range s.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
