package space

import (
	"fmt"
	"strings"
)

// Rule maps domain points to codomain points. It receives exactly one point
// per domain space, in order, and must return one point per codomain space.
type Rule func(points []*Point) ([]*Point, error)

// Block is a named typed function between ordered lists of spaces.
// Blocks are immutable once built.
type Block struct {
	name      string
	domains   []*Space
	codomains []*Space
	rule      Rule
}

// NewBlock validates its arguments and builds a Block.
func NewBlock(name string, domains, codomains []*Space, rule Rule) (*Block, error) {
	if name == "" {
		return nil, &Error{Code: ErrCodeInvalidBlock, Message: "block name is required"}
	}
	if rule == nil {
		return nil, &Error{Code: ErrCodeInvalidBlock, Message: "block rule is required", Block: name}
	}
	for i, s := range domains {
		if s == nil {
			return nil, newArityMismatch("", name, "domain %d is not a space", i)
		}
	}
	for i, s := range codomains {
		if s == nil {
			return nil, newArityMismatch("", name, "codomain %d is not a space", i)
		}
	}
	return &Block{
		name:      name,
		domains:   append([]*Space(nil), domains...),
		codomains: append([]*Space(nil), codomains...),
		rule:      rule,
	}, nil
}

// Name returns the block name.
func (b *Block) Name() string { return b.name }

// Domains returns a copy of the domain list.
func (b *Block) Domains() []*Space { return append([]*Space(nil), b.domains...) }

// Codomains returns a copy of the codomain list.
func (b *Block) Codomains() []*Space { return append([]*Space(nil), b.codomains...) }

// Map invokes the rule on points. Arity is checked on the way in and on the
// way out, and every point on either side must be shaped like its space.
func (b *Block) Map(points []*Point) ([]*Point, error) {
	if len(points) != len(b.domains) {
		return nil, newArityMismatch("", b.name, "expected %d input points, got %d", len(b.domains), len(points))
	}
	for i, p := range points {
		if p == nil {
			return nil, newArityMismatch("", b.name, "input %d is nil", i)
		}
		if err := conform(b.domains[i], p); err != nil {
			return nil, err
		}
	}

	out, err := b.rule(points)
	if err != nil {
		return nil, err
	}

	if len(out) != len(b.codomains) {
		return nil, newArityMismatch("", b.name, "expected %d output points, got %d", len(b.codomains), len(out))
	}
	for i, p := range out {
		if p == nil {
			return nil, newArityMismatch("", b.name, "output %d is nil", i)
		}
		if err := conform(b.codomains[i], p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// String renders the block signature, e.g. "euclidean: [Position, Position] -> [Real]".
func (b *Block) String() string {
	return fmt.Sprintf("%s: %s -> %s", b.name, spaceNames(b.domains), spaceNames(b.codomains))
}

// conform checks that p is shaped like s. Points of a different space with
// an identical expanded shape are accepted.
func conform(s *Space, p *Point) error {
	if p.space == s || p.space.shape.Equal(s.shape) {
		return nil
	}
	return newDimensionMismatch(s.name, s.shape, p.space.shape, Diff(s.shape, p.space.shape))
}

func spaceNames(spaces []*Space) string {
	names := make([]string, len(spaces))
	for i, s := range spaces {
		names[i] = s.name
	}
	return "[" + strings.Join(names, ", ") + "]"
}
