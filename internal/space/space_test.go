package space

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cadcad/internal/ir"
)

func TestNewSpace_Validation(t *testing.T) {
	_, err := NewSpace("", Dimensions{})
	assert.Equal(t, ErrCodeInvalidSpace, CodeOf(err))

	_, err = NewSpace("Bad", Dimensions{"ref": Ref(nil)})
	assert.True(t, IsArityMismatch(err))

	_, err = NewSpace("Bad", Dimensions{"n": Nested(Dimensions{"ref": Ref(nil)})})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "n.ref")

	_, err = NewSpace("Bad", Dimensions{"zero": {}})
	assert.True(t, IsArityMismatch(err))
}

func TestNewSpace_FreezesDimensions(t *testing.T) {
	dims := Dimensions{"a": Of(ir.KindInt)}
	s, err := NewSpace("A", dims)
	require.NoError(t, err)

	dims["b"] = Of(ir.KindFloat)

	assert.Equal(t, "{a: int}", s.Dimensions().String())
	assert.Equal(t, "A{a: int}", s.String())
}

func TestSpace_CreatePointRunsConstraintsInOrder(t *testing.T) {
	s := positionSpace(t)
	var calls []string
	for _, name := range []string{"first", "second", "third"} {
		_, err := s.CreateConstraint(name, func(p *Point) (bool, error) {
			calls = append(calls, name)
			v, _ := p.Get("x")
			return name != "second" || v.(ir.Float) < 10, nil
		})
		require.NoError(t, err)
	}

	_, err := s.CreatePoint(ir.Object{"x": ir.Float(1), "y": ir.Float(0)})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, calls)

	calls = nil
	_, err = s.CreatePoint(ir.Object{"x": ir.Float(50), "y": ir.Float(0)})
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err))
	assert.Equal(t, []string{"first", "second"}, calls, "stops at first failure")

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "second", se.Block)
	assert.Contains(t, se.Message, `"second"`)
}

func TestSpace_CreatePointChecksDimensionsFirst(t *testing.T) {
	s := positionSpace(t)
	called := false
	_, err := s.CreateConstraint("never", func(*Point) (bool, error) {
		called = true
		return true, nil
	})
	require.NoError(t, err)

	_, err = s.CreatePoint(ir.Object{"x": ir.Float(1)})

	assert.True(t, IsDimensionMismatch(err))
	assert.False(t, called)
}

func TestSpace_ConstraintErrorsPropagate(t *testing.T) {
	s := positionSpace(t)
	boom := errors.New("boom")
	_, err := s.CreateConstraint("explodes", func(*Point) (bool, error) { return false, boom })
	require.NoError(t, err)

	_, err = s.CreatePoint(ir.Object{"x": ir.Float(1), "y": ir.Float(0)})

	assert.ErrorIs(t, err, boom)
	assert.False(t, IsConstraintViolation(err))
}

func TestSpace_ReRegistrationReplacesInPlace(t *testing.T) {
	s := positionSpace(t)
	_, err := s.CreateConstraint("a", func(*Point) (bool, error) { return true, nil })
	require.NoError(t, err)
	_, err = s.CreateConstraint("b", func(*Point) (bool, error) { return true, nil })
	require.NoError(t, err)
	_, err = s.CreateConstraint("a", func(*Point) (bool, error) { return false, nil })
	require.NoError(t, err)

	names := []string{}
	for _, b := range s.Constraints() {
		names = append(names, b.Name())
	}
	assert.Equal(t, []string{"a", "b"}, names)

	_, err = s.CreatePoint(ir.Object{"x": ir.Float(1), "y": ir.Float(0)})
	assert.True(t, IsConstraintViolation(err))
}

func TestSpace_AddConstraintRejectsWrongSignature(t *testing.T) {
	s := positionSpace(t)
	other := MustSpace("Other", Dimensions{"z": Of(ir.KindInt)})

	wrongDomain, err := NewBlock("c", []*Space{other}, []*Space{Bit}, identity)
	require.NoError(t, err)
	wrongCodomain, err := NewBlock("c", []*Space{s}, []*Space{Real}, identity)
	require.NoError(t, err)
	twoInputs, err := NewBlock("c", []*Space{s, s}, []*Space{Bit}, identity)
	require.NoError(t, err)

	for _, b := range []*Block{nil, wrongDomain, wrongCodomain, twoInputs} {
		assert.True(t, IsArityMismatch(s.AddConstraint(b)))
	}
	assert.Empty(t, s.Constraints())
}

func TestSpace_Distance(t *testing.T) {
	s := positionSpace(t)
	_, err := s.CreateMetric("manhattan", func(a, b *Point) (float64, error) {
		ax, _ := a.Get("x")
		bx, _ := b.Get("x")
		ay, _ := a.Get("y")
		by, _ := b.Get("y")
		dx := float64(ax.(ir.Float) - bx.(ir.Float))
		dy := float64(ay.(ir.Float) - by.(ir.Float))
		if dx < 0 {
			dx = -dx
		}
		if dy < 0 {
			dy = -dy
		}
		return dx + dy, nil
	})
	require.NoError(t, err)

	a := MustPoint(s, ir.Object{"x": ir.Float(0), "y": ir.Float(0)})
	b := MustPoint(s, ir.Object{"x": ir.Float(3), "y": ir.Float(4)})

	d, err := s.Distance("manhattan", a, b)
	require.NoError(t, err)
	assert.InDelta(t, 7.0, d, 1e-9)

	_, err = s.Distance("missing", a, b)
	assert.Equal(t, ErrCodeUnknownBlock, CodeOf(err))
}

func TestSpace_Project(t *testing.T) {
	s := positionSpace(t)
	_, err := s.CreateProjection("x-only", Real, func(p *Point) (ir.Object, error) {
		x, _ := p.Get("x")
		return ir.Object{"real": x}, nil
	})
	require.NoError(t, err)

	out, err := s.Project("x-only", MustPoint(s, ir.Object{"x": ir.Float(1.5), "y": ir.Float(0)}))
	require.NoError(t, err)
	assert.Equal(t, 1.5, RealValue(out))

	_, err = s.Project("missing", out)
	assert.Equal(t, ErrCodeUnknownBlock, CodeOf(err))
}

func TestSpace_ProjectRejectsBadOutput(t *testing.T) {
	s := positionSpace(t)
	_, err := s.CreateProjection("broken", Real, func(*Point) (ir.Object, error) {
		return ir.Object{"real": ir.Int(1)}, nil
	})
	require.NoError(t, err)

	_, err = s.Project("broken", MustPoint(s, ir.Object{"x": ir.Float(1), "y": ir.Float(0)}))
	assert.True(t, IsDimensionMismatch(err))
}

func TestSpace_Product(t *testing.T) {
	a := MustSpace("A", Dimensions{"a": Of(ir.KindInt)})
	b := MustSpace("B", Dimensions{"b": Of(ir.KindFloat)})
	c := MustSpace("C", Dimensions{"a": Of(ir.KindFloat)})

	ab, err := a.Product("", b)
	require.NoError(t, err)
	assert.Equal(t, "AxB", ab.Name())
	assert.Equal(t, "{a: int, b: float}", ab.Shape().String())

	ac, err := a.Product("Merged", c)
	require.NoError(t, err)
	assert.Equal(t, "Merged", ac.Name())
	assert.Equal(t, "{a: float}", ac.Shape().String())

	_, err = a.Product("", nil)
	assert.True(t, IsArityMismatch(err))
}

func TestSpace_Operations(t *testing.T) {
	s := positionSpace(t)
	add, _ := ElementwiseOperation(OpAdd)
	sub, _ := ElementwiseOperation(OpSub)
	require.NoError(t, s.DefineOperation(OpSub, sub))
	require.NoError(t, s.DefineOperation(OpAdd, add))

	assert.Equal(t, []string{"add", "sub"}, s.Operations())
	_, ok := s.Operation(OpMul)
	assert.False(t, ok)

	assert.Equal(t, ErrCodeInvalidSpace, CodeOf(s.DefineOperation("", add)))
	assert.Equal(t, ErrCodeInvalidSpace, CodeOf(s.DefineOperation("x", nil)))
}

func TestSpace_Options(t *testing.T) {
	add, _ := ElementwiseOperation(OpAdd)
	seed := positionSpace(t)
	c, err := RangeConstraint(seed, "nonneg", "x", ptr(0), nil)
	require.NoError(t, err)

	s, err := NewSpace("Position2",
		Dimensions{"x": Of(ir.KindFloat), "y": Of(ir.KindFloat)},
		WithDescription("a twin"),
		WithConstraint(c),
		WithOperation(OpAdd, add),
	)
	require.NoError(t, err)

	assert.Equal(t, "a twin", s.Description())
	_, ok := s.Constraint("nonneg")
	assert.True(t, ok)
	assert.Equal(t, []string{"add"}, s.Operations())

	_, err = NewSpace("Bad", Dimensions{"z": Of(ir.KindInt)}, WithConstraint(c))
	assert.True(t, IsArityMismatch(err))
}

func TestSpace_ConcurrentRegistration(t *testing.T) {
	s := positionSpace(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.CreateConstraint(fmt.Sprintf("c%d", i), func(*Point) (bool, error) { return true, nil })
			assert.NoError(t, err)
			_, _ = s.CreatePoint(ir.Object{"x": ir.Float(1), "y": ir.Float(0)})
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Constraints(), 20)
}

func TestPrimitives(t *testing.T) {
	assert.Equal(t, "Integer", Int.Name())
	assert.True(t, BitValue(BitPoint(true)))
	assert.Equal(t, ir.Object{"int": ir.Int(3)}, IntPoint(3).Data())

	_, err := RealPoint(1.0 / zero())
	assert.Error(t, err)
}

func ptr(f float64) *float64 { return &f }

func zero() float64 { return 0 }
