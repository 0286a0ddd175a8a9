package hlo

import (
	"fmt"
	"strconv"
	"strings"
)

// Literal is a fully materialized typed value. Storage is one backing
// slice chosen by the element type's class; elements are laid out in
// row-major order.
type Literal struct {
	shape  Shape
	bools  []bool
	ints   []int64
	floats []float64
}

// NewBoolLiteral builds a PRED literal. The value count must match the
// shape's volume.
func NewBoolLiteral(shape Shape, values []bool) (Literal, error) {
	if !shape.Element.IsBool() {
		return Literal{}, fmt.Errorf("literal: %s is not a bool shape", shape.HumanString())
	}
	if int64(len(values)) != shape.Volume() {
		return Literal{}, countMismatch(shape, len(values))
	}
	return Literal{shape: shape, bools: values}, nil
}

// NewIntLiteral builds an integer literal (s32/s64/u32/u64).
func NewIntLiteral(shape Shape, values []int64) (Literal, error) {
	if !shape.Element.IsInteger() {
		return Literal{}, fmt.Errorf("literal: %s is not an integer shape", shape.HumanString())
	}
	if int64(len(values)) != shape.Volume() {
		return Literal{}, countMismatch(shape, len(values))
	}
	return Literal{shape: shape, ints: values}, nil
}

// NewFloatLiteral builds a floating-point literal (f32/f64).
func NewFloatLiteral(shape Shape, values []float64) (Literal, error) {
	if !shape.Element.IsFloat() {
		return Literal{}, fmt.Errorf("literal: %s is not a float shape", shape.HumanString())
	}
	if int64(len(values)) != shape.Volume() {
		return Literal{}, countMismatch(shape, len(values))
	}
	return Literal{shape: shape, floats: values}, nil
}

func countMismatch(shape Shape, got int) error {
	return fmt.Errorf("literal: %s wants %d elements, got %d", shape.HumanString(), shape.Volume(), got)
}

// ScalarS32 returns a scalar s32 literal.
func ScalarS32(v int32) Literal {
	return Literal{shape: ScalarShape(S32), ints: []int64{int64(v)}}
}

// ScalarF32 returns a scalar f32 literal.
func ScalarF32(v float32) Literal {
	return Literal{shape: ScalarShape(F32), floats: []float64{float64(v)}}
}

// ScalarPred returns a scalar pred literal.
func ScalarPred(v bool) Literal {
	return Literal{shape: ScalarShape(PRED), bools: []bool{v}}
}

// Shape returns the literal's shape.
func (l Literal) Shape() Shape { return l.shape }

// Bools returns the backing bool slice. Callers must not mutate it.
func (l Literal) Bools() []bool { return l.bools }

// Ints returns the backing integer slice. Callers must not mutate it.
func (l Literal) Ints() []int64 { return l.ints }

// Floats returns the backing float slice. Callers must not mutate it.
func (l Literal) Floats() []float64 { return l.floats }

// Equal reports whether two literals have the same shape and elements.
func (l Literal) Equal(o Literal) bool {
	if !l.shape.Equal(o.shape) {
		return false
	}
	switch {
	case l.shape.Element.IsBool():
		for i := range l.bools {
			if l.bools[i] != o.bools[i] {
				return false
			}
		}
	case l.shape.Element.IsInteger():
		for i := range l.ints {
			if l.ints[i] != o.ints[i] {
				return false
			}
		}
	default:
		for i := range l.floats {
			if l.floats[i] != o.floats[i] {
				return false
			}
		}
	}
	return true
}

// String renders the literal's value text: a bare element for scalars,
// nested brace lists for arrays, e.g. "{{1, 2}, {3, 4}}".
func (l Literal) String() string {
	var b strings.Builder
	l.render(&b, 0, 0)
	return b.String()
}

func (l Literal) render(b *strings.Builder, dim int, base int64) {
	if dim == l.shape.Rank() {
		b.WriteString(l.element(base))
		return
	}
	stride := int64(1)
	for _, d := range l.shape.Dims[dim+1:] {
		stride *= d
	}
	b.WriteByte('{')
	for i := int64(0); i < l.shape.Dims[dim]; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		l.render(b, dim+1, base+i*stride)
	}
	b.WriteByte('}')
}

func (l Literal) element(i int64) string {
	switch {
	case l.shape.Element.IsBool():
		return strconv.FormatBool(l.bools[i])
	case l.shape.Element.IsInteger():
		return strconv.FormatInt(l.ints[i], 10)
	default:
		return strconv.FormatFloat(l.floats[i], 'g', -1, 64)
	}
}
