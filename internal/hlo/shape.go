package hlo

import (
	"fmt"
	"strconv"
	"strings"
)

// PrimitiveType is the element type of a shape.
type PrimitiveType int

const (
	InvalidType PrimitiveType = iota
	PRED
	S32
	S64
	U32
	U64
	F32
	F64
)

var typeNames = map[PrimitiveType]string{
	PRED: "pred",
	S32:  "s32",
	S64:  "s64",
	U32:  "u32",
	U64:  "u64",
	F32:  "f32",
	F64:  "f64",
}

// String returns the lowercase type name, e.g. "f32".
func (t PrimitiveType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("invalid(%d)", int(t))
}

// IsBool reports whether the type is the predicate type.
func (t PrimitiveType) IsBool() bool { return t == PRED }

// IsInteger reports whether the type is a signed or unsigned integer type.
func (t PrimitiveType) IsInteger() bool {
	switch t {
	case S32, S64, U32, U64:
		return true
	}
	return false
}

// IsFloat reports whether the type is a floating-point type.
func (t PrimitiveType) IsFloat() bool { return t == F32 || t == F64 }

// Shape describes the element type and dimensions of a value.
// A shape with no dimensions is a scalar.
type Shape struct {
	Element PrimitiveType
	Dims    []int64
}

// ScalarShape returns a zero-rank shape of the given element type.
func ScalarShape(t PrimitiveType) Shape {
	return Shape{Element: t}
}

// ArrayShape returns a shape with the given element type and dimensions.
func ArrayShape(t PrimitiveType, dims ...int64) Shape {
	return Shape{Element: t, Dims: dims}
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int { return len(s.Dims) }

// Volume returns the total element count. A scalar has volume 1.
func (s Shape) Volume() int64 {
	n := int64(1)
	for _, d := range s.Dims {
		n *= d
	}
	return n
}

// Equal reports whether two shapes have the same type and dimensions.
func (s Shape) Equal(o Shape) bool {
	if s.Element != o.Element || len(s.Dims) != len(o.Dims) {
		return false
	}
	for i := range s.Dims {
		if s.Dims[i] != o.Dims[i] {
			return false
		}
	}
	return true
}

// HumanString renders the shape in its textual form, e.g. "s32[]"
// for a scalar or "f32[2,3]" for a rank-2 array.
func (s Shape) HumanString() string {
	var b strings.Builder
	b.WriteString(s.Element.String())
	b.WriteByte('[')
	for i, d := range s.Dims {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(d, 10))
	}
	b.WriteByte(']')
	return b.String()
}

// ParseShape parses the textual shape form produced by HumanString.
// Whitespace around the type name and dimensions is tolerated.
func ParseShape(text string) (Shape, error) {
	trimmed := strings.TrimSpace(text)
	open := strings.IndexByte(trimmed, '[')
	if open < 0 || !strings.HasSuffix(trimmed, "]") {
		return Shape{}, fmt.Errorf("parse shape %q: want <type>[dims]", text)
	}

	typeName := strings.TrimSpace(trimmed[:open])
	var elem PrimitiveType
	for t, name := range typeNames {
		if name == typeName {
			elem = t
			break
		}
	}
	if elem == InvalidType {
		return Shape{}, fmt.Errorf("parse shape %q: unknown element type %q", text, typeName)
	}

	inner := strings.TrimSpace(trimmed[open+1 : len(trimmed)-1])
	if inner == "" {
		return Shape{Element: elem}, nil
	}

	parts := strings.Split(inner, ",")
	dims := make([]int64, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return Shape{}, fmt.Errorf("parse shape %q: bad dimension %q", text, p)
		}
		if d < 0 {
			return Shape{}, fmt.Errorf("parse shape %q: negative dimension %d", text, d)
		}
		dims = append(dims, d)
	}
	return Shape{Element: elem, Dims: dims}, nil
}
