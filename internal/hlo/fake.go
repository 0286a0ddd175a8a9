package hlo

import (
	"math/rand"
	"time"
)

// Generator produces synthetic literals for a given shape. Values are
// bounded so they stay printable and avoid overflow in the computations
// that consume them. A Generator is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator with a fixed seed. Tests use explicit
// seeds for reproducibility.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Literal synthesizes a value of the given shape.
func (g *Generator) Literal(shape Shape) (Literal, error) {
	n := shape.Volume()
	switch {
	case shape.Element.IsBool():
		values := make([]bool, n)
		for i := range values {
			values[i] = g.rng.Intn(2) == 1
		}
		return NewBoolLiteral(shape, values)
	case shape.Element.IsInteger():
		values := make([]int64, n)
		for i := range values {
			values[i] = int64(g.rng.Intn(100))
		}
		return NewIntLiteral(shape, values)
	default:
		values := make([]float64, n)
		for i := range values {
			values[i] = g.rng.Float64()*2 - 1
		}
		return NewFloatLiteral(shape, values)
	}
}

// MakeFakeLiteral synthesizes a value of the given shape using a
// wall-clock seed.
func MakeFakeLiteral(shape Shape) (Literal, error) {
	return NewGenerator(time.Now().UnixNano()).Literal(shape)
}
