// Package linear implements a fully connected linear projection layer
package linear

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/harness/layer"
)

// Linear computes in * Weight + Bias. Weight is InputSize x OutputSize.
type Linear struct {
	Weight *mat.Dense
	Bias   []float64
}

// Gradients holds the loss gradients of a linear layer's parameters.
type Gradients struct {
	Weight *mat.Dense
	Bias   []float64
}

// New creates a linear layer with parameters drawn uniformly from
// [-1/sqrt(in), 1/sqrt(in)].
func New(in, out int, rng *rand.Rand) (*Linear, error) {
	if in <= 0 || out <= 0 {
		return nil, errors.Errorf("linear: invalid shape %dx%d", in, out)
	}
	bound := 1 / math.Sqrt(float64(in))
	w := make([]float64, in*out)
	for i := range w {
		w[i] = (2*rng.Float64() - 1) * bound
	}
	b := make([]float64, out)
	for i := range b {
		b[i] = (2*rng.Float64() - 1) * bound
	}
	return &Linear{Weight: mat.NewDense(in, out, w), Bias: b}, nil
}

// MustNew creates a linear layer, panicking on an invalid shape.
func MustNew(in, out int, rng *rand.Rand) *Linear {
	o, err := New(in, out, rng)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// InputSize is the expected input width.
func (l *Linear) InputSize() int {
	r, _ := l.Weight.Dims()
	return r
}

// OutputSize is the output width.
func (l *Linear) OutputSize() int {
	_, c := l.Weight.Dims()
	return c
}

// Forward projects each input row. An input width other than InputSize is a
// *layer.ShapeMismatchError.
func (l *Linear) Forward(in *mat.Dense, _ layer.Mode, _ *rand.Rand) (*mat.Dense, error) {
	rows, cols := in.Dims()
	if cols != l.InputSize() {
		return nil, &layer.ShapeMismatchError{Layer: "linear", What: "input", Want: l.InputSize(), Got: cols}
	}
	out := mat.NewDense(rows, l.OutputSize(), nil)
	out.Mul(in, l.Weight)
	for i := 0; i < rows; i++ {
		floats.Add(out.RawRowView(i), l.Bias)
	}
	return out, nil
}

// Backward returns the parameter gradients given the layer input and the loss
// gradient with respect to the layer output.
func (l *Linear) Backward(in, dOut *mat.Dense) Gradients {
	g := Gradients{
		Weight: mat.NewDense(l.InputSize(), l.OutputSize(), nil),
		Bias:   make([]float64, l.OutputSize()),
	}
	g.Weight.Mul(in.T(), dOut)
	rows, _ := dOut.Dims()
	for i := 0; i < rows; i++ {
		floats.Add(g.Bias, dOut.RawRowView(i))
	}
	return g
}

var _ layer.Layer = (*Linear)(nil)
