package linear

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/harness/layer"
)

func TestNewBounds(t *testing.T) {
	l := MustNew(4, 3, rand.New(rand.NewSource(7)))
	assert.Equal(t, 4, l.InputSize())
	assert.Equal(t, 3, l.OutputSize())
	for _, v := range l.Weight.RawMatrix().Data {
		assert.LessOrEqual(t, math.Abs(v), 0.5)
	}
	_, err := New(0, 3, rand.New(rand.NewSource(7)))
	assert.Error(t, err)
}

func TestForward(t *testing.T) {
	l := &Linear{
		Weight: mat.NewDense(2, 2, []float64{1, 2, 3, 4}),
		Bias:   []float64{0.5, -1},
	}
	out, err := l.Forward(mat.NewDense(1, 2, []float64{1, 1}), layer.Eval, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{4.5, 5}, out.RawRowView(0))
}

func TestForwardShapeMismatch(t *testing.T) {
	l := MustNew(3, 2, rand.New(rand.NewSource(1)))
	_, err := l.Forward(mat.NewDense(1, 4, nil), layer.Eval, nil)

	var sme *layer.ShapeMismatchError
	require.True(t, errors.As(err, &sme))
	assert.Equal(t, 3, sme.Want)
	assert.Equal(t, 4, sme.Got)
}

func TestBackward(t *testing.T) {
	l := MustNew(2, 1, rand.New(rand.NewSource(1)))
	in := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	dOut := mat.NewDense(2, 1, []float64{1, -1})

	g := l.Backward(in, dOut)
	assert.Equal(t, []float64{-2, -2}, g.Weight.RawMatrix().Data)
	assert.Equal(t, []float64{0}, g.Bias)
}
