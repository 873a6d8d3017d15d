package dropout

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/harness/layer"
)

func TestNew(t *testing.T) {
	_, err := New(1)
	assert.Error(t, err)
	_, err = New(-0.1)
	assert.Error(t, err)
	assert.Panics(t, func() { MustNew(2) })
	assert.Equal(t, 0.25, MustNew(0.25).Prob)
}

func TestEvalIsIdentity(t *testing.T) {
	in := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	out, err := MustNew(0.5).Forward(in, layer.Eval, nil)
	require.NoError(t, err)
	assert.True(t, mat.Equal(in, out))
}

func TestTrainMasksAndScales(t *testing.T) {
	in := mat.NewDense(50, 40, nil)
	for i := 0; i < 50; i++ {
		for j := 0; j < 40; j++ {
			in.Set(i, j, 1)
		}
	}
	out, err := MustNew(0.5).Forward(in, layer.Train, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	var kept int
	for i := 0; i < 50; i++ {
		for _, v := range out.RawRowView(i) {
			switch v {
			case 0:
			case 2:
				kept++
			default:
				t.Fatalf("unexpected value %v", v)
			}
		}
	}
	assert.InDelta(t, 1000, kept, 150)
	assert.Equal(t, 1.0, in.At(0, 0))
}

func TestTrainNeedsRandomSource(t *testing.T) {
	_, err := MustNew(0.5).Forward(mat.NewDense(1, 1, []float64{1}), layer.Train, nil)
	assert.Error(t, err)
}
