package learning

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/harness/batcher"
	"github.com/neurlang/harness/config"
	"github.com/neurlang/harness/layer"
)

func TestArgmaxTieBreak(t *testing.T) {
	assert.Equal(t, 0, Argmax([]float64{0.5, 0.5}))
	assert.Equal(t, 1, Argmax([]float64{0.1, 0.7, 0.7}))
	assert.Equal(t, 2, Argmax([]float64{-3, -2, -1}))
}

func TestCrossEntropy(t *testing.T) {
	out := mat.NewDense(1, 2, []float64{0, 0})
	loss, grad, err := CrossEntropy(out, []int{0}, true)
	require.NoError(t, err)
	assert.InDelta(t, math.Ln2, loss, 1e-12)
	assert.InDeltaSlice(t, []float64{-0.5, 0.5}, grad.RawRowView(0), 1e-12)

	_, _, err = CrossEntropy(out, []int{2}, false)
	assert.Error(t, err)
}

func TestCrossEntropyStable(t *testing.T) {
	out := mat.NewDense(1, 2, []float64{1000, 0})
	loss, _, err := CrossEntropy(out, []int{0}, false)
	require.NoError(t, err)
	assert.InDelta(t, 0, loss, 1e-12)
}

func TestSquaredErrorIsSummed(t *testing.T) {
	out := mat.NewDense(2, 1, []float64{1, 3})
	targets := mat.NewDense(2, 1, []float64{0, 1})
	loss, grad := SquaredError(out, targets, true)
	assert.Equal(t, 5.0, loss)
	assert.Equal(t, []float64{2, 4}, grad.RawMatrix().Data)
}

// numericGrads estimates the loss gradients by central differences.
func numericGrads(params []layer.Param, loss func() float64) [][]float64 {
	const h = 1e-6
	out := make([][]float64, len(params))
	for p, param := range params {
		out[p] = make([]float64, len(param.Value))
		for i := range param.Value {
			old := param.Value[i]
			param.Value[i] = old + h
			up := loss()
			param.Value[i] = old - h
			down := loss()
			param.Value[i] = old
			out[p][i] = (up - down) / (2 * h)
		}
	}
	return out
}

func TestClassificationGradients(t *testing.T) {
	task, err := NewClassification(config.Model{Dropout: 0, InputSize: 3, NumClasses: 4}, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	batch := batcher.ClassificationBatch{
		Inputs:  mat.NewDense(2, 3, []float64{0.5, -1, 2, 1, 0, -0.5}),
		Targets: []int{3, 1},
	}
	out, err := task.TrainStep(batch, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	params := task.Model().Params(out.Grads)
	want := numericGrads(params, func() float64 {
		o, err := task.ValidStep(batch)
		require.NoError(t, err)
		return o.Loss()
	})
	for p := range params {
		assert.InDeltaSlice(t, want[p], params[p].Grad, 1e-6, params[p].Name)
	}
}

func TestRegressionGradients(t *testing.T) {
	task, err := NewRegression(config.Model{Dropout: 0, InputSize: 2}, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	batch := batcher.RegressionBatch{
		Inputs:  mat.NewDense(3, 2, []float64{1, 2, 3, 4, -1, 0.5}),
		Targets: mat.NewDense(3, 1, []float64{0.5, -1, 2}),
	}
	out, err := task.TrainStep(batch, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 3, out.Item.Len())

	params := task.Model().Params(out.Grads)
	want := numericGrads(params, func() float64 {
		o, err := task.ValidStep(batch)
		require.NoError(t, err)
		return o.Loss()
	})
	for p := range params {
		assert.InDeltaSlice(t, want[p], params[p].Grad, 1e-5, params[p].Name)
	}
}

func TestClassificationCorrect(t *testing.T) {
	o := ClassificationOutput{
		output:  mat.NewDense(3, 2, []float64{0.5, 0.5, 0.1, 0.9, 0.8, 0.2}),
		targets: []int{0, 0, 0},
	}
	assert.Equal(t, 2, o.Correct())
	assert.Equal(t, 3, o.Len())
}

func TestStepShapeMismatch(t *testing.T) {
	task, err := NewClassification(config.Model{Dropout: 0.5, InputSize: 3, NumClasses: 2}, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	_, err = task.ValidStep(batcher.ClassificationBatch{Inputs: mat.NewDense(1, 5, nil), Targets: []int{0}})
	var sme *layer.ShapeMismatchError
	assert.True(t, errors.As(err, &sme))

	reg, err := NewRegression(config.Model{Dropout: 0.5, InputSize: 2}, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	_, err = reg.TrainStep(batcher.RegressionBatch{Inputs: mat.NewDense(2, 2, nil), Targets: mat.NewDense(1, 1, nil)}, rand.New(rand.NewSource(1)))
	assert.True(t, errors.As(err, &sme))
}

func TestNewClassificationNeedsClasses(t *testing.T) {
	_, err := NewClassification(config.Model{InputSize: 3}, rand.New(rand.NewSource(5)))
	assert.Error(t, err)
}
