package feedforward

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/harness/artifact"
	"github.com/neurlang/harness/config"
	"github.com/neurlang/harness/layer"
)

func newNet(t *testing.T, in, out int) *FeedforwardNetwork {
	net, err := New(config.Model{Dropout: 0.5, InputSize: in}, out, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	return net
}

func TestNewValidates(t *testing.T) {
	_, err := New(config.Model{Dropout: 1, InputSize: 2}, 2, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
	_, err = New(config.Model{Dropout: 0.5, InputSize: 0}, 2, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestForwardEvalDeterministic(t *testing.T) {
	net := newNet(t, 3, 2)
	in := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	a, err := net.Forward(in)
	require.NoError(t, err)
	b, err := net.Forward(in)
	require.NoError(t, err)
	assert.True(t, mat.Equal(a, b))
	r, c := a.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
}

func TestForwardShapeMismatch(t *testing.T) {
	net := newNet(t, 3, 2)
	_, err := net.Forward(mat.NewDense(1, 2, nil))
	var sme *layer.ShapeMismatchError
	require.True(t, errors.As(err, &sme))
	assert.Equal(t, 3, sme.Want)
	assert.Equal(t, 2, sme.Got)

	_, _, err = net.ForwardTrain(mat.NewDense(1, 4, nil), rand.New(rand.NewSource(1)))
	assert.True(t, errors.As(err, &sme))
}

func TestBackwardUsesDroppedInput(t *testing.T) {
	net := newNet(t, 4, 1)
	in := mat.NewDense(1, 4, []float64{1, 1, 1, 1})
	_, trace, err := net.ForwardTrain(in, rand.New(rand.NewSource(9)))
	require.NoError(t, err)

	g := net.Backward(trace, mat.NewDense(1, 1, []float64{1}))
	for _, v := range g.Weight.RawMatrix().Data {
		assert.Contains(t, []float64{0, 2}, v)
	}
	assert.Equal(t, []float64{1}, g.Bias)

	params := net.Params(g)
	require.Len(t, params, 2)
	assert.Equal(t, "linear.weight", params[0].Name)
	assert.Len(t, params[0].Value, 4)
	assert.Len(t, params[1].Grad, 1)
}

func TestRecordRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	a := newNet(t, 3, 2)
	require.NoError(t, a.WriteCompressedWeightsToFile(fs, "/run/model"))

	b, err := New(config.Model{Dropout: 0.5, InputSize: 3}, 2, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	require.NoError(t, b.ReadCompressedWeightsFromFile(fs, "/run/model"))
	assert.Equal(t, a.Record(), b.Record())
}

func TestReadShapeMismatch(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, newNet(t, 3, 2).WriteCompressedWeightsToFile(fs, "/run/model"))

	err := newNet(t, 4, 2).ReadCompressedWeightsFromFile(fs, "/run/model")
	var mle *artifact.ModelLoadError
	var sme *layer.ShapeMismatchError
	require.True(t, errors.As(err, &mle))
	require.True(t, errors.As(err, &sme))
	assert.Equal(t, "input", sme.What)

	err = newNet(t, 3, 2).ReadCompressedWeightsFromFile(fs, "/run/missing")
	assert.True(t, errors.As(err, &mle))
}

func TestLoadRecordRejectsVersion(t *testing.T) {
	net := newNet(t, 1, 1)
	r := net.Record()
	r.Version = 7
	assert.Error(t, net.LoadRecord(r))
}
