package inference

import (
	"context"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/harness/artifact"
	"github.com/neurlang/harness/config"
	"github.com/neurlang/harness/datasets"
	"github.com/neurlang/harness/datasets/isalnum"
	"github.com/neurlang/harness/device"
	"github.com/neurlang/harness/layer"
	"github.com/neurlang/harness/net/feedforward"
	"github.com/neurlang/harness/trainer"
)

// write stores a config and a model with the given parameters in a fresh directory.
func write(t *testing.T, cfg config.Training, outputs int, weight, bias []float64) artifact.Dir {
	fs := afero.NewMemMapFs()
	dir := artifact.New(fs, "/run")
	require.NoError(t, dir.Recreate())
	require.NoError(t, cfg.Save(fs, dir.ConfigPath()))

	m := cfg.Model
	m.InputSize = len(weight) / outputs
	net, err := feedforward.New(m, outputs, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.NoError(t, net.LoadRecord(feedforward.Record{
		Version:    feedforward.RecordVersion,
		InputSize:  m.InputSize,
		OutputSize: outputs,
		Weight:     weight,
		Bias:       bias,
	}))
	require.NoError(t, net.WriteCompressedWeightsToFile(fs, dir.ModelPath()))
	return dir
}

func classifierConfig(inputs, classes int) config.Training {
	cfg := config.Default()
	cfg.Model.InputSize = inputs
	cfg.Model.NumClasses = classes
	return cfg
}

func TestClassifyTieBreak(t *testing.T) {
	dir := write(t, classifierConfig(2, 2), 2, []float64{0, 0, 0, 0}, []float64{0.5, 0.5})
	item := datasets.ClassificationItem{Inputs: []float64{3, -1}}

	class, err := Classify(dir, device.CPU(), item)
	require.NoError(t, err)
	assert.Equal(t, 0, class)

	c, err := LoadClassifier(dir, device.CPU())
	require.NoError(t, err)
	scores, err := c.Scores(item)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, scores)
}

func TestClassifyPicksMax(t *testing.T) {
	// weight is input x class
	dir := write(t, classifierConfig(2, 3), 3, []float64{
		1, 0, 0,
		0, 0, 2,
	}, []float64{0, 0.1, 0})
	class, err := Classify(dir, device.CPU(), datasets.ClassificationItem{Inputs: []float64{1, 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, class)
	class, err = Classify(dir, device.CPU(), datasets.ClassificationItem{Inputs: []float64{0, 0}})
	require.NoError(t, err)
	assert.Equal(t, 1, class)
}

func TestRegressExactScalar(t *testing.T) {
	cfg := config.Default()
	cfg.Model.InputSize = 2
	dir := write(t, cfg, 1, []float64{2, 3}, []float64{0.25})

	v, err := Regress(dir, device.CPU(), datasets.RegressionItem{Inputs: []float64{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, 8.25, v)
}

func TestMissingConfig(t *testing.T) {
	dir := artifact.New(afero.NewMemMapFs(), "/run")
	_, err := Classify(dir, device.CPU(), datasets.ClassificationItem{Inputs: []float64{1}})
	var cle *artifact.ConfigLoadError
	assert.True(t, errors.As(err, &cle))
}

func TestMissingModel(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := artifact.New(fs, "/run")
	require.NoError(t, classifierConfig(2, 2).Save(fs, dir.ConfigPath()))

	_, err := Classify(dir, device.CPU(), datasets.ClassificationItem{Inputs: []float64{1, 2}})
	var mle *artifact.ModelLoadError
	require.True(t, errors.As(err, &mle))
	assert.Equal(t, dir.ModelPath(), mle.Path)
}

func TestStoredShapeMismatch(t *testing.T) {
	dir := write(t, classifierConfig(2, 2), 2, []float64{1, 2, 3, 4, 5, 6}, []float64{0, 0})

	_, err := LoadClassifier(dir, device.CPU())
	var mle *artifact.ModelLoadError
	var sme *layer.ShapeMismatchError
	assert.True(t, errors.As(err, &mle))
	assert.True(t, errors.As(err, &sme))
}

func TestItemWidthMismatch(t *testing.T) {
	cfg := config.Default()
	cfg.Model.InputSize = 2
	dir := write(t, cfg, 1, []float64{2, 3}, []float64{0})

	_, err := Regress(dir, device.CPU(), datasets.RegressionItem{Inputs: []float64{1, 2, 3}})
	var sme *layer.ShapeMismatchError
	assert.True(t, errors.As(err, &sme))
}

func TestEvaluateTrainedClassifier(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := classifierConfig(isalnum.InputSize, isalnum.Classes)
	cfg.NumEpochs = 2
	cfg.BatchSize = 16
	cfg.LearningRate = 1e-2
	_, err := trainer.TrainClassification(context.Background(), isalnum.New(), cfg, trainer.Options{ArtifactDir: "/run", Fs: fs, Fresh: true})
	require.NoError(t, err)

	c, err := LoadClassifier(artifact.New(fs, "/run"), device.CPU())
	require.NoError(t, err)
	assert.Equal(t, cfg, c.Config)

	test := isalnum.New().Test()
	rep, err := c.Evaluate(test, 4)
	require.NoError(t, err)
	assert.Equal(t, test.Len(), rep.Items)
	assert.InDelta(t, float64(rep.Correct)/float64(rep.Items), rep.Accuracy, 1e-12)

	// sequential predictions agree with the parallel report
	var correct int
	for i := 0; i < test.Len(); i++ {
		item, _ := test.Get(i)
		class, err := c.Predict(item)
		require.NoError(t, err)
		if class == item.Label {
			correct++
		}
	}
	assert.Equal(t, correct, rep.Correct)
}

func TestEvaluateRegressor(t *testing.T) {
	cfg := config.Default()
	cfg.Model.InputSize = 1
	dir := write(t, cfg, 1, []float64{1}, []float64{0})
	r, err := LoadRegressor(dir, device.CPU())
	require.NoError(t, err)

	rep, err := r.Evaluate(datasets.Slice[datasets.RegressionItem]{
		{Inputs: []float64{1}, Value: 1},
		{Inputs: []float64{2}, Value: 4},
		{Inputs: []float64{3}, Value: 3},
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Items)
	assert.InDelta(t, 4.0/3.0, rep.MSE, 1e-12)
	assert.Equal(t, 2.0, rep.MaxError)
}
