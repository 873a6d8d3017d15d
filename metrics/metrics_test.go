package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/mat"
)

func TestAccuracy(t *testing.T) {
	out := mat.NewDense(4, 2, []float64{
		0.1, 0.9,
		0.8, 0.2,
		0.5, 0.5,
		0.3, 0.7,
	})
	v, ok := Accuracy{}.Update(Event{Output: out, Targets: []int{1, 1, 0, 0}})
	require.True(t, ok)
	assert.InDelta(t, 50, v, 1e-12)

	_, ok = Accuracy{}.Update(Event{Output: out})
	assert.False(t, ok)
}

func TestLearningRateTrainOnly(t *testing.T) {
	v, ok := LearningRate{}.Update(Event{Phase: Train, LearningRate: 1e-4})
	require.True(t, ok)
	assert.Equal(t, 1e-4, v)
	_, ok = LearningRate{}.Update(Event{Phase: Valid, LearningRate: 1e-4})
	assert.False(t, ok)
}

func TestResourceInterval(t *testing.T) {
	var calls int
	r := NewResource("probe", func() (float64, bool) {
		calls++
		return float64(calls), true
	}, percent)
	clock := time.Unix(100, 0)
	r.now = func() time.Time { return clock }

	v, ok := r.Update(Event{})
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
	clock = clock.Add(r.Interval / 2)
	v, _ = r.Update(Event{})
	assert.Equal(t, 1.0, v)
	clock = clock.Add(r.Interval)
	v, _ = r.Update(Event{})
	assert.Equal(t, 2.0, v)
	assert.Equal(t, "2.00 %", r.Format(v))
}

func TestRecorder(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	unavailable := NewResource("temp", func() (float64, bool) { return 0, false }, percent)
	rec := NewRecorder(zap.New(core), Loss{}, LearningRate{}, unavailable)

	rec.OnBatch(Event{Phase: Train, Epoch: 1, Iteration: 1, Loss: 2, LearningRate: 0.1})
	rec.OnBatch(Event{Phase: Train, Epoch: 1, Iteration: 2, Loss: math.NaN(), LearningRate: 0.1})
	rec.OnBatch(Event{Phase: Train, Epoch: 1, Iteration: 3, Loss: 4, LearningRate: 0.1})
	rec.OnEpochEnd(Train, 1)
	rec.OnBatch(Event{Phase: Valid, Epoch: 1, Iteration: 1, Loss: 1})
	rec.OnEpochEnd(Valid, 1)

	s := rec.Summary()
	row, ok := s.Last("loss", Train)
	require.True(t, ok)
	assert.Equal(t, Row{Metric: "loss", Phase: Train, Epoch: 1, Count: 2, Mean: 3, Min: 2, Max: 4, Text: "3.000000"}, row)
	row, ok = s.Last("loss", Valid)
	require.True(t, ok)
	assert.Equal(t, 1.0, row.Mean)
	_, ok = s.Last("learning_rate", Valid)
	assert.False(t, ok)
	_, ok = s.Last("temp", Train)
	assert.False(t, ok)

	assert.Equal(t, 2, logs.FilterMessage("epoch").Len())
	assert.Contains(t, s.String(), "loss             train 1:3.000000")
}

func TestDefaultSets(t *testing.T) {
	names := func(ms []Metric) (out []string) {
		for _, m := range ms {
			out = append(out, m.Name())
		}
		return
	}
	assert.Equal(t, []string{"accuracy", "loss", "learning_rate", "cpu_use", "cpu_memory", "cpu_temperature"}, names(Classification()))
	assert.NotContains(t, names(Regression()), "accuracy")
}
