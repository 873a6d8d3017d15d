// Package metrics contains the observers attached to the training loop.
//
// Observers only watch: they receive one Event per processed batch and one
// call per finished epoch phase, and they cannot fail the run.
package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Phase is the half of an epoch an event belongs to.
type Phase string

const (
	Train Phase = "train"
	Valid Phase = "valid"
)

// Event describes one processed batch.
type Event struct {
	Phase     Phase
	Epoch     int
	NumEpochs int
	// Iteration counts batches within the epoch phase, starting at 1.
	Iteration    int
	Items        int
	Loss         float64
	Output       *mat.Dense
	Targets      []int // nil for regression
	LearningRate float64
}

// Observer is notified by the training loop.
type Observer interface {
	OnBatch(e Event)
	OnEpochEnd(phase Phase, epoch int)
}

// Metric turns events into numbers. Update reports false when the metric has
// no reading for the event.
type Metric interface {
	Name() string
	Update(e Event) (float64, bool)
	Format(v float64) string
}

// Accuracy is the percentage of rows whose highest output column equals the
// target class. Lowest index wins ties.
type Accuracy struct{}

func (Accuracy) Name() string { return "accuracy" }

func (Accuracy) Update(e Event) (float64, bool) {
	if e.Targets == nil || e.Output == nil || len(e.Targets) == 0 {
		return 0, false
	}
	var correct int
	for i, t := range e.Targets {
		if floats.MaxIdx(e.Output.RawRowView(i)) == t {
			correct++
		}
	}
	return 100 * float64(correct) / float64(len(e.Targets)), true
}

func (Accuracy) Format(v float64) string { return fmt.Sprintf("%.3f %%", v) }

// Loss reports the batch loss.
type Loss struct{}

func (Loss) Name() string                   { return "loss" }
func (Loss) Update(e Event) (float64, bool) { return e.Loss, true }
func (Loss) Format(v float64) string        { return fmt.Sprintf("%.6f", v) }

// LearningRate reports the learning rate of training batches.
type LearningRate struct{}

func (LearningRate) Name() string { return "learning_rate" }

func (LearningRate) Update(e Event) (float64, bool) {
	if e.Phase != Train {
		return 0, false
	}
	return e.LearningRate, true
}

func (LearningRate) Format(v float64) string { return fmt.Sprintf("%.3e", v) }

// Classification is the metric set of the classification task.
func Classification() []Metric {
	return append([]Metric{Accuracy{}}, Regression()...)
}

// Regression is the metric set of the regression task.
func Regression() []Metric {
	return []Metric{Loss{}, LearningRate{}, NewCPUUse(), NewCPUMemory(), NewCPUTemperature()}
}
