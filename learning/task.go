// Package learning implements the classification and regression task variants
// and the train/valid step protocol the trainer drives.
package learning

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/harness/batcher"
	"github.com/neurlang/harness/layer/linear"
	"github.com/neurlang/harness/net/feedforward"
)

// Output is what a step reports to metric observers.
type Output interface {

	// Loss is the task loss of the batch.
	Loss() float64

	// Output is the raw output block, one row per item.
	Output() *mat.Dense

	// Len is the number of items in the batch.
	Len() int
}

// TrainOutput is the result of a training step: the gradients to apply and
// the task output of the batch.
type TrainOutput struct {
	Grads linear.Gradients
	Item  Output
}

// Task is the capability set shared by both task variants.
type Task[B any] interface {

	// Model returns the network the task trains.
	Model() *feedforward.FeedforwardNetwork

	// TrainStep runs a training forward pass with dropout drawn from rng and
	// computes the parameter gradients of the loss.
	TrainStep(batch B, rng *rand.Rand) (TrainOutput, error)

	// ValidStep runs an evaluation forward pass without gradients.
	ValidStep(batch B) (Output, error)
}

// Argmax returns the index of the largest value, the lowest index on ties.
func Argmax(row []float64) int {
	return floats.MaxIdx(row)
}

var (
	_ Task[batcher.ClassificationBatch] = (*Classification)(nil)
	_ Task[batcher.RegressionBatch]     = (*Regression)(nil)
)
