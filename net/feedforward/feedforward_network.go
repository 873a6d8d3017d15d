// Package feedforward implements the dropout -> linear network
package feedforward

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/harness/config"
	"github.com/neurlang/harness/layer"
	"github.com/neurlang/harness/layer/dropout"
	"github.com/neurlang/harness/layer/linear"
)

// FeedforwardNetwork is the model: dropout followed by a linear projection.
// The linear weight and bias are its only learned parameters.
type FeedforwardNetwork struct {
	dropout *dropout.Dropout
	linear  *linear.Linear
}

// Trace keeps what a training forward pass needs for the backward pass.
type Trace struct {
	dropped *mat.Dense
}

// New creates a network from cfg with the given output width, drawing the
// initial parameters from rng.
func New(cfg config.Model, outputs int, rng *rand.Rand) (*FeedforwardNetwork, error) {
	d, err := dropout.New(cfg.Dropout)
	if err != nil {
		return nil, err
	}
	l, err := linear.New(cfg.InputSize, outputs, rng)
	if err != nil {
		return nil, errors.Wrapf(err, "model input_size=%d outputs=%d", cfg.InputSize, outputs)
	}
	return &FeedforwardNetwork{dropout: d, linear: l}, nil
}

// InputSize is the expected feature width.
func (f *FeedforwardNetwork) InputSize() int {
	return f.linear.InputSize()
}

// OutputSize is the output width.
func (f *FeedforwardNetwork) OutputSize() int {
	return f.linear.OutputSize()
}

// DropoutProb is the dropout probability.
func (f *FeedforwardNetwork) DropoutProb() float64 {
	return f.dropout.Prob
}

// Forward computes the raw output scores in evaluation mode.
func (f *FeedforwardNetwork) Forward(in *mat.Dense) (*mat.Dense, error) {
	out, _, err := f.forward(in, layer.Eval, nil)
	return out, err
}

// ForwardTrain computes the raw output scores in training mode.
func (f *FeedforwardNetwork) ForwardTrain(in *mat.Dense, rng *rand.Rand) (*mat.Dense, *Trace, error) {
	return f.forward(in, layer.Train, rng)
}

func (f *FeedforwardNetwork) forward(in *mat.Dense, mode layer.Mode, rng *rand.Rand) (*mat.Dense, *Trace, error) {
	if _, cols := in.Dims(); cols != f.InputSize() {
		return nil, nil, &layer.ShapeMismatchError{Layer: "model", What: "input", Want: f.InputSize(), Got: cols}
	}
	dropped, err := f.dropout.Forward(in, mode, rng)
	if err != nil {
		return nil, nil, err
	}
	out, err := f.linear.Forward(dropped, mode, rng)
	if err != nil {
		return nil, nil, err
	}
	return out, &Trace{dropped: dropped}, nil
}

// Backward returns the parameter gradients given the trace of a training
// forward pass and the loss gradient with respect to its output.
func (f *FeedforwardNetwork) Backward(t *Trace, dOut *mat.Dense) linear.Gradients {
	return f.linear.Backward(t.dropped, dOut)
}

// Params pairs every learned parameter with its gradient in g.
func (f *FeedforwardNetwork) Params(g linear.Gradients) []layer.Param {
	return []layer.Param{
		{Name: "linear.weight", Value: f.linear.Weight.RawMatrix().Data, Grad: g.Weight.RawMatrix().Data},
		{Name: "linear.bias", Value: f.linear.Bias, Grad: g.Bias},
	}
}
