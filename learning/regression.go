package learning

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/harness/batcher"
	"github.com/neurlang/harness/config"
	"github.com/neurlang/harness/layer"
	"github.com/neurlang/harness/net/feedforward"
)

// RegressionOutput holds the loss, raw output and targets of a batch.
type RegressionOutput struct {
	loss    float64
	output  *mat.Dense
	targets *mat.Dense
}

func (o RegressionOutput) Loss() float64      { return o.loss }
func (o RegressionOutput) Output() *mat.Dense { return o.output }

func (o RegressionOutput) Len() int {
	r, _ := o.targets.Dims()
	return r
}

// Targets returns the single-column target block of the batch.
func (o RegressionOutput) Targets() *mat.Dense { return o.targets }

// Regression trains a single-output network with sum-reduced squared error.
type Regression struct {
	model *feedforward.FeedforwardNetwork
}

// NewRegression creates a regression task with a fresh network.
func NewRegression(cfg config.Model, rng *rand.Rand) (*Regression, error) {
	net, err := feedforward.New(cfg, 1, rng)
	if err != nil {
		return nil, err
	}
	return &Regression{model: net}, nil
}

func (r *Regression) Model() *feedforward.FeedforwardNetwork { return r.model }

// ForwardRegression computes the output and the summed squared error of
// inputs against targets. In training mode it also returns the loss gradient
// with respect to the output and the trace for backpropagation.
func (r *Regression) ForwardRegression(inputs, targets *mat.Dense, mode layer.Mode, rng *rand.Rand) (RegressionOutput, *feedforward.Trace, *mat.Dense, error) {
	rows, _ := inputs.Dims()
	if tr, tc := targets.Dims(); tr != rows || tc != 1 {
		return RegressionOutput{}, nil, nil, &layer.ShapeMismatchError{Layer: "regression", What: "targets", Want: rows, Got: tr * tc}
	}
	var output *mat.Dense
	var trace *feedforward.Trace
	var err error
	if mode == layer.Train {
		output, trace, err = r.model.ForwardTrain(inputs, rng)
	} else {
		output, err = r.model.Forward(inputs)
	}
	if err != nil {
		return RegressionOutput{}, nil, nil, err
	}
	loss, grad := SquaredError(output, targets, mode == layer.Train)
	return RegressionOutput{loss: loss, output: output, targets: targets}, trace, grad, nil
}

func (r *Regression) TrainStep(batch batcher.RegressionBatch, rng *rand.Rand) (TrainOutput, error) {
	item, trace, grad, err := r.ForwardRegression(batch.Inputs, batch.Targets, layer.Train, rng)
	if err != nil {
		return TrainOutput{}, err
	}
	return TrainOutput{Grads: r.model.Backward(trace, grad), Item: item}, nil
}

func (r *Regression) ValidStep(batch batcher.RegressionBatch) (Output, error) {
	item, _, _, err := r.ForwardRegression(batch.Inputs, batch.Targets, layer.Eval, nil)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// SquaredError returns the sum of squared differences between output and
// targets and, when withGrad is set, its gradient with respect to output.
func SquaredError(output, targets *mat.Dense, withGrad bool) (float64, *mat.Dense) {
	rows, cols := output.Dims()
	diff := mat.NewDense(rows, cols, nil)
	diff.Sub(output, targets)
	var loss float64
	for _, v := range diff.RawMatrix().Data {
		loss += v * v
	}
	if !withGrad {
		return loss, nil
	}
	diff.Scale(2, diff)
	return loss, diff
}
