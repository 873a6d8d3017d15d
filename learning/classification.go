package learning

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/harness/batcher"
	"github.com/neurlang/harness/config"
	"github.com/neurlang/harness/layer"
	"github.com/neurlang/harness/net/feedforward"
)

// ClassificationOutput holds the loss, raw scores and labels of a batch.
type ClassificationOutput struct {
	loss    float64
	output  *mat.Dense
	targets []int
}

func (o ClassificationOutput) Loss() float64      { return o.loss }
func (o ClassificationOutput) Output() *mat.Dense { return o.output }
func (o ClassificationOutput) Len() int           { return len(o.targets) }

// Targets returns the labels of the batch.
func (o ClassificationOutput) Targets() []int { return o.targets }

// Correct counts the rows whose argmax equals the label.
func (o ClassificationOutput) Correct() (n int) {
	for i, t := range o.targets {
		if Argmax(o.output.RawRowView(i)) == t {
			n++
		}
	}
	return
}

// Classification trains the network with categorical cross-entropy. The
// output width equals the number of classes.
type Classification struct {
	model *feedforward.FeedforwardNetwork
}

// NewClassification creates a classification task with a fresh network.
func NewClassification(cfg config.Model, rng *rand.Rand) (*Classification, error) {
	if cfg.NumClasses < 1 {
		return nil, errors.Errorf("classification: num_classes %d must be positive", cfg.NumClasses)
	}
	net, err := feedforward.New(cfg, cfg.NumClasses, rng)
	if err != nil {
		return nil, err
	}
	return &Classification{model: net}, nil
}

func (c *Classification) Model() *feedforward.FeedforwardNetwork { return c.model }

// ForwardClassification computes the output and the mean cross-entropy loss
// of inputs against targets. In training mode it also returns the loss
// gradient with respect to the output and the trace for backpropagation.
func (c *Classification) ForwardClassification(inputs *mat.Dense, targets []int, mode layer.Mode, rng *rand.Rand) (ClassificationOutput, *feedforward.Trace, *mat.Dense, error) {
	rows, _ := inputs.Dims()
	if rows != len(targets) {
		return ClassificationOutput{}, nil, nil, &layer.ShapeMismatchError{Layer: "classification", What: "targets", Want: rows, Got: len(targets)}
	}
	var output *mat.Dense
	var trace *feedforward.Trace
	var err error
	if mode == layer.Train {
		output, trace, err = c.model.ForwardTrain(inputs, rng)
	} else {
		output, err = c.model.Forward(inputs)
	}
	if err != nil {
		return ClassificationOutput{}, nil, nil, err
	}
	loss, grad, err := CrossEntropy(output, targets, mode == layer.Train)
	if err != nil {
		return ClassificationOutput{}, nil, nil, err
	}
	return ClassificationOutput{loss: loss, output: output, targets: targets}, trace, grad, nil
}

func (c *Classification) TrainStep(batch batcher.ClassificationBatch, rng *rand.Rand) (TrainOutput, error) {
	item, trace, grad, err := c.ForwardClassification(batch.Inputs, batch.Targets, layer.Train, rng)
	if err != nil {
		return TrainOutput{}, err
	}
	return TrainOutput{Grads: c.model.Backward(trace, grad), Item: item}, nil
}

func (c *Classification) ValidStep(batch batcher.ClassificationBatch) (Output, error) {
	item, _, _, err := c.ForwardClassification(batch.Inputs, batch.Targets, layer.Eval, nil)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// CrossEntropy returns the mean over rows of -log softmax(output)[target]
// and, when withGrad is set, its gradient with respect to output.
func CrossEntropy(output *mat.Dense, targets []int, withGrad bool) (float64, *mat.Dense, error) {
	rows, cols := output.Dims()
	var grad *mat.Dense
	if withGrad {
		grad = mat.NewDense(rows, cols, nil)
	}
	var loss float64
	for i, t := range targets {
		if t < 0 || t >= cols {
			return 0, nil, errors.Errorf("cross entropy: label %d outside %d classes", t, cols)
		}
		row := output.RawRowView(i)
		lse := floats.LogSumExp(row)
		loss += lse - row[t]
		if withGrad {
			g := grad.RawRowView(i)
			for j, v := range row {
				g[j] = math.Exp(v-lse) / float64(rows)
			}
			g[t] -= 1 / float64(rows)
		}
	}
	return loss / float64(rows), grad, nil
}
