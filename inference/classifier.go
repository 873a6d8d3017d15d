package inference

import (
	"github.com/pkg/errors"

	"github.com/neurlang/harness/artifact"
	"github.com/neurlang/harness/batcher"
	"github.com/neurlang/harness/config"
	"github.com/neurlang/harness/datasets"
	"github.com/neurlang/harness/device"
	"github.com/neurlang/harness/learning"
	"github.com/neurlang/harness/net/feedforward"
	"github.com/neurlang/harness/parallel"
)

// Classifier predicts class indices.
type Classifier struct {
	Config  config.Training
	net     *feedforward.FeedforwardNetwork
	batcher batcher.Classification
}

// LoadClassifier loads the classifier trained into dir.
func LoadClassifier(dir artifact.Dir, dev device.Device) (*Classifier, error) {
	cfg, net, err := load(dir, func(m config.Model) int { return m.NumClasses })
	if err != nil {
		return nil, err
	}
	return &Classifier{Config: cfg, net: net, batcher: batcher.NewClassification(dev)}, nil
}

// Classify loads dir and predicts the class of item.
func Classify(dir artifact.Dir, dev device.Device, item datasets.ClassificationItem) (int, error) {
	c, err := LoadClassifier(dir, dev)
	if err != nil {
		return 0, err
	}
	return c.Predict(item)
}

// Scores returns the raw output row of item. Its label is ignored.
func (c *Classifier) Scores(item datasets.ClassificationItem) ([]float64, error) {
	b, err := c.batcher.Batch([]datasets.ClassificationItem{item})
	if err != nil {
		return nil, err
	}
	out, err := c.net.Forward(b.Inputs)
	if err != nil {
		return nil, err
	}
	return out.RawRowView(0), nil
}

// Predict returns the index of the highest score, the lowest index on ties.
func (c *Classifier) Predict(item datasets.ClassificationItem) (int, error) {
	scores, err := c.Scores(item)
	if err != nil {
		return 0, err
	}
	return learning.Argmax(scores), nil
}

// ClassificationReport summarises predictions over a dataset.
type ClassificationReport struct {
	Items    int
	Correct  int
	Accuracy float64
}

// Evaluate predicts every item of ds with up to workers goroutines.
// Missing items are skipped.
func (c *Classifier) Evaluate(ds datasets.Dataset[datasets.ClassificationItem], workers int) (ClassificationReport, error) {
	type outcome struct {
		seen, correct bool
	}
	outcomes, err := parallel.Map(ds.Len(), workers, func(i int) (outcome, error) {
		item, ok := ds.Get(i)
		if !ok {
			return outcome{}, nil
		}
		class, err := c.Predict(item)
		if err != nil {
			return outcome{}, errors.Wrapf(err, "item %d", i)
		}
		return outcome{seen: true, correct: class == item.Label}, nil
	})
	if err != nil {
		return ClassificationReport{}, err
	}
	var r ClassificationReport
	for _, o := range outcomes {
		if o.seen {
			r.Items++
		}
		if o.correct {
			r.Correct++
		}
	}
	if r.Items > 0 {
		r.Accuracy = float64(r.Correct) / float64(r.Items)
	}
	return r, nil
}
