package inference

import (
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/neurlang/harness/artifact"
	"github.com/neurlang/harness/batcher"
	"github.com/neurlang/harness/config"
	"github.com/neurlang/harness/datasets"
	"github.com/neurlang/harness/device"
	"github.com/neurlang/harness/net/feedforward"
	"github.com/neurlang/harness/parallel"
)

// Regressor predicts scalar values.
type Regressor struct {
	Config  config.Training
	net     *feedforward.FeedforwardNetwork
	batcher batcher.Regression
}

// LoadRegressor loads the regressor trained into dir.
func LoadRegressor(dir artifact.Dir, dev device.Device) (*Regressor, error) {
	cfg, net, err := load(dir, func(config.Model) int { return 1 })
	if err != nil {
		return nil, err
	}
	return &Regressor{Config: cfg, net: net, batcher: batcher.NewRegression(dev)}, nil
}

// Regress loads dir and predicts the value of item.
func Regress(dir artifact.Dir, dev device.Device, item datasets.RegressionItem) (float64, error) {
	r, err := LoadRegressor(dir, dev)
	if err != nil {
		return 0, err
	}
	return r.Predict(item)
}

// Predict returns the single output of item unchanged. Its value is ignored.
func (r *Regressor) Predict(item datasets.RegressionItem) (float64, error) {
	b, err := r.batcher.Batch([]datasets.RegressionItem{item})
	if err != nil {
		return 0, err
	}
	out, err := r.net.Forward(b.Inputs)
	if err != nil {
		return 0, err
	}
	return out.At(0, 0), nil
}

// RegressionReport summarises predictions over a dataset.
type RegressionReport struct {
	Items int
	// MSE is the mean squared error.
	MSE float64
	// MaxError is the largest absolute error.
	MaxError float64
}

// Evaluate predicts every item of ds with up to workers goroutines.
// Missing items are skipped.
func (r *Regressor) Evaluate(ds datasets.Dataset[datasets.RegressionItem], workers int) (RegressionReport, error) {
	type outcome struct {
		seen bool
		diff float64
	}
	outcomes, err := parallel.Map(ds.Len(), workers, func(i int) (outcome, error) {
		item, ok := ds.Get(i)
		if !ok {
			return outcome{}, nil
		}
		v, err := r.Predict(item)
		if err != nil {
			return outcome{}, errors.Wrapf(err, "item %d", i)
		}
		return outcome{seen: true, diff: v - item.Value}, nil
	})
	if err != nil {
		return RegressionReport{}, err
	}
	var squared, absolute stats.Float64Data
	for _, o := range outcomes {
		if o.seen {
			squared = append(squared, o.diff*o.diff)
			if o.diff < 0 {
				absolute = append(absolute, -o.diff)
			} else {
				absolute = append(absolute, o.diff)
			}
		}
	}
	rep := RegressionReport{Items: squared.Len()}
	if rep.Items > 0 {
		rep.MSE, _ = squared.Mean()
		rep.MaxError, _ = absolute.Max()
	}
	return rep, nil
}
