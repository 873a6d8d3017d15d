// Package batcher assembles dataset items into batches.
//
// A batcher only holds the device handle, so one value may be shared by any
// number of data-loading workers.
package batcher

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/harness/datasets"
	"github.com/neurlang/harness/device"
)

// Batcher turns a non-empty sequence of items into one batch.
type Batcher[I, B any] interface {
	Batch(items []I) (B, error)
}

// ClassificationBatch holds one input row and one class label per item.
type ClassificationBatch struct {
	Inputs  *mat.Dense
	Targets []int
}

// RegressionBatch holds one input row and a single-column target per item.
type RegressionBatch struct {
	Inputs  *mat.Dense
	Targets *mat.Dense
}

// Classification assembles classification batches.
type Classification struct {
	Device device.Device
}

// NewClassification returns a classification batcher placing blocks on dev.
func NewClassification(dev device.Device) Classification {
	return Classification{Device: dev}
}

// Batch stacks the feature vectors and labels preserving item order.
func (b Classification) Batch(items []datasets.ClassificationItem) (ClassificationBatch, error) {
	if len(items) == 0 {
		return ClassificationBatch{}, errors.New("batch: no items")
	}
	width := len(items[0].Inputs)
	if width == 0 {
		return ClassificationBatch{}, errors.New("batch: items have no features")
	}
	data := make([]float64, 0, len(items)*width)
	targets := make([]int, len(items))
	for i, item := range items {
		if len(item.Inputs) != width {
			return ClassificationBatch{}, errors.Errorf("batch: item %d has %d features, item 0 has %d", i, len(item.Inputs), width)
		}
		data = append(data, item.Inputs...)
		targets[i] = item.Label
	}
	return ClassificationBatch{
		Inputs:  b.Device.NewDense(len(items), width, data),
		Targets: targets,
	}, nil
}

// Regression assembles regression batches.
type Regression struct {
	Device device.Device
}

// NewRegression returns a regression batcher placing blocks on dev.
func NewRegression(dev device.Device) Regression {
	return Regression{Device: dev}
}

// Batch stacks the feature vectors and target values preserving item order.
func (b Regression) Batch(items []datasets.RegressionItem) (RegressionBatch, error) {
	if len(items) == 0 {
		return RegressionBatch{}, errors.New("batch: no items")
	}
	width := len(items[0].Inputs)
	if width == 0 {
		return RegressionBatch{}, errors.New("batch: items have no features")
	}
	data := make([]float64, 0, len(items)*width)
	targets := make([]float64, len(items))
	for i, item := range items {
		if len(item.Inputs) != width {
			return RegressionBatch{}, errors.Errorf("batch: item %d has %d features, item 0 has %d", i, len(item.Inputs), width)
		}
		data = append(data, item.Inputs...)
		targets[i] = item.Value
	}
	return RegressionBatch{
		Inputs:  b.Device.NewDense(len(items), width, data),
		Targets: b.Device.NewDense(len(items), 1, targets),
	}, nil
}
