package squareroot

import "math"

import "github.com/neurlang/harness/datasets"

// InputSize is the feature vector width.
const InputSize = 3

const Small = 1 << 8
const Medium = 1 << 10
const Big = 1 << 12

type Sample uint32

// Features returns t, t^2 and t^3 with t the sample scaled into [0, 1] by max.
func (s Sample) Features(max uint32) []float64 {
	t := float64(s) / float64(max)
	return []float64{t, t * t, t * t * t}
}

// Output returns the square root of the sample scaled into [0, 1] by max.
func (s Sample) Output(max uint32) float64 {
	return math.Sqrt(float64(s)) / math.Sqrt(float64(max))
}

// Item returns the sample as a regression item.
func (s Sample) Item(max uint32) datasets.RegressionItem {
	return datasets.RegressionItem{Inputs: s.Features(max), Value: s.Output(max)}
}

// Items returns every sample from 0 to size-1.
func Items(size uint32) (ret []datasets.RegressionItem) {
	for i := uint32(0); i < size; i++ {
		ret = append(ret, Sample(i).Item(size))
	}
	return
}

// New returns a dataset of size samples split into train, valid and test.
func New(size uint32) datasets.Splits[datasets.RegressionItem] {
	return datasets.Split(Items(size), 10)
}
