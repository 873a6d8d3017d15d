// Package isalnum implements the IsAlnum Dataset
package isalnum

import "github.com/neurlang/harness/datasets"

// InputSize is the feature vector width: the 8 bits of the byte plus its scaled code.
const InputSize = 9

// Classes are the output classes: 0 not alphanumeric, 1 alphanumeric.
const Classes = 2

type Sample byte

// Features returns the feature vector of the sample.
func (c Sample) Features() []float64 {
	var f = make([]float64, InputSize)
	for i := 0; i < 8; i++ {
		f[i] = float64((c >> i) & 1)
	}
	f[8] = float64(c) / 255
	return f
}

// Output returns the class of the sample.
func (c Sample) Output() int {
	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
		return 1
	}
	return 0
}

// Item returns the sample as a classification item.
func (c Sample) Item() datasets.ClassificationItem {
	return datasets.ClassificationItem{Inputs: c.Features(), Label: c.Output()}
}

// Items returns all 7-bit ASCII characters.
func Items() (ret []datasets.ClassificationItem) {
	for i := 0; i < 128; i++ {
		ret = append(ret, Sample(i).Item())
	}
	return
}

// New returns the dataset split into train, valid and test.
func New() datasets.Splits[datasets.ClassificationItem] {
	return datasets.Split(Items(), 8)
}
