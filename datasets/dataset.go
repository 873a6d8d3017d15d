// Package datasets implements the dataset types consumed by the trainer
package datasets

// ClassificationItem is one labelled feature vector.
type ClassificationItem struct {
	Inputs []float64 `json:"inputs"`
	Label  int       `json:"label"`
}

// RegressionItem is one feature vector with a real target value.
type RegressionItem struct {
	Inputs []float64 `json:"inputs"`
	Value  float64   `json:"value"`
}

// Dataset is an indexed collection of items. Get reports false when the item
// at index is not available.
type Dataset[T any] interface {
	Get(index int) (T, bool)
	Len() int
}

// Provider exposes the train, valid and test splits of a dataset.
type Provider[T any] interface {
	Train() Dataset[T]
	Valid() Dataset[T]
	Test() Dataset[T]
}

// Slice is an in-memory dataset.
type Slice[T any] []T

// Get gets the n-th item
func (s Slice[T]) Get(n int) (item T, ok bool) {
	if n < 0 || n >= len(s) {
		return item, false
	}
	return s[n], true
}

// Len returns the number of items
func (s Slice[T]) Len() int {
	return len(s)
}

// Splits is a provider backed by three in-memory datasets.
type Splits[T any] struct {
	TrainSet, ValidSet, TestSet Dataset[T]
}

func (s Splits[T]) Train() Dataset[T] { return s.TrainSet }
func (s Splits[T]) Valid() Dataset[T] { return s.ValidSet }
func (s Splits[T]) Test() Dataset[T]  { return s.TestSet }

// Split splits items deterministically: out of every `every` consecutive
// items the last one goes to test, the one before it to valid and the rest
// to train. every < 3 puts everything into train.
func Split[T any](items []T, every int) Splits[T] {
	var train, valid, test Slice[T]
	for i, v := range items {
		switch {
		case every < 3:
			train = append(train, v)
		case i%every == every-1:
			test = append(test, v)
		case i%every == every-2:
			valid = append(valid, v)
		default:
			train = append(train, v)
		}
	}
	return Splits[T]{TrainSet: train, ValidSet: valid, TestSet: test}
}
