// Package dropout implements an inverted dropout layer
package dropout

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/harness/layer"
)

// Dropout zeroes each input with probability Prob during training and scales
// the survivors by 1/(1-Prob). It is the identity in evaluation mode.
type Dropout struct {
	Prob float64
}

// New creates a dropout layer with probability prob in [0, 1).
func New(prob float64) (*Dropout, error) {
	if prob < 0 || prob >= 1 {
		return nil, errors.Errorf("dropout: probability %v outside [0, 1)", prob)
	}
	return &Dropout{Prob: prob}, nil
}

// MustNew creates a dropout layer, panicking on an invalid probability.
func MustNew(prob float64) *Dropout {
	o, err := New(prob)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// Forward applies dropout. The input is never modified.
func (d *Dropout) Forward(in *mat.Dense, mode layer.Mode, rng *rand.Rand) (*mat.Dense, error) {
	if mode == layer.Eval || d.Prob == 0 {
		return in, nil
	}
	if rng == nil {
		return nil, errors.New("dropout: training mode needs a random source")
	}
	r, c := in.Dims()
	out := mat.NewDense(r, c, nil)
	scale := 1 / (1 - d.Prob)
	for i := 0; i < r; i++ {
		src := in.RawRowView(i)
		dst := out.RawRowView(i)
		for j := 0; j < c; j++ {
			if rng.Float64() >= d.Prob {
				dst[j] = src[j] * scale
			}
		}
	}
	return out, nil
}

var _ layer.Layer = (*Dropout)(nil)
