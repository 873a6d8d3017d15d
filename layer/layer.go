// Package layer defines the layer interface and errors shared by layers
package layer

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Mode selects training or evaluation behavior.
type Mode bool

const (
	Eval  Mode = false
	Train Mode = true
)

// Layer transforms a batch, one row per item.
type Layer interface {

	// Forward computes the layer output. rng is only consulted in Train mode.
	Forward(in *mat.Dense, mode Mode, rng *rand.Rand) (*mat.Dense, error)
}

// ShapeMismatchError reports a width that disagrees with what a layer expects.
type ShapeMismatchError struct {
	Layer string
	What  string
	Want  int
	Got   int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: %s shape mismatch: want %d, got %d", e.Layer, e.What, e.Want, e.Got)
}

// Param is a named learned parameter viewed as a flat slice, together with
// its gradient of the same length.
type Param struct {
	Name  string
	Value []float64
	Grad  []float64
}
