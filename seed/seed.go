// Package seed derives the deterministic random streams of a training run.
//
// A run is seeded exactly once from its configuration. Every consumer of
// randomness asks for its own stream by purpose and epoch, so the numbers a
// given epoch sees never depend on how many epochs ran before it in the same
// process. A resumed run therefore replays an uninterrupted one.
package seed

import (
	"math/rand"

	"github.com/neurlang/harness/hash"
)

// Stream purposes used by the trainer.
const (
	Init         = "init"
	TrainShuffle = "shuffle-train"
	ValidShuffle = "shuffle-valid"
	Dropout      = "dropout"
)

// Seed is the root seed of a run.
type Seed uint64

// New returns the root seed for value.
func New(value uint64) Seed {
	return Seed(value)
}

// Derive returns the 63-bit source value of stream (purpose, n).
func (s Seed) Derive(purpose string, n int) int64 {
	m := hash.Mix(hash.String(purpose, uint64(s)), uint64(n))
	return int64(m >> 1)
}

// Stream returns a fresh generator for stream (purpose, n).
func (s Seed) Stream(purpose string, n int) *rand.Rand {
	return rand.New(rand.NewSource(s.Derive(purpose, n)))
}
