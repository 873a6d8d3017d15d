// Package dataloader turns a dataset into a stream of assembled batches.
package dataloader

import (
	"io"

	"github.com/pkg/errors"

	"github.com/neurlang/harness/batcher"
	"github.com/neurlang/harness/datasets"
	"github.com/neurlang/harness/parallel"
	"github.com/neurlang/harness/seed"
)

var errEmpty = errors.New("dataloader: no items in batch")

// Options configures a Loader.
type Options struct {
	BatchSize int
	Workers   int
	// Shuffle draws a fresh permutation per epoch from Seed's Purpose stream.
	Shuffle bool
	Seed    seed.Seed
	Purpose string
}

// Loader produces the batches of one dataset split.
type Loader[I, B any] struct {
	dataset datasets.Dataset[I]
	batcher batcher.Batcher[I, B]
	opts    Options
}

// New returns a loader over ds. BatchSize must be positive. Fewer than one
// worker means one.
func New[I, B any](ds datasets.Dataset[I], b batcher.Batcher[I, B], opts Options) (*Loader[I, B], error) {
	if opts.BatchSize <= 0 {
		return nil, errors.Errorf("dataloader: batch size must be positive, got %d", opts.BatchSize)
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Loader[I, B]{dataset: ds, batcher: b, opts: opts}, nil
}

// NumItems is the length of the underlying dataset.
func (l *Loader[I, B]) NumItems() int {
	return l.dataset.Len()
}

// NumBatches is the number of index chunks per epoch. The last one may be partial.
func (l *Loader[I, B]) NumBatches() int {
	n := l.dataset.Len()
	return (n + l.opts.BatchSize - 1) / l.opts.BatchSize
}

// Order returns the item visiting order of epoch.
func (l *Loader[I, B]) Order(epoch int) []int {
	n := l.dataset.Len()
	if l.opts.Shuffle {
		return l.opts.Seed.Stream(l.opts.Purpose, epoch).Perm(n)
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// Iter starts producing the batches of epoch. The caller must Close the iterator.
func (l *Loader[I, B]) Iter(epoch int) *Iterator[B] {
	order := l.Order(epoch)
	size := l.opts.BatchSize
	produce := func(i int) (B, error) {
		end := (i + 1) * size
		if end > len(order) {
			end = len(order)
		}
		items := make([]I, 0, end-i*size)
		for _, idx := range order[i*size : end] {
			if item, ok := l.dataset.Get(idx); ok {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			var zero B
			return zero, errEmpty
		}
		return l.batcher.Batch(items)
	}
	return &Iterator[B]{
		stream: parallel.Prefetch(l.NumBatches(), l.opts.Workers, 2*l.opts.Workers, produce),
	}
}

// Iterator yields batches in order.
type Iterator[B any] struct {
	stream *parallel.Stream[B]
}

// Next returns the next batch, or io.EOF when the epoch is exhausted.
// Chunks whose items are all missing are skipped.
func (it *Iterator[B]) Next() (B, error) {
	for {
		b, err := it.stream.Next()
		if errors.Is(err, errEmpty) {
			continue
		}
		if err != nil && err != io.EOF {
			return b, errors.Wrap(err, "dataloader")
		}
		return b, err
	}
}

// Close releases the producers.
func (it *Iterator[B]) Close() {
	it.stream.Close()
}
