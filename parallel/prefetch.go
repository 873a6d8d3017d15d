package parallel

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// ErrClosed is returned by Next after Close.
var ErrClosed = errors.New("parallel: stream closed")

type result[T any] struct {
	v   T
	err error
}

// Stream delivers the values of a Prefetch in index order. Next and Close
// must be called from a single goroutine.
type Stream[T any] struct {
	slots  []chan result[T]
	ahead  chan struct{}
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	next   int
	closed bool
}

// Prefetch starts producing values 0..length-1 with up to workers concurrent
// calls to produce. At most buffer values are produced ahead of the consumer;
// once that many are waiting, producers pause until Next takes one. A buffer
// smaller than workers is raised to workers.
func Prefetch[T any](length, workers, buffer int, produce func(i int) (T, error)) *Stream[T] {
	if workers <= 0 {
		workers = 1
	}
	if buffer < workers {
		buffer = workers
	}
	if length < 0 {
		length = 0
	}
	s := &Stream[T]{
		slots: make([]chan result[T], length),
		ahead: make(chan struct{}, buffer),
		done:  make(chan struct{}),
	}
	for i := range s.slots {
		s.slots[i] = make(chan result[T], 1)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sem := make(chan struct{}, workers)
		var inflight sync.WaitGroup
		defer inflight.Wait()
		for i := 0; i < length; i++ {
			select {
			case s.ahead <- struct{}{}:
			case <-s.done:
				return
			}
			select {
			case sem <- struct{}{}:
			case <-s.done:
				return
			}
			inflight.Add(1)
			go func(i int) {
				defer inflight.Done()
				defer func() { <-sem }()
				v, err := produce(i)
				s.slots[i] <- result[T]{v: v, err: err}
			}(i)
		}
	}()
	return s
}

// Len is the total number of values.
func (s *Stream[T]) Len() int {
	return len(s.slots)
}

// Next returns the next value in index order, blocking until it is produced.
// It returns io.EOF after the last value.
func (s *Stream[T]) Next() (T, error) {
	var zero T
	if s.closed {
		return zero, ErrClosed
	}
	if s.next >= len(s.slots) {
		return zero, io.EOF
	}
	r := <-s.slots[s.next]
	s.next++
	<-s.ahead
	return r.v, r.err
}

// Close stops dispatching and waits for in-flight producers to return.
func (s *Stream[T]) Close() {
	s.closed = true
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}
