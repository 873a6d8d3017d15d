// Package parallel contains a bounded ForEach and an ordered prefetching stream.
package parallel

import "sync"

// ForEach calls body for every i in [0, length) with at most limit calls in
// flight. A limit below one runs sequentially.
func ForEach(length, limit int, body func(i int)) {
	if limit <= 0 {
		limit = 1
	}
	if length <= 0 {
		return
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	wg.Add(length)

	for i := 0; i < length; i++ {
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			body(i)
		}(i)
	}

	wg.Wait()
}

// Map calls f for every i in [0, length) with at most limit calls in flight
// and returns the results in index order. The error of the lowest failing
// index is returned.
func Map[T any](length, limit int, f func(i int) (T, error)) ([]T, error) {
	if length <= 0 {
		return nil, nil
	}
	out := make([]T, length)
	errs := make([]error, length)
	ForEach(length, limit, func(i int) {
		out[i], errs[i] = f(i)
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
