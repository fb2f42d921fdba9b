// Package fanout provides a reusable bounded-concurrency worker pool for
// per-item upstream calls (README and topics enrichment).
//
// A fixed number of workers pull indices from a shared cursor and write
// results into a pre-sized slot per index, so output order always matches
// input order regardless of completion order.
package fanout

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultWorkers bounds concurrent outstanding calls when the caller does
// not specify a pool size.
const DefaultWorkers = 8

// Map runs fn over n items with at most workers concurrent calls and
// returns the results indexed by input position.
//
// A failed item resolves to the zero value of T for its slot alone; it
// never aborts the remaining items. Context cancellation stops workers
// from picking up new indices, but slots already produced are kept.
func Map[T any](ctx context.Context, n, workers int, fn func(ctx context.Context, i int) (T, error)) []T {
	results := make([]T, n)
	if n == 0 {
		return results
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > n {
		workers = n
	}

	var cursor atomic.Int64
	var wg sync.WaitGroup

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(cursor.Add(1)) - 1
				if i >= n {
					return
				}
				if ctx.Err() != nil {
					return
				}
				v, err := fn(ctx, i)
				if err != nil {
					// Slot stays at its zero value.
					continue
				}
				results[i] = v
			}
		}()
	}
	wg.Wait()

	return results
}
