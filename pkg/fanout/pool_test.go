package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMap(t *testing.T) {
	t.Run("output order matches input order", func(t *testing.T) {
		results := Map(context.Background(), 50, 8, func(_ context.Context, i int) (string, error) {
			// Later indices finish first.
			time.Sleep(time.Duration(50-i) * time.Millisecond / 50)
			return fmt.Sprintf("item-%d", i), nil
		})

		if len(results) != 50 {
			t.Fatalf("len(results) = %d, want 50", len(results))
		}
		for i, r := range results {
			if r != fmt.Sprintf("item-%d", i) {
				t.Fatalf("results[%d] = %q, out of order", i, r)
			}
		}
	})

	t.Run("single failure resolves to zero value without aborting the rest", func(t *testing.T) {
		results := Map(context.Background(), 10, 4, func(_ context.Context, i int) ([]string, error) {
			if i == 3 {
				return nil, errors.New("topics lookup failed")
			}
			return []string{"go"}, nil
		})

		for i, r := range results {
			if i == 3 {
				if r != nil {
					t.Errorf("failed slot %d = %v, want zero value", i, r)
				}
				continue
			}
			if len(r) != 1 {
				t.Errorf("slot %d lost its result", i)
			}
		}
	})

	t.Run("concurrency never exceeds the worker bound", func(t *testing.T) {
		var inFlight, peak atomic.Int64
		var mu sync.Mutex

		Map(context.Background(), 64, 8, func(_ context.Context, i int) (int, error) {
			cur := inFlight.Add(1)
			mu.Lock()
			if cur > peak.Load() {
				peak.Store(cur)
			}
			mu.Unlock()
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			return i, nil
		})

		if peak.Load() > 8 {
			t.Errorf("peak concurrency = %d, want <= 8", peak.Load())
		}
	})

	t.Run("cancelled context stops new work", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		var calls atomic.Int64

		cancel()
		Map(ctx, 100, 8, func(_ context.Context, i int) (int, error) {
			calls.Add(1)
			return i, nil
		})

		if calls.Load() != 0 {
			t.Errorf("calls after cancellation = %d, want 0", calls.Load())
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		results := Map(context.Background(), 0, 8, func(_ context.Context, i int) (int, error) {
			t.Fatal("fn called for empty input")
			return 0, nil
		})
		if len(results) != 0 {
			t.Errorf("len(results) = %d, want 0", len(results))
		}
	})
}
