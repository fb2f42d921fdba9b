package cache

import (
	"strconv"
	"testing"
	"time"
)

func TestAssetVersion(t *testing.T) {
	t.Run("seeds from the clock", func(t *testing.T) {
		clock := &fakeClock{now: time.UnixMilli(1700000000000)}
		v := NewAssetVersion(clock)

		if got := v.Current(); got != "1700000000000" {
			t.Errorf("expected 1700000000000, got %q", got)
		}
	})

	t.Run("current does not advance", func(t *testing.T) {
		clock := &fakeClock{now: time.UnixMilli(1700000000000)}
		v := NewAssetVersion(clock)

		clock.Advance(5 * time.Second)
		first := v.Current()
		second := v.Current()
		if first != second {
			t.Errorf("Current must be stable, got %q then %q", first, second)
		}
	})

	t.Run("advance follows the clock", func(t *testing.T) {
		clock := &fakeClock{now: time.UnixMilli(1700000000000)}
		v := NewAssetVersion(clock)

		clock.Advance(time.Minute)
		got := v.Advance()
		if got != "1700000060000" {
			t.Errorf("expected 1700000060000, got %q", got)
		}
		if v.Current() != got {
			t.Error("Current must reflect the advanced token")
		}
	})

	t.Run("advance on a stalled clock still rotates", func(t *testing.T) {
		clock := &fakeClock{now: time.UnixMilli(1700000000000)}
		v := NewAssetVersion(clock)

		first := v.Advance()
		second := v.Advance()
		if second == first {
			t.Fatalf("token repeated on a stalled clock: %q", second)
		}

		a, _ := strconv.ParseInt(first, 10, 64)
		b, _ := strconv.ParseInt(second, 10, 64)
		if b != a+1 {
			t.Errorf("expected a one-millisecond bump from %d, got %d", a, b)
		}
	})

	t.Run("tokens are strictly increasing", func(t *testing.T) {
		clock := &fakeClock{now: time.UnixMilli(1700000000000)}
		v := NewAssetVersion(clock)

		first := v.Current()
		second := v.Advance()
		clock.Advance(time.Second)
		third := v.Advance()

		a, _ := strconv.ParseInt(first, 10, 64)
		b, _ := strconv.ParseInt(second, 10, 64)
		c, _ := strconv.ParseInt(third, 10, 64)
		if !(a < b && b < c) {
			t.Errorf("tokens not strictly increasing: %d, %d, %d", a, b, c)
		}
	})
}
