package cache

import (
	"testing"
	"time"
)

// fakeClock is a manually advanced clock for deterministic TTL tests.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestWarmMemo(t *testing.T) {
	t.Run("miss on empty memo", func(t *testing.T) {
		memo := NewWarmMemo(&fakeClock{now: time.Unix(1700000000, 0)})

		if _, _, ok := memo.Get("catalog:x"); ok {
			t.Fatal("expected miss on empty memo")
		}
	})

	t.Run("hit within TTL returns stored body and etag", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1700000000, 0)}
		memo := NewWarmMemo(clock)

		memo.Set("catalog:x", []byte(`{"user":"x"}`), `"abc"`, 10*time.Minute)
		clock.Advance(9 * time.Minute)

		body, etag, ok := memo.Get("catalog:x")
		if !ok {
			t.Fatal("expected hit within TTL")
		}
		if string(body) != `{"user":"x"}` {
			t.Errorf("body = %s, want stored payload", body)
		}
		if etag != `"abc"` {
			t.Errorf("etag = %s, want \"abc\"", etag)
		}
	})

	t.Run("entry is never served at or past its TTL", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1700000000, 0)}
		memo := NewWarmMemo(clock)

		memo.Set("catalog:x", []byte("{}"), `"abc"`, 10*time.Minute)
		clock.Advance(10 * time.Minute)

		if _, _, ok := memo.Get("catalog:x"); ok {
			t.Fatal("entry served at exactly its TTL boundary")
		}
	})

	t.Run("set overwrites the slot and restarts the TTL", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1700000000, 0)}
		memo := NewWarmMemo(clock)

		memo.Set("calendar:a:365", []byte("old"), `"v1"`, 10*time.Minute)
		clock.Advance(9 * time.Minute)
		memo.Set("calendar:a:365", []byte("new"), `"v2"`, 10*time.Minute)
		clock.Advance(9 * time.Minute)

		body, etag, ok := memo.Get("calendar:a:365")
		if !ok {
			t.Fatal("expected hit after overwrite")
		}
		if string(body) != "new" || etag != `"v2"` {
			t.Errorf("got (%s, %s), want overwritten slot", body, etag)
		}
		if memo.Len() != 1 {
			t.Errorf("Len() = %d, want 1 slot per key", memo.Len())
		}
	})

	t.Run("keys are independent slots", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(1700000000, 0)}
		memo := NewWarmMemo(clock)

		memo.Set("a", []byte("1"), "", time.Minute)
		memo.Set("b", []byte("2"), "", time.Hour)
		clock.Advance(2 * time.Minute)

		if _, _, ok := memo.Get("a"); ok {
			t.Error("expired slot a still served")
		}
		if _, _, ok := memo.Get("b"); !ok {
			t.Error("live slot b not served")
		}
	})
}
