// Package cache provides the process-local warm memo, the asset version
// token, and the CDN freshness policy used by the proxy handlers.
//
// The memo is deliberately not an LRU: each logical cache key owns a single
// mutable slot that is overwritten on every cache-miss fulfillment. Entries
// live only as long as the warm process and carry no cross-process coherence
// guarantee; the CDN tier provides durability across cold starts.
package cache

import (
	"sync"
	"time"
)

// Clock abstracts time for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// entry is a single memo slot.
type entry struct {
	createdAt time.Time
	ttl       time.Duration
	body      []byte
	etag      string
}

// WarmMemo is a process-lifetime response memo keyed by request shape.
//
// Concurrent writers for the same key are last-write-wins; a lost update
// between two requests that both missed is acceptable and self-corrects on
// the next read.
type WarmMemo struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   Clock
}

// NewWarmMemo creates an empty memo using the given clock.
// A nil clock defaults to the system clock.
func NewWarmMemo(clock Clock) *WarmMemo {
	if clock == nil {
		clock = SystemClock{}
	}
	return &WarmMemo{
		entries: make(map[string]entry),
		clock:   clock,
	}
}

// Get returns the memoized body and ETag for key, or ok=false when the slot
// is empty or has outlived its TTL. Expired entries are never served; they
// are left in place to be overwritten by the next fulfillment.
func (m *WarmMemo) Get(key string) (body []byte, etag string, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, found := m.entries[key]
	if !found {
		return nil, "", false
	}
	if m.clock.Now().Sub(e.createdAt) >= e.ttl {
		return nil, "", false
	}
	return e.body, e.etag, true
}

// Set stores body under key for ttl, replacing any previous slot content.
func (m *WarmMemo) Set(key string, body []byte, etag string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{
		createdAt: m.clock.Now(),
		ttl:       ttl,
		body:      body,
		etag:      etag,
	}
}

// Len reports the number of slots currently held, expired or not.
func (m *WarmMemo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
