package cache

import (
	"strconv"
	"sync"
	"time"
)

// AssetVersion is a process-wide, monotonically advancing version token
// stamped into cache-derived payloads. Downstream consumers key derived
// assets (preview images, social cards) by it, so a forced refresh is
// detectable even across assets.
//
// The token advances only on an explicit refresh request, never on a
// background TTL expiry, so normal revalidation does not bust client-side
// asset caches.
type AssetVersion struct {
	mu      sync.Mutex
	current string
	clock   Clock
}

// NewAssetVersion seeds the token from the clock at process start.
func NewAssetVersion(clock Clock) *AssetVersion {
	if clock == nil {
		clock = SystemClock{}
	}
	return &AssetVersion{
		current: formatVersion(clock.Now()),
		clock:   clock,
	}
}

// Current returns the current token.
func (v *AssetVersion) Current() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Advance rotates the token and returns the new value. If the clock has not
// ticked since the last advance, the token is bumped by one millisecond so
// it never repeats.
func (v *AssetVersion) Advance() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	next := formatVersion(v.clock.Now())
	if next <= v.current {
		prev, err := strconv.ParseInt(v.current, 10, 64)
		if err == nil {
			next = strconv.FormatInt(prev+1, 10)
		}
	}
	v.current = next
	return next
}

func formatVersion(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
