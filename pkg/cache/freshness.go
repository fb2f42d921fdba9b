package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// EndpointClass selects the freshness profile for a logical endpoint.
type EndpointClass string

const (
	// ClassPassthrough covers the rate-limit passthrough: no CDN caching,
	// conditional revalidation is forwarded to the upstream verbatim.
	ClassPassthrough EndpointClass = "passthrough"

	// ClassCalendar covers the contribution calendar: nice to have fresh,
	// fine to show old.
	ClassCalendar EndpointClass = "calendar"

	// ClassCatalog covers the repository catalog: changes rarely, cached
	// for hours at the edge.
	ClassCatalog EndpointClass = "catalog"

	// ClassReadme covers README content: changes only on repository edits.
	ClassReadme EndpointClass = "readme"

	// ClassContest covers LeetCode contest stats, same profile as the
	// calendar.
	ClassContest EndpointClass = "contest"
)

// Directive is the three-part CDN cache policy attached to a response,
// plus the memo TTL used by the warm process.
type Directive struct {
	// MaxAge is the CDN s-maxage window.
	MaxAge time.Duration

	// StaleWhileRevalidate permits serving a slightly stale response
	// while the CDN refetches in the background.
	StaleWhileRevalidate time.Duration

	// StaleIfError permits serving a stale response when the origin
	// fails. It governs CDN behavior only; it never masks a client
	// validation error.
	StaleIfError time.Duration

	// MemoTTL bounds the warm-process memo slot for this class.
	MemoTTL time.Duration
}

// Cacheable reports whether the directive asks the CDN to cache at all.
func (d Directive) Cacheable() bool { return d.MaxAge > 0 }

// CacheControl renders the directive as a Cache-Control header value.
func (d Directive) CacheControl() string {
	if !d.Cacheable() {
		return "no-store"
	}
	return fmt.Sprintf("s-maxage=%d, stale-while-revalidate=%d, stale-if-error=%d",
		int(d.MaxAge.Seconds()),
		int(d.StaleWhileRevalidate.Seconds()),
		int(d.StaleIfError.Seconds()))
}

// FreshnessPolicy computes cache directives per endpoint class.
type FreshnessPolicy struct {
	directives map[EndpointClass]Directive
}

// NewFreshnessPolicy returns the standard per-class directives. The exact
// seconds follow the profiles the front-end was built against; the ordering
// max-age < stale-while-revalidate < stale-if-error holds for every class.
func NewFreshnessPolicy(memoTTL time.Duration) *FreshnessPolicy {
	if memoTTL <= 0 {
		memoTTL = 10 * time.Minute
	}
	return &FreshnessPolicy{
		directives: map[EndpointClass]Directive{
			ClassPassthrough: {},
			ClassCalendar: {
				MaxAge:               10 * time.Minute,
				StaleWhileRevalidate: time.Hour,
				StaleIfError:         24 * time.Hour,
				MemoTTL:              memoTTL,
			},
			ClassContest: {
				MaxAge:               10 * time.Minute,
				StaleWhileRevalidate: time.Hour,
				StaleIfError:         24 * time.Hour,
				MemoTTL:              memoTTL,
			},
			ClassCatalog: {
				MaxAge:               6 * time.Hour,
				StaleWhileRevalidate: 24 * time.Hour,
				StaleIfError:         48 * time.Hour,
				MemoTTL:              memoTTL,
			},
			ClassReadme: {
				MaxAge:               10 * time.Minute,
				StaleWhileRevalidate: 24 * time.Hour,
				StaleIfError:         48 * time.Hour,
				MemoTTL:              memoTTL,
			},
		},
	}
}

// Compute returns the directive for class. Unknown classes get the
// passthrough (uncached) directive.
func (p *FreshnessPolicy) Compute(class EndpointClass) Directive {
	return p.directives[class]
}

// Classes returns every class the policy knows about.
func (p *FreshnessPolicy) Classes() []EndpointClass {
	out := make([]EndpointClass, 0, len(p.directives))
	for c := range p.directives {
		out = append(out, c)
	}
	return out
}

// ETag computes a strong validator from the serialized response body.
// A request presenting a matching If-None-Match receives a 304 with no
// body rather than a 200 with a duplicate payload.
func ETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
