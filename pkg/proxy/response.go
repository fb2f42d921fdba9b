package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"folio-hq/relay/pkg/cache"
)

const (
	// CacheStateHeader reports whether a response was served from the
	// warm memo ("hit"), fetched fresh ("miss"), or recovered from a
	// persisted snapshot ("snapshot").
	CacheStateHeader = "X-Relay-Cache"

	// AssetVersionHeader carries the current asset version token.
	AssetVersionHeader = "X-Asset-Version"
)

// ErrorBody is the JSON error envelope returned to clients.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSON writes an uncached JSON response.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return nil
}

// WriteError writes a JSON error envelope with no cache headers. Errors
// must never be cached by the CDN, so Cache-Control is forced to no-store.
func WriteError(w http.ResponseWriter, statusCode int, message, details string) {
	w.Header().Set("Cache-Control", "no-store")
	_ = WriteJSON(w, statusCode, ErrorBody{Error: message, Details: details})
}

// WriteCached writes a pre-serialized JSON body with freshness headers.
// If the client's If-None-Match validator matches the body's entity tag,
// a 304 with no body is written instead; the freshness headers are still
// emitted so the CDN can extend its hold on the stored copy.
func WriteCached(w http.ResponseWriter, r *http.Request, body []byte, etag string, d cache.Directive) error {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", d.CacheControl())
	if etag != "" {
		h.Set("ETag", etag)
	}

	if etag != "" && IfNoneMatch(r) == etag {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write response body: %w", err)
	}
	return nil
}

// MarshalBody serializes a response payload once, so the same bytes can be
// memoized, tagged, and written. Using a single serialization keeps memo
// hits byte-identical with the response that produced the entity tag.
func MarshalBody(data interface{}) ([]byte, string, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal response body: %w", err)
	}
	return body, cache.ETag(body), nil
}
