package handlers

import (
	"io"
	"net/http"
	"time"

	"folio-hq/relay/pkg/cache"
	"folio-hq/relay/pkg/proxy"
)

// mirroredHeaders are the upstream response headers forwarded verbatim on
// the passthrough endpoint.
var mirroredHeaders = []string{
	"Content-Type",
	"ETag",
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"X-RateLimit-Reset",
	"X-RateLimit-Used",
	"X-RateLimit-Resource",
}

// PassthroughHandler forwards allow-listed GitHub REST paths with the
// relay's credential attached and mirrors the upstream response verbatim,
// including 304s. Nothing here is cached: the endpoint exists for live
// data such as the rate-limit snapshot.
type PassthroughHandler struct {
	svc *Service
}

// NewPassthroughHandler creates the passthrough endpoint handler.
func NewPassthroughHandler(svc *Service) *PassthroughHandler {
	svc.normalize()
	return &PassthroughHandler{svc: svc}
}

func (h *PassthroughHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path, err := proxy.PassthroughPath(r)
	if err != nil {
		proxy.WriteErrorFor(w, err)
		return
	}

	start := time.Now()
	resp, err := h.svc.GitHub.Passthrough(r.Context(), path, proxy.IfNoneMatch(r))
	h.svc.observeUpstream("github", start, err)
	if err != nil {
		proxy.WriteErrorFor(w, err)
		return
	}
	defer resp.Body.Close()

	hdr := w.Header()
	for _, name := range mirroredHeaders {
		if v := resp.Header.Get(name); v != "" {
			hdr.Set(name, v)
		}
	}
	hdr.Set("Cache-Control", h.svc.Policy.Compute(cache.ClassPassthrough).CacheControl())

	w.WriteHeader(resp.StatusCode)
	if resp.StatusCode != http.StatusNotModified {
		if _, err := io.Copy(w, resp.Body); err != nil {
			h.svc.Logger.Warn("passthrough body copy failed", "path", path, "error", err)
		}
	}
}
