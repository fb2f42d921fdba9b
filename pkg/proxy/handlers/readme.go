package handlers

import (
	"net/http"
	"strings"
	"time"

	"folio-hq/relay/pkg/cache"
	"folio-hq/relay/pkg/mapper"
	"folio-hq/relay/pkg/proxy"
	"folio-hq/relay/pkg/upstream"
)

// readmeBody is the JSON shape of the readme endpoint. A repository
// without a README is a 200 with an empty markdown string.
type readmeBody struct {
	Markdown string `json:"markdown"`
}

// ReadmeHandler serves a single repository's README, decoded to plain
// markdown. The API metadata route is tried first; a 404 falls back to
// probing the raw content mirror.
type ReadmeHandler struct {
	svc *Service
}

// NewReadmeHandler creates the readme endpoint handler.
func NewReadmeHandler(svc *Service) *ReadmeHandler {
	svc.normalize()
	return &ReadmeHandler{svc: svc}
}

// repoParams extracts and validates the owner and repo parameters.
func repoParams(r *http.Request) (owner, repo string, err error) {
	owner = strings.TrimSpace(r.URL.Query().Get("owner"))
	repo = strings.TrimSpace(r.URL.Query().Get("repo"))
	if owner == "" {
		return "", "", &proxy.RequestError{Message: "missing required parameter", Param: "owner"}
	}
	if repo == "" {
		return "", "", &proxy.RequestError{Message: "missing required parameter", Param: "repo"}
	}
	for _, v := range []string{owner, repo} {
		if strings.Contains(v, "..") || strings.ContainsAny(v, " /\\?#") {
			return "", "", &proxy.RequestError{Message: "invalid repository name", Param: "repo"}
		}
	}
	return owner, repo, nil
}

func (h *ReadmeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	owner, repo, err := repoParams(r)
	if err != nil {
		proxy.WriteErrorFor(w, err)
		return
	}
	refresh := proxy.BoolFlag(r, "refresh")

	directive := h.svc.Policy.Compute(cache.ClassReadme)
	key := "readme:" + owner + "/" + repo

	if !refresh {
		if body, etag, ok := h.svc.Memo.Get(key); ok {
			w.Header().Set(proxy.CacheStateHeader, "hit")
			_ = proxy.WriteCached(w, r, body, etag, directive)
			return
		}
	}

	start := time.Now()
	meta, err := h.svc.GitHub.ReadmeMetadata(r.Context(), owner, repo)
	h.svc.observeUpstream("github", start, err)
	if err != nil {
		proxy.WriteErrorFor(w, err)
		return
	}

	var markdown string
	if meta != nil {
		markdown, err = mapper.DecodeReadme(meta.Content)
		if err != nil {
			proxy.WriteErrorFor(w, &upstream.DataError{
				Upstream: "github",
				Field:    "content",
				Message:  err.Error(),
			})
			return
		}
	} else {
		// 404 from the metadata route: probe the raw mirror. All-miss
		// yields an empty document, not an error.
		markdown = h.svc.GitHub.MirrorReadme(r.Context(), owner, repo)
	}

	body, etag, err := proxy.MarshalBody(readmeBody{Markdown: markdown})
	if err != nil {
		proxy.WriteErrorFor(w, err)
		return
	}

	h.svc.memoize(key, body, etag, directive)
	w.Header().Set(proxy.CacheStateHeader, "miss")
	_ = proxy.WriteCached(w, r, body, etag, directive)
}
