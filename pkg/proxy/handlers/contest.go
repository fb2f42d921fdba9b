package handlers

import (
	"net/http"
	"time"

	"folio-hq/relay/pkg/cache"
	"folio-hq/relay/pkg/mapper"
	"folio-hq/relay/pkg/proxy"
)

// contestBody is the JSON shape of the contest endpoint. FetchedAt is
// epoch milliseconds, matching what the dashboard's staleness badge
// expects.
type contestBody struct {
	mapper.ContestResult
	FetchedAt int64 `json:"_fetched_at"`
}

// ContestHandler serves LeetCode contest standing and rating history.
// A user who never attended a rated contest gets zeroed aggregates and
// an empty history, not an error.
type ContestHandler struct {
	svc *Service
}

// NewContestHandler creates the contest endpoint handler.
func NewContestHandler(svc *Service) *ContestHandler {
	svc.normalize()
	return &ContestHandler{svc: svc}
}

func (h *ContestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := proxy.Username(r, h.svc.DefaultLeetCodeUser)
	if err != nil {
		proxy.WriteErrorFor(w, err)
		return
	}
	refresh := proxy.BoolFlag(r, "refresh")
	debug := proxy.BoolFlag(r, "debug")

	directive := h.svc.Policy.Compute(cache.ClassContest)
	key := "contest:" + user

	if !refresh {
		if body, etag, ok := h.svc.Memo.Get(key); ok {
			w.Header().Set(proxy.CacheStateHeader, "hit")
			_ = proxy.WriteCached(w, r, body, etag, directive)
			return
		}
	}

	now := h.svc.Clock.Now()
	start := time.Now()
	data, err := h.svc.LeetCode.ContestRanking(r.Context(), user)
	h.svc.observeUpstream("leetcode", start, err)
	if err != nil {
		if debug {
			h.svc.Logger.Error("contest upstream failed", "user", user, "error", err)
		}
		proxy.WriteErrorFor(w, err)
		return
	}

	body, etag, err := proxy.MarshalBody(contestBody{
		ContestResult: mapper.Contest(data, now),
		FetchedAt:     now.UnixMilli(),
	})
	if err != nil {
		proxy.WriteErrorFor(w, err)
		return
	}

	h.svc.memoize(key, body, etag, directive)
	w.Header().Set(proxy.CacheStateHeader, "miss")
	_ = proxy.WriteCached(w, r, body, etag, directive)
}
