package handlers

import (
	"fmt"
	"net/http"
	"time"

	"folio-hq/relay/pkg/cache"
	"folio-hq/relay/pkg/mapper"
	"folio-hq/relay/pkg/proxy"
	"folio-hq/relay/pkg/upstream"
)

// calendarBody is the JSON shape of the calendar endpoint. FetchedAt is
// epoch milliseconds, matching what the dashboard's staleness badge
// expects.
type calendarBody struct {
	Total     int                         `json:"total"`
	Weeks     []upstream.ContributionWeek `json:"weeks"`
	Warning   string                      `json:"warning,omitempty"`
	RateLimit *upstream.RateLimit         `json:"rateLimit,omitempty"`
	FetchedAt int64                       `json:"_fetched_at"`
}

// CalendarHandler serves the contribution calendar: a GraphQL query over
// a day window, shaped into the grid the dashboard renders. A null user
// node degrades to an empty grid with a warning instead of an error.
type CalendarHandler struct {
	svc *Service
}

// NewCalendarHandler creates the calendar endpoint handler.
func NewCalendarHandler(svc *Service) *CalendarHandler {
	svc.normalize()
	return &CalendarHandler{svc: svc}
}

func (h *CalendarHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	login, err := proxy.Login(r, h.svc.DefaultGitHubUser)
	if err != nil {
		proxy.WriteErrorFor(w, err)
		return
	}
	days, err := proxy.CalendarDays(r)
	if err != nil {
		proxy.WriteErrorFor(w, err)
		return
	}
	refresh := proxy.BoolFlag(r, "refresh")
	debug := proxy.BoolFlag(r, "debug")

	directive := h.svc.Policy.Compute(cache.ClassCalendar)
	key := fmt.Sprintf("calendar:%s:%d", login, days)

	if !refresh {
		if body, etag, ok := h.svc.Memo.Get(key); ok {
			w.Header().Set(proxy.CacheStateHeader, "hit")
			_ = proxy.WriteCached(w, r, body, etag, directive)
			return
		}
	}

	now := h.svc.Clock.Now()
	from, to := upstream.CalendarWindow(now, days)

	start := time.Now()
	data, err := h.svc.GitHub.ContributionCalendar(r.Context(), login, from, to)
	h.svc.observeUpstream("github", start, err)
	if err != nil {
		if debug {
			h.svc.Logger.Error("calendar upstream failed", "login", login, "days", days, "error", err)
		}
		proxy.WriteErrorFor(w, err)
		return
	}

	result := mapper.Calendar(data, h.svc.GitHub.FineGrainedToken(r.Context()))
	out := calendarBody{
		Total:     result.Total,
		Weeks:     result.Weeks,
		Warning:   result.Warning,
		FetchedAt: now.UnixMilli(),
	}
	if data != nil {
		out.RateLimit = data.RateLimit
	}

	body, etag, err := proxy.MarshalBody(out)
	if err != nil {
		proxy.WriteErrorFor(w, err)
		return
	}

	h.svc.memoize(key, body, etag, directive)
	w.Header().Set(proxy.CacheStateHeader, "miss")
	_ = proxy.WriteCached(w, r, body, etag, directive)
}
