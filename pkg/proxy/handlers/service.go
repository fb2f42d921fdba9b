package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"folio-hq/relay/pkg/cache"
	"folio-hq/relay/pkg/snapshot"
	"folio-hq/relay/pkg/telemetry/metrics"
	"folio-hq/relay/pkg/upstream"
)

// Service bundles the shared dependencies behind every proxy endpoint:
// the upstream adapters, the warm memo, the freshness policy, the asset
// version counter, and the optional snapshot store. Handlers hold a
// *Service and add only their endpoint-specific logic.
type Service struct {
	GitHub   *upstream.GitHub
	LeetCode *upstream.LeetCode

	Memo     *cache.WarmMemo
	Versions *cache.AssetVersion
	Policy   *cache.FreshnessPolicy

	// Snapshots is nil when snapshot persistence is disabled; handlers
	// must tolerate that.
	Snapshots *snapshot.Store

	Metrics *metrics.Collector
	Logger  *slog.Logger
	Clock   cache.Clock

	DefaultGitHubUser   string
	DefaultLeetCodeUser string
	MaxRepos            int
	MaxReadmes          int
	FanoutWorkers       int
}

// normalize fills nil collaborators with safe defaults so handlers never
// need nil checks on the hot path.
func (s *Service) normalize() {
	if s.Clock == nil {
		s.Clock = cache.SystemClock{}
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	if s.Metrics == nil {
		s.Metrics = metrics.NewCollector(false)
	}
	if s.Policy == nil {
		s.Policy = cache.NewFreshnessPolicy(0)
	}
	if s.Memo == nil {
		s.Memo = cache.NewWarmMemo(s.Clock)
	}
	if s.Versions == nil {
		s.Versions = cache.NewAssetVersion(s.Clock)
	}
	if s.MaxRepos <= 0 {
		s.MaxRepos = 24
	}
	if s.MaxReadmes <= 0 {
		s.MaxReadmes = 8
	}
	if s.FanoutWorkers <= 0 {
		s.FanoutWorkers = 8
	}
}

// observeUpstream records one upstream exchange in the metrics collector.
func (s *Service) observeUpstream(name string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.Metrics.RecordUpstream(name, outcome, time.Since(start))
}

// memoize stores a serialized body under key for the directive's TTL and
// refreshes the memo-size gauge.
func (s *Service) memoize(key string, body []byte, etag string, d cache.Directive) {
	s.Memo.Set(key, body, etag, d.MemoTTL)
	s.Metrics.SetMemoEntries(s.Memo.Len())
}

// snapshotFallback tries to recover a catalog response from the latest
// persisted snapshot for user. The stored body is re-marshaled with a
// warning injected so clients can tell a recovered payload from a live
// one. Returns ok=false when no snapshot exists or the store is disabled.
func (s *Service) snapshotFallback(ctx context.Context, user string, cause error) (body []byte, etag string, ok bool) {
	if s.Snapshots == nil {
		return nil, "", false
	}
	rec, err := s.Snapshots.Latest(ctx, user)
	if err != nil || rec == nil {
		if err != nil {
			s.Logger.Warn("snapshot lookup failed", "user", user, "error", err)
		}
		return nil, "", false
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body, &payload); err != nil {
		s.Logger.Warn("stored snapshot is not valid JSON", "user", user, "error", err)
		return nil, "", false
	}
	payload["warning"] = "served from a persisted snapshot; upstream fetch failed: " + cause.Error()

	body, err = json.Marshal(payload)
	if err != nil {
		return nil, "", false
	}
	s.Metrics.RecordSnapshotFallback()
	s.Logger.Info("serving catalog from snapshot",
		"user", user,
		"fetched_at", rec.FetchedAt,
		"cause", cause)
	return body, cache.ETag(body), true
}
