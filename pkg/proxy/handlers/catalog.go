package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"folio-hq/relay/pkg/cache"
	"folio-hq/relay/pkg/fanout"
	"folio-hq/relay/pkg/mapper"
	"folio-hq/relay/pkg/proxy"
	"folio-hq/relay/pkg/snapshot"
	"folio-hq/relay/pkg/upstream"
)

// catalogBody is the JSON shape of the catalog endpoint. Readmes, when
// requested, maps lowercased full names to decoded README content.
type catalogBody struct {
	User         string                    `json:"user"`
	FetchedAt    string                    `json:"fetched_at"`
	AssetVersion string                    `json:"asset_version"`
	Repos        []mapper.RepositoryRecord `json:"repos"`
	Pinned       []string                  `json:"pinned"`
	Readmes      map[string]string         `json:"readmes,omitempty"`
	Warning      string                    `json:"warning,omitempty"`
}

// CatalogHandler serves the repository catalog: pinned repositories and
// the most recently updated page, merged, deduplicated and ordered
// pinned-first. Optional query flags enrich the payload with topics
// (topics=1) and README content (with_readmes=1) via bounded fan-outs.
// refresh=1 bypasses the memo and advances the asset version so clients
// can bust derived caches. When the upstream fetch fails and no warm
// memo exists, the latest persisted snapshot is served instead.
type CatalogHandler struct {
	svc *Service
}

// NewCatalogHandler creates the catalog endpoint handler.
func NewCatalogHandler(svc *Service) *CatalogHandler {
	svc.normalize()
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := proxy.Username(r, h.svc.DefaultGitHubUser)
	if err != nil {
		proxy.WriteErrorFor(w, err)
		return
	}
	topics := proxy.BoolFlag(r, "topics")
	readmes := proxy.BoolFlag(r, "with_readmes")
	refresh := proxy.BoolFlag(r, "refresh")

	directive := h.svc.Policy.Compute(cache.ClassCatalog)
	key := fmt.Sprintf("catalog:%s:%t:%t", user, topics, readmes)

	if refresh {
		h.svc.Versions.Advance()
	} else if body, etag, ok := h.svc.Memo.Get(key); ok {
		w.Header().Set(proxy.CacheStateHeader, "hit")
		w.Header().Set(proxy.AssetVersionHeader, h.svc.Versions.Current())
		_ = proxy.WriteCached(w, r, body, etag, directive)
		return
	}

	body, etag, err := h.Build(r.Context(), user, topics, readmes)
	if err != nil {
		if body, etag, ok := h.svc.snapshotFallback(r.Context(), user, err); ok {
			w.Header().Set(proxy.CacheStateHeader, "snapshot")
			w.Header().Set(proxy.AssetVersionHeader, h.svc.Versions.Current())
			_ = proxy.WriteCached(w, r, body, etag, directive)
			return
		}
		proxy.WriteErrorFor(w, err)
		return
	}

	h.svc.memoize(key, body, etag, directive)
	h.persistSnapshot(r.Context(), user, body, etag)

	w.Header().Set(proxy.CacheStateHeader, "miss")
	w.Header().Set(proxy.AssetVersionHeader, h.svc.Versions.Current())
	_ = proxy.WriteCached(w, r, body, etag, directive)
}

// Build fetches and serializes the catalog for user. It is the shared
// path behind ServeHTTP, the background refresh scheduler, and the
// prefetch command.
func (h *CatalogHandler) Build(ctx context.Context, user string, topics, readmes bool) (body []byte, etag string, err error) {
	start := time.Now()
	data, err := h.svc.GitHub.Catalog(ctx, user, h.svc.MaxRepos)
	h.svc.observeUpstream("github", start, err)
	if err != nil {
		return nil, "", err
	}

	pinned := mapper.PinnedNames(data.User.PinnedItems.Nodes)
	repos := mergeNodes(data.User.PinnedItems.Nodes, data.User.Repositories.Nodes)
	ordered := mapper.OrderCatalog(repos, pinned)

	if topics {
		h.fillTopics(ctx, ordered)
	}

	out := catalogBody{
		User:         user,
		FetchedAt:    h.svc.Clock.Now().UTC().Format(time.RFC3339),
		AssetVersion: h.svc.Versions.Current(),
		Repos:        ordered,
		Pinned:       pinned,
	}
	if readmes {
		out.Readmes = h.fetchReadmes(ctx, ordered, pinned)
	}

	return proxy.MarshalBody(out)
}

// Refresh rebuilds the default-shaped catalog for user and rewarms the
// memo and snapshot store. The background scheduler calls this so the
// first request after an idle period is still a warm hit.
func (h *CatalogHandler) Refresh(ctx context.Context, user string) error {
	body, etag, err := h.Build(ctx, user, false, false)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("catalog:%s:%t:%t", user, false, false)
	h.svc.memoize(key, body, etag, h.svc.Policy.Compute(cache.ClassCatalog))
	h.persistSnapshot(ctx, user, body, etag)
	return nil
}

// mergeNodes unions pinned and repository nodes, deduplicating by
// lowercased full name with the pinned copy winning.
func mergeNodes(pinned, repos []upstream.RepositoryNode) []mapper.RepositoryRecord {
	seen := make(map[string]bool, len(pinned)+len(repos))
	merged := make([]mapper.RepositoryRecord, 0, len(pinned)+len(repos))
	for _, node := range pinned {
		name := strings.ToLower(node.NameWithOwner)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		merged = append(merged, mapper.Repository(node))
	}
	for _, node := range repos {
		name := strings.ToLower(node.NameWithOwner)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		merged = append(merged, mapper.Repository(node))
	}
	return merged
}

// fillTopics fans out over repositories whose GraphQL topic list came
// back empty and backfills from the REST topics endpoint. Per-repository
// failures leave the topic list empty; they never fail the catalog.
func (h *CatalogHandler) fillTopics(ctx context.Context, ordered []mapper.RepositoryRecord) {
	missing := make([]int, 0, len(ordered))
	for i, rec := range ordered {
		if len(rec.Topics) == 0 {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return
	}

	results := fanout.Map(ctx, len(missing), h.svc.FanoutWorkers, func(ctx context.Context, i int) ([]string, error) {
		rec := ordered[missing[i]]
		start := time.Now()
		names, err := h.svc.GitHub.Topics(ctx, rec.Owner, rec.Name)
		h.svc.observeUpstream("github", start, err)
		return names, err
	})
	for i, names := range results {
		if len(names) > 0 {
			ordered[missing[i]].Topics = names
		}
	}
}

// fetchReadmes fans out README fetches for the preferred set: pinned
// repositories first, then the leading repositories in presentation
// order, deduplicated and capped at MaxReadmes. The result maps
// lowercased full names to content; a failed fetch maps to "".
func (h *CatalogHandler) fetchReadmes(ctx context.Context, ordered []mapper.RepositoryRecord, pinned []string) map[string]string {
	seen := make(map[string]bool, h.svc.MaxReadmes)
	preferred := make([]string, 0, h.svc.MaxReadmes)
	add := func(full string) {
		full = strings.ToLower(full)
		if full == "" || seen[full] || len(preferred) >= h.svc.MaxReadmes {
			return
		}
		seen[full] = true
		preferred = append(preferred, full)
	}
	for _, full := range pinned {
		add(full)
	}
	for _, rec := range ordered {
		add(rec.FullName)
	}

	results := fanout.Map(ctx, len(preferred), h.svc.FanoutWorkers, func(ctx context.Context, i int) (string, error) {
		owner, repo, ok := strings.Cut(preferred[i], "/")
		if !ok {
			return "", nil
		}
		return h.fetchReadme(ctx, owner, repo), nil
	})

	readmes := make(map[string]string, len(preferred))
	for i, content := range results {
		readmes[preferred[i]] = content
	}
	return readmes
}

// fetchReadme resolves README content for one repository, preferring the
// API metadata route over the raw mirror. Failures yield "" so a single
// repository never fails the whole catalog.
func (h *CatalogHandler) fetchReadme(ctx context.Context, owner, repo string) string {
	start := time.Now()
	meta, err := h.svc.GitHub.ReadmeMetadata(ctx, owner, repo)
	h.svc.observeUpstream("github", start, err)
	if err == nil && meta != nil {
		if content, decErr := mapper.DecodeReadme(meta.Content); decErr == nil {
			return content
		}
	}
	if err != nil {
		return ""
	}
	return h.svc.GitHub.MirrorReadme(ctx, owner, repo)
}

// persistSnapshot records the freshly built catalog body for later
// fallback. Persistence failures are logged, never surfaced to clients.
func (h *CatalogHandler) persistSnapshot(ctx context.Context, user string, body []byte, etag string) {
	if h.svc.Snapshots == nil {
		return
	}
	rec := snapshot.Record{
		User:      user,
		Body:      body,
		ETag:      etag,
		FetchedAt: h.svc.Clock.Now(),
	}
	if err := h.svc.Snapshots.Save(ctx, rec); err != nil {
		h.svc.Logger.Warn("failed to persist catalog snapshot", "user", user, "error", err)
	}
}
