package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"folio-hq/relay/pkg/cache"
	"folio-hq/relay/pkg/snapshot"
	"folio-hq/relay/pkg/upstream"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// fakeGitHub is a scripted GitHub upstream. Counters track how many
// requests each route served so tests can assert memo behavior.
type fakeGitHub struct {
	srv *httptest.Server

	graphqlCalls int64
	restCalls    int64

	calendarStatus int
	calendarBody   string
	catalogStatus  int
	catalogBody    string
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{
		calendarStatus: http.StatusOK,
		catalogStatus:  http.StatusOK,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.graphqlCalls, 1)
		var req struct {
			Query string `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(req.Query, "contributionsCollection") {
			w.WriteHeader(f.calendarStatus)
			fmt.Fprint(w, f.calendarBody)
			return
		}
		w.WriteHeader(f.catalogStatus)
		fmt.Fprint(w, f.catalogBody)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.restCalls, 1)
		switch {
		case strings.HasSuffix(r.URL.Path, "/readme"):
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(upstream.ReadmeMetadata{
				Content:  base64.StdEncoding.EncodeToString([]byte("# Hello\n")),
				Encoding: "base64",
			})
		case strings.HasSuffix(r.URL.Path, "/topics"):
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(upstream.RepoTopics{Names: []string{"go", "api"}})
		case r.URL.Path == "/rate_limit":
			w.Header().Set("ETag", `"rl-etag"`)
			w.Header().Set("X-RateLimit-Remaining", "4999")
			if r.Header.Get("If-None-Match") == `"rl-etag"` {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"resources":{}}`)
		default:
			http.NotFound(w, r)
		}
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func calendarPayload(total int) string {
	return fmt.Sprintf(`{"data":{"user":{"login":"octocat","contributionsCollection":{"contributionCalendar":{"totalContributions":%d,"weeks":[{"firstDay":"2026-08-23","contributionDays":[{"date":"2026-08-23","weekday":0,"contributionCount":%d,"color":"#216e39"}]}]}}}}}`, total, total)
}

func catalogPayload() string {
	return `{"data":{"user":{
		"pinnedItems":{"nodes":[
			{"id":"R1","name":"pinned-repo","nameWithOwner":"octocat/pinned-repo","url":"https://github.com/octocat/pinned-repo","stargazerCount":5,"owner":{"login":"octocat"},"repositoryTopics":{"nodes":[]}}
		]},
		"repositories":{"nodes":[
			{"id":"R2","name":"starred-repo","nameWithOwner":"octocat/starred-repo","url":"https://github.com/octocat/starred-repo","stargazerCount":100,"owner":{"login":"octocat"},"repositoryTopics":{"nodes":[{"topic":{"name":"tools"}}]}},
			{"id":"R1","name":"pinned-repo","nameWithOwner":"octocat/pinned-repo","url":"https://github.com/octocat/pinned-repo","stargazerCount":5,"owner":{"login":"octocat"},"repositoryTopics":{"nodes":[]}}
		]}
	}}}`
}

func newTestService(t *testing.T, gh *fakeGitHub) *Service {
	t.Helper()
	clock := fixedClock{t: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	svc := &Service{
		GitHub: upstream.NewGitHub(upstream.GitHubConfig{
			APIBaseURL: gh.srv.URL,
			RawBaseURL: gh.srv.URL + "/raw",
		}, staticToken("classic-token")),
		Clock:             clock,
		DefaultGitHubUser: "octocat",
		MaxRepos:          24,
		MaxReadmes:        2,
		FanoutWorkers:     2,
	}
	svc.normalize()
	return svc
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("response is not valid JSON: %v\nbody: %s", err, rec.Body.String())
	}
}

func TestCalendarHandler(t *testing.T) {
	t.Run("serves shaped calendar and memoizes", func(t *testing.T) {
		gh := newFakeGitHub(t)
		gh.calendarBody = calendarPayload(7)
		h := NewCalendarHandler(newTestService(t, gh))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/calendar?login=octocat&days=30", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("X-Relay-Cache"); got != "miss" {
			t.Errorf("expected cache state miss, got %q", got)
		}
		if cc := rec.Header().Get("Cache-Control"); !strings.HasPrefix(cc, "s-maxage=600") {
			t.Errorf("unexpected Cache-Control %q", cc)
		}
		var body struct {
			Total     int    `json:"total"`
			Warning   string `json:"warning"`
			FetchedAt int64  `json:"_fetched_at"`
		}
		decodeBody(t, rec, &body)
		if body.Total != 7 {
			t.Errorf("expected total 7, got %d", body.Total)
		}
		if body.Warning != "" {
			t.Errorf("unexpected warning %q", body.Warning)
		}
		if body.FetchedAt == 0 {
			t.Error("expected a non-zero _fetched_at")
		}

		// Second request must come from the memo, not the upstream.
		rec2 := httptest.NewRecorder()
		h.ServeHTTP(rec2, httptest.NewRequest("GET", "/calendar?login=octocat&days=30", nil))
		if got := rec2.Header().Get("X-Relay-Cache"); got != "hit" {
			t.Errorf("expected cache state hit, got %q", got)
		}
		if calls := atomic.LoadInt64(&gh.graphqlCalls); calls != 1 {
			t.Errorf("expected 1 upstream call, got %d", calls)
		}
		if rec2.Body.String() != rec.Body.String() {
			t.Error("memo hit body differs from original response")
		}
	})

	t.Run("returns 304 when the validator matches", func(t *testing.T) {
		gh := newFakeGitHub(t)
		gh.calendarBody = calendarPayload(3)
		h := NewCalendarHandler(newTestService(t, gh))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/calendar", nil))
		etag := rec.Header().Get("ETag")
		if etag == "" {
			t.Fatal("expected an ETag on the first response")
		}

		req := httptest.NewRequest("GET", "/calendar", nil)
		req.Header.Set("If-None-Match", etag)
		rec2 := httptest.NewRecorder()
		h.ServeHTTP(rec2, req)

		if rec2.Code != http.StatusNotModified {
			t.Fatalf("expected 304, got %d", rec2.Code)
		}
		if rec2.Body.Len() != 0 {
			t.Error("304 must not carry a body")
		}
		if cc := rec2.Header().Get("Cache-Control"); !strings.HasPrefix(cc, "s-maxage=") {
			t.Errorf("304 lost its freshness headers: %q", cc)
		}
	})

	t.Run("null user degrades to a warning", func(t *testing.T) {
		gh := newFakeGitHub(t)
		gh.calendarBody = `{"data":{"user":null}}`
		h := NewCalendarHandler(newTestService(t, gh))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/calendar?login=ghost", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body struct {
			Total   int    `json:"total"`
			Warning string `json:"warning"`
		}
		decodeBody(t, rec, &body)
		if body.Total != 0 || body.Warning == "" {
			t.Errorf("expected zeroed total with warning, got total=%d warning=%q", body.Total, body.Warning)
		}
	})

	t.Run("rejects non-numeric days", func(t *testing.T) {
		gh := newFakeGitHub(t)
		h := NewCalendarHandler(newTestService(t, gh))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/calendar?days=banana", nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
			t.Errorf("error responses must be no-store, got %q", cc)
		}
	})
}

func TestCatalogHandler(t *testing.T) {
	t.Run("orders pinned first and dedupes", func(t *testing.T) {
		gh := newFakeGitHub(t)
		gh.catalogBody = catalogPayload()
		h := NewCatalogHandler(newTestService(t, gh))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/catalog", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var body struct {
			User  string `json:"user"`
			Repos []struct {
				FullName string `json:"full_name"`
			} `json:"repos"`
			Pinned       []string `json:"pinned"`
			AssetVersion string   `json:"asset_version"`
		}
		decodeBody(t, rec, &body)
		if body.User != "octocat" {
			t.Errorf("expected user octocat, got %q", body.User)
		}
		if len(body.Repos) != 2 {
			t.Fatalf("expected 2 deduplicated repos, got %d", len(body.Repos))
		}
		if body.Repos[0].FullName != "octocat/pinned-repo" {
			t.Errorf("expected the pinned repo first, got %q", body.Repos[0].FullName)
		}
		if len(body.Pinned) != 1 || body.Pinned[0] != "octocat/pinned-repo" {
			t.Errorf("unexpected pinned list %v", body.Pinned)
		}
		if body.AssetVersion == "" {
			t.Error("expected a non-empty asset version")
		}
		if got := rec.Header().Get("X-Asset-Version"); got != body.AssetVersion {
			t.Errorf("header version %q does not match body version %q", got, body.AssetVersion)
		}
	})

	t.Run("refresh bypasses the memo and advances the version", func(t *testing.T) {
		gh := newFakeGitHub(t)
		gh.catalogBody = catalogPayload()
		h := NewCatalogHandler(newTestService(t, gh))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/catalog", nil))
		v1 := rec.Header().Get("X-Asset-Version")

		rec2 := httptest.NewRecorder()
		h.ServeHTTP(rec2, httptest.NewRequest("GET", "/catalog?refresh=1", nil))
		v2 := rec2.Header().Get("X-Asset-Version")

		if got := rec2.Header().Get("X-Relay-Cache"); got != "miss" {
			t.Errorf("refresh must bypass the memo, got cache state %q", got)
		}
		if v2 == v1 {
			t.Error("refresh did not advance the asset version")
		}
		if calls := atomic.LoadInt64(&gh.graphqlCalls); calls != 2 {
			t.Errorf("expected 2 upstream calls, got %d", calls)
		}

		// A plain request after refresh hits the refreshed memo.
		rec3 := httptest.NewRecorder()
		h.ServeHTTP(rec3, httptest.NewRequest("GET", "/catalog", nil))
		if got := rec3.Header().Get("X-Relay-Cache"); got != "hit" {
			t.Errorf("expected cache state hit, got %q", got)
		}
		if got := rec3.Header().Get("X-Asset-Version"); got != v2 {
			t.Errorf("expected version %q after refresh, got %q", v2, got)
		}
	})

	t.Run("enriches readmes for the preferred set", func(t *testing.T) {
		gh := newFakeGitHub(t)
		gh.catalogBody = catalogPayload()
		h := NewCatalogHandler(newTestService(t, gh))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/catalog?with_readmes=1", nil))

		var body struct {
			Readmes map[string]string `json:"readmes"`
		}
		decodeBody(t, rec, &body)
		if len(body.Readmes) != 2 {
			t.Fatalf("expected readmes for 2 repos, got %d", len(body.Readmes))
		}
		for full, content := range body.Readmes {
			if content != "# Hello\n" {
				t.Errorf("repo %s missing readme content, got %q", full, content)
			}
		}
	})

	t.Run("backfills topics on request", func(t *testing.T) {
		gh := newFakeGitHub(t)
		gh.catalogBody = catalogPayload()
		h := NewCatalogHandler(newTestService(t, gh))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/catalog?topics=1", nil))

		var body struct {
			Repos []struct {
				FullName string   `json:"full_name"`
				Topics   []string `json:"topics"`
			} `json:"repos"`
		}
		decodeBody(t, rec, &body)
		for _, repo := range body.Repos {
			if len(repo.Topics) == 0 {
				t.Errorf("repo %s has no topics after backfill", repo.FullName)
			}
		}
	})

	t.Run("falls back to the latest snapshot on upstream failure", func(t *testing.T) {
		gh := newFakeGitHub(t)
		gh.catalogStatus = http.StatusBadGateway
		gh.catalogBody = `{"errors":[{"message":"upstream exploded"}]}`

		store, err := snapshot.NewStore(snapshot.StoreConfig{
			Path: filepath.Join(t.TempDir(), "snapshots.db"),
		})
		if err != nil {
			t.Fatalf("failed to open snapshot store: %v", err)
		}
		t.Cleanup(func() { store.Close() })

		stored := []byte(`{"repos":[],"pinned":[],"asset_version":"1","fetched_at":"2026-08-29T00:00:00Z"}`)
		err = store.Save(context.Background(), snapshot.Record{
			User:      "octocat",
			Body:      stored,
			ETag:      cache.ETag(stored),
			FetchedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("failed to seed snapshot: %v", err)
		}

		svc := newTestService(t, gh)
		svc.Snapshots = store
		h := NewCatalogHandler(svc)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/catalog", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 from snapshot fallback, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("X-Relay-Cache"); got != "snapshot" {
			t.Errorf("expected cache state snapshot, got %q", got)
		}
		var body struct {
			Warning string `json:"warning"`
		}
		decodeBody(t, rec, &body)
		if !strings.Contains(body.Warning, "snapshot") {
			t.Errorf("expected a snapshot warning, got %q", body.Warning)
		}
	})

	t.Run("propagates upstream failure without a snapshot", func(t *testing.T) {
		gh := newFakeGitHub(t)
		gh.catalogStatus = http.StatusBadGateway
		gh.catalogBody = `{"errors":[{"message":"upstream exploded"}]}`
		h := NewCatalogHandler(newTestService(t, gh))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/catalog", nil))

		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
		if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
			t.Errorf("error responses must be no-store, got %q", cc)
		}
	})
}

func TestReadmeHandler(t *testing.T) {
	t.Run("decodes api content", func(t *testing.T) {
		gh := newFakeGitHub(t)
		h := NewReadmeHandler(newTestService(t, gh))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/readme?owner=octocat&repo=hello", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body struct {
			Markdown string `json:"markdown"`
		}
		decodeBody(t, rec, &body)
		if body.Markdown != "# Hello\n" {
			t.Errorf("unexpected markdown %q", body.Markdown)
		}
	})

	t.Run("memoizes per repository", func(t *testing.T) {
		gh := newFakeGitHub(t)
		h := NewReadmeHandler(newTestService(t, gh))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/readme?owner=octocat&repo=hello", nil))

		rec2 := httptest.NewRecorder()
		h.ServeHTTP(rec2, httptest.NewRequest("GET", "/readme?owner=octocat&repo=hello", nil))

		if got := rec2.Header().Get("X-Relay-Cache"); got != "hit" {
			t.Errorf("expected cache state hit, got %q", got)
		}
		if calls := atomic.LoadInt64(&gh.restCalls); calls != 1 {
			t.Errorf("expected 1 upstream call, got %d", calls)
		}
	})

	t.Run("rejects missing and malformed params", func(t *testing.T) {
		gh := newFakeGitHub(t)
		h := NewReadmeHandler(newTestService(t, gh))

		targets := []string{
			"/readme",
			"/readme?owner=octocat",
			"/readme?repo=hello",
			"/readme?owner=..&repo=hello",
			"/readme?owner=octocat&repo=a/b",
		}
		for _, target := range targets {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d", target, rec.Code)
			}
		}
	})
}

func TestContestHandler(t *testing.T) {
	newContestService := func(t *testing.T, payload string) *Service {
		t.Helper()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, payload)
		}))
		t.Cleanup(srv.Close)
		svc := &Service{
			LeetCode:            upstream.NewLeetCode(upstream.LeetCodeConfig{GraphQLURL: srv.URL + "/graphql"}),
			Clock:               fixedClock{t: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)},
			DefaultLeetCodeUser: "coder",
		}
		svc.normalize()
		return svc
	}

	t.Run("serves shaped standing", func(t *testing.T) {
		payload := `{"data":{
			"userContestRanking":{"rating":1850.5,"globalRanking":1234,"attendedContestsCount":12,"topPercentage":8.4},
			"userContestRankingHistory":[
				{"contest":{"title":"Weekly Contest 400","startTime":1767225600},"rating":1850.5,"ranking":900}
			]}}`
		h := NewContestHandler(newContestService(t, payload))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/contest", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var body struct {
			Rating   float64 `json:"rating"`
			Attended int     `json:"attended"`
			History  []struct {
				TS int64 `json:"ts"`
			} `json:"history"`
		}
		decodeBody(t, rec, &body)
		if body.Rating != 1850.5 {
			t.Errorf("expected rating 1850.5, got %v", body.Rating)
		}
		if body.Attended != 12 {
			t.Errorf("expected 12 attended, got %d", body.Attended)
		}
		if len(body.History) != 1 || body.History[0].TS != 1767225600000 {
			t.Errorf("unexpected history %+v", body.History)
		}
	})

	t.Run("never-attended user gets zeroes, not an error", func(t *testing.T) {
		payload := `{"data":{"userContestRanking":null,"userContestRankingHistory":[]}}`
		h := NewContestHandler(newContestService(t, payload))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/contest?user=newbie", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body struct {
			Rating   float64 `json:"rating"`
			Attended int     `json:"attended"`
		}
		decodeBody(t, rec, &body)
		if body.Rating != 0 || body.Attended != 0 {
			t.Errorf("expected zeroed standing, got %+v", body)
		}
	})
}

func TestPassthroughHandler(t *testing.T) {
	t.Run("mirrors allowed paths verbatim", func(t *testing.T) {
		gh := newFakeGitHub(t)
		h := NewPassthroughHandler(newTestService(t, gh))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/proxy?path=/rate_limit", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Remaining"); got != "4999" {
			t.Errorf("rate-limit header not mirrored, got %q", got)
		}
		if got := rec.Header().Get("ETag"); got != `"rl-etag"` {
			t.Errorf("ETag not mirrored, got %q", got)
		}
		if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
			t.Errorf("passthrough must be no-store, got %q", cc)
		}
	})

	t.Run("forwards conditional revalidation", func(t *testing.T) {
		gh := newFakeGitHub(t)
		h := NewPassthroughHandler(newTestService(t, gh))

		req := httptest.NewRequest("GET", "/proxy?path=/rate_limit", nil)
		req.Header.Set("If-None-Match", `"rl-etag"`)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotModified {
			t.Fatalf("expected upstream 304 to be mirrored, got %d", rec.Code)
		}
	})

	t.Run("missing path defaults to the rate limit probe", func(t *testing.T) {
		gh := newFakeGitHub(t)
		h := NewPassthroughHandler(newTestService(t, gh))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/proxy", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Remaining"); got != "4999" {
			t.Errorf("expected the rate limit payload, got remaining %q", got)
		}
	})

	t.Run("rejects paths off the allow list", func(t *testing.T) {
		gh := newFakeGitHub(t)
		h := NewPassthroughHandler(newTestService(t, gh))

		for _, target := range []string{"/proxy?path=/orgs/evil", "/proxy?path=/repos/../secret"} {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d", target, rec.Code)
			}
		}
	})
}
