package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAPIBaseURL = "https://api.github.com"
	defaultRawBaseURL = "https://raw.githubusercontent.com"

	githubAccept = "application/vnd.github+json"
)

// readmeCandidates is the ordered list of filenames probed against the raw
// content mirror when the metadata endpoint 404s.
var readmeCandidates = []string{"README.md", "Readme.md", "readme.md", "README.MD"}

// calendarQuery fetches the contribution calendar for an inclusive UTC
// window, plus the GraphQL rate limit snapshot for diagnostics.
const calendarQuery = `
query($login:String!, $from:DateTime!, $to:DateTime!) {
  user(login:$login) {
    login
    contributionsCollection(from:$from, to:$to) {
      contributionCalendar {
        totalContributions
        weeks {
          firstDay
          contributionDays {
            date
            weekday
            contributionCount
            color
          }
        }
      }
    }
  }
  rateLimit { limit remaining resetAt }
}`

// catalogQuery fetches pinned items plus the newest-updated public
// non-fork repositories, capped at $first.
const catalogQuery = `
query($login:String!, $first:Int!) {
  user(login: $login) {
    pinnedItems(first: 6, types: REPOSITORY) {
      nodes { ...RepoFrag }
    }
    repositories(
      first: $first,
      privacy: PUBLIC,
      isFork: false,
      orderBy: {field: UPDATED_AT, direction: DESC}
    ) {
      nodes { ...RepoFrag }
    }
  }
}
fragment RepoFrag on Repository {
  id
  name
  nameWithOwner
  url
  homepageUrl
  description
  stargazerCount
  owner { login }
  primaryLanguage { name }
  repositoryTopics(first: 25) { nodes { topic { name } } }
}`

// TokenSource supplies the process credential for authenticated upstream
// access. Implementations may hot-reload the backing secret; absence is a
// configuration error, not an upstream failure.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// GitHubConfig configures the GitHub adapter.
type GitHubConfig struct {
	// APIBaseURL overrides https://api.github.com (tests).
	APIBaseURL string

	// RawBaseURL overrides https://raw.githubusercontent.com (tests).
	RawBaseURL string

	// Client tunes the underlying HTTP client.
	Client ClientConfig
}

// GitHub issues REST and GraphQL calls against the GitHub API and the raw
// content mirror.
type GitHub struct {
	*Client
	apiBase string
	rawBase string
	tokens  TokenSource
}

// NewGitHub creates the GitHub adapter.
func NewGitHub(cfg GitHubConfig, tokens TokenSource) *GitHub {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.RawBaseURL == "" {
		cfg.RawBaseURL = defaultRawBaseURL
	}
	if cfg.Client.Name == "" {
		cfg.Client.Name = "github"
	}
	return &GitHub{
		Client:  NewClient(cfg.Client),
		apiBase: strings.TrimRight(cfg.APIBaseURL, "/"),
		rawBase: strings.TrimRight(cfg.RawBaseURL, "/"),
		tokens:  tokens,
	}
}

// token resolves the bearer credential or reports a ConfigurationError.
func (g *GitHub) token(ctx context.Context) (string, error) {
	if g.tokens == nil {
		return "", &ConfigurationError{Upstream: g.Name(), Message: "no credential source configured"}
	}
	tok, err := g.tokens.Token(ctx)
	if err != nil || tok == "" {
		return "", &ConfigurationError{Upstream: g.Name(), Message: "credential not configured"}
	}
	return tok, nil
}

// FineGrainedToken reports whether the configured credential is a
// fine-grained personal access token. Fine-grained PATs commonly lack
// GraphQL access, which surfaces as a null user node; callers use this to
// sharpen the warning attached to degraded responses.
func (g *GitHub) FineGrainedToken(ctx context.Context) bool {
	if g.tokens == nil {
		return false
	}
	tok, err := g.tokens.Token(ctx)
	if err != nil {
		return false
	}
	return strings.HasPrefix(tok, "github_pat_")
}

// authHeaders builds the standard REST/GraphQL header set.
func (g *GitHub) authHeaders(token string) map[string]string {
	return map[string]string{
		"Accept":        githubAccept,
		"Authorization": "Bearer " + token,
	}
}

// Passthrough forwards a REST request and returns the raw response so the
// handler can mirror status, body, ETag and rate-limit headers verbatim,
// including upstream 304s. The caller owns the response body.
func (g *GitHub) Passthrough(ctx context.Context, path, ifNoneMatch string) (*http.Response, error) {
	token, err := g.token(ctx)
	if err != nil {
		return nil, err
	}

	headers := g.authHeaders(token)
	if ifNoneMatch != "" {
		headers["If-None-Match"] = ifNoneMatch
	}
	return g.Do(ctx, http.MethodGet, g.apiBase+path, nil, headers)
}

// CalendarWindow computes the inclusive UTC window [from, to] spanning
// exactly days calendar days, with to fixed at 23:59:59.999 UTC of the
// current day.
func CalendarWindow(now time.Time, days int) (from, to time.Time) {
	u := now.UTC()
	to = time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 999000000, time.UTC)
	start := to.AddDate(0, 0, -(days - 1))
	from = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	return from, to
}

// ContributionCalendar runs the calendar query for login over [from, to].
func (g *GitHub) ContributionCalendar(ctx context.Context, login string, from, to time.Time) (*CalendarData, error) {
	token, err := g.token(ctx)
	if err != nil {
		return nil, err
	}

	var data CalendarData
	err = g.DoGraphQL(ctx, g.apiBase+"/graphql", calendarQuery, map[string]any{
		"login": login,
		"from":  from.Format(time.RFC3339),
		"to":    to.Format(time.RFC3339),
	}, g.authHeaders(token), &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// Catalog runs the catalog query for login, capped at first repositories.
func (g *GitHub) Catalog(ctx context.Context, login string, first int) (*CatalogData, error) {
	token, err := g.token(ctx)
	if err != nil {
		return nil, err
	}

	var data CatalogData
	err = g.DoGraphQL(ctx, g.apiBase+"/graphql", catalogQuery, map[string]any{
		"login": login,
		"first": first,
	}, g.authHeaders(token), &data)
	if err != nil {
		return nil, err
	}
	if data.User == nil {
		return nil, &DataError{
			Upstream: g.Name(),
			Field:    "user",
			Message:  "GraphQL returned a null user node",
		}
	}
	return &data, nil
}

// ReadmeMetadata fetches the README metadata (base64 content) for a
// repository. A 404 returns (nil, nil): the caller should probe the raw
// content mirror. Any other non-2xx status is an HTTPError.
func (g *GitHub) ReadmeMetadata(ctx context.Context, owner, repo string) (*ReadmeMetadata, error) {
	token, err := g.token(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/repos/%s/%s/readme", g.apiBase, owner, repo)
	resp, err := g.Do(ctx, http.MethodGet, url, nil, g.authHeaders(token))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &HTTPError{
			Upstream:   g.Name(),
			StatusCode: resp.StatusCode,
			Message:    truncate(string(raw), 512),
		}
	}

	var meta ReadmeMetadata
	if err := decodeJSONBody(resp.Body, &meta); err != nil {
		return nil, &DataError{Upstream: g.Name(), Field: "content", Message: err.Error()}
	}
	return &meta, nil
}

// MirrorReadme probes the fixed candidate filenames against the raw
// content mirror and returns the first hit. All-miss returns the empty
// string; this fallback is not an error condition.
func (g *GitHub) MirrorReadme(ctx context.Context, owner, repo string) string {
	for _, file := range readmeCandidates {
		url := fmt.Sprintf("%s/%s/%s/HEAD/%s", g.rawBase, owner, repo, file)
		resp, err := g.Do(ctx, http.MethodGet, url, nil, nil)
		if err != nil {
			continue
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			raw, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr == nil {
				return string(raw)
			}
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	return ""
}

// Topics fetches the topic names for a repository.
func (g *GitHub) Topics(ctx context.Context, owner, repo string) ([]string, error) {
	token, err := g.token(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/repos/%s/%s/topics", g.apiBase, owner, repo)
	resp, err := g.Do(ctx, http.MethodGet, url, nil, g.authHeaders(token))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &HTTPError{
			Upstream:   g.Name(),
			StatusCode: resp.StatusCode,
			Message:    truncate(string(raw), 512),
		}
	}

	var topics RepoTopics
	if err := decodeJSONBody(resp.Body, &topics); err != nil {
		return nil, &DataError{Upstream: g.Name(), Field: "names", Message: err.Error()}
	}
	return topics.Names, nil
}
