package upstream

import (
	"context"
	"strings"
)

const defaultLeetCodeURL = "https://leetcode.com/graphql"

// contestQuery fetches the aggregate contest standing plus the full
// per-contest rating history.
const contestQuery = `
query userContestRankingInfo($username: String!) {
  userContestRanking(username: $username) {
    rating
    globalRanking
    attendedContestsCount
    topPercentage
  }
  userContestRankingHistory(username: $username) {
    contest { title startTime }
    rating
    ranking
  }
}`

// LeetCodeConfig configures the LeetCode adapter.
type LeetCodeConfig struct {
	// GraphQLURL overrides https://leetcode.com/graphql (tests).
	GraphQLURL string

	// Client tunes the underlying HTTP client.
	Client ClientConfig
}

// LeetCode issues unauthenticated GraphQL calls against LeetCode. The
// endpoint rejects requests without a browser-shaped User-Agent and a
// same-site Referer.
type LeetCode struct {
	*Client
	graphqlURL string
	referer    string
}

// NewLeetCode creates the LeetCode adapter.
func NewLeetCode(cfg LeetCodeConfig) *LeetCode {
	if cfg.GraphQLURL == "" {
		cfg.GraphQLURL = defaultLeetCodeURL
	}
	if cfg.Client.Name == "" {
		cfg.Client.Name = "leetcode"
	}
	if cfg.Client.UserAgent == "" {
		cfg.Client.UserAgent = "Mozilla/5.0"
	}

	referer := "https://leetcode.com"
	if idx := strings.Index(cfg.GraphQLURL, "/graphql"); idx > 0 {
		referer = cfg.GraphQLURL[:idx]
	}

	return &LeetCode{
		Client:     NewClient(cfg.Client),
		graphqlURL: cfg.GraphQLURL,
		referer:    referer,
	}
}

// ContestRanking runs the contest query for user.
func (l *LeetCode) ContestRanking(ctx context.Context, user string) (*ContestData, error) {
	var data ContestData
	err := l.DoGraphQL(ctx, l.graphqlURL, contestQuery, map[string]any{
		"username": user,
	}, map[string]string{
		"Referer": l.referer,
	}, &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}
