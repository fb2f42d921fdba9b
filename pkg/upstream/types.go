package upstream

// Raw GraphQL shapes as GitHub and LeetCode return them. The mapper package
// turns these into the relay's stable output schema.

// CalendarData is the data payload of the contribution calendar query.
type CalendarData struct {
	User      *CalendarUser `json:"user"`
	RateLimit *RateLimit    `json:"rateLimit"`
}

// CalendarUser holds a user's contributions collection.
type CalendarUser struct {
	Login                   string `json:"login"`
	ContributionsCollection struct {
		ContributionCalendar ContributionCalendar `json:"contributionCalendar"`
	} `json:"contributionsCollection"`
}

// ContributionCalendar is the calendar grid.
type ContributionCalendar struct {
	TotalContributions int                `json:"totalContributions"`
	Weeks              []ContributionWeek `json:"weeks"`
}

// ContributionWeek is one column of the calendar grid.
type ContributionWeek struct {
	FirstDay         string            `json:"firstDay"`
	ContributionDays []ContributionDay `json:"contributionDays"`
}

// ContributionDay is one cell of the calendar grid.
type ContributionDay struct {
	Date              string `json:"date"`
	Weekday           int    `json:"weekday"`
	ContributionCount int    `json:"contributionCount"`
	Color             string `json:"color"`
}

// RateLimit is GitHub's GraphQL rate limit snapshot.
type RateLimit struct {
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	ResetAt   string `json:"resetAt"`
}

// CatalogData is the data payload of the repository catalog query.
type CatalogData struct {
	User *CatalogUser `json:"user"`
}

// CatalogUser carries pinned items and the repository page.
type CatalogUser struct {
	PinnedItems struct {
		Nodes []RepositoryNode `json:"nodes"`
	} `json:"pinnedItems"`
	Repositories struct {
		Nodes []RepositoryNode `json:"nodes"`
	} `json:"repositories"`
}

// RepositoryNode is the RepoFrag fragment shape.
type RepositoryNode struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	NameWithOwner  string  `json:"nameWithOwner"`
	URL            string  `json:"url"`
	HomepageURL    *string `json:"homepageUrl"`
	Description    *string `json:"description"`
	StargazerCount int     `json:"stargazerCount"`
	Owner          struct {
		Login string `json:"login"`
	} `json:"owner"`
	PrimaryLanguage *struct {
		Name string `json:"name"`
	} `json:"primaryLanguage"`
	RepositoryTopics struct {
		Nodes []struct {
			Topic struct {
				Name string `json:"name"`
			} `json:"topic"`
		} `json:"nodes"`
	} `json:"repositoryTopics"`
}

// ContestData is the data payload of the LeetCode contest query.
type ContestData struct {
	UserContestRanking        *ContestRanking       `json:"userContestRanking"`
	UserContestRankingHistory []ContestHistoryEntry `json:"userContestRankingHistory"`
}

// ContestRanking is the aggregate contest standing.
type ContestRanking struct {
	Rating                float64  `json:"rating"`
	GlobalRanking         *int64   `json:"globalRanking"`
	AttendedContestsCount *int     `json:"attendedContestsCount"`
	TopPercentage         *float64 `json:"topPercentage"`
}

// ContestHistoryEntry is one attended contest.
type ContestHistoryEntry struct {
	Contest struct {
		Title     string `json:"title"`
		StartTime int64  `json:"startTime"`
	} `json:"contest"`
	Rating  *float64 `json:"rating"`
	Ranking *int64   `json:"ranking"`
}

// ReadmeMetadata is the REST /repos/{owner}/{repo}/readme payload subset.
type ReadmeMetadata struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// RepoTopics is the REST /repos/{owner}/{repo}/topics payload.
type RepoTopics struct {
	Names []string `json:"names"`
}
