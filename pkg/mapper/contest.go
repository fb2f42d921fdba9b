package mapper

import (
	"sort"
	"time"

	"folio-hq/relay/pkg/upstream"
)

// historyWindow bounds the rating history returned to clients.
const historyWindow = 365 * 24 * time.Hour

// ContestPoint is one attended contest in the rating history.
type ContestPoint struct {
	TS      int64   `json:"ts"`
	Rating  float64 `json:"rating"`
	Ranking *int64  `json:"ranking"`
	Title   string  `json:"title"`
}

// ContestResult is the shaped contest standing.
type ContestResult struct {
	Rating        float64        `json:"rating"`
	GlobalRanking *int64         `json:"globalRanking"`
	Attended      int            `json:"attended"`
	TopPercentage *float64       `json:"topPercentage"`
	History       []ContestPoint `json:"history"`
}

// Contest shapes the contest query payload. History is chronological and
// windowed to the last 365 days relative to now, while Attended reflects
// the full historical count: upstream's attendedContestsCount when
// present, else the length of the unwindowed history. A null ranking node
// (user never attended a rated contest) degrades to zeroed aggregates with
// the history-derived fallbacks.
func Contest(data *upstream.ContestData, now time.Time) ContestResult {
	var all []ContestPoint
	if data != nil {
		for _, h := range data.UserContestRankingHistory {
			if h.Rating == nil || h.Contest.StartTime == 0 {
				continue
			}
			all = append(all, ContestPoint{
				TS:      h.Contest.StartTime * 1000,
				Rating:  *h.Rating,
				Ranking: h.Ranking,
				Title:   h.Contest.Title,
			})
		}
	}
	sort.Slice(all, func(a, b int) bool { return all[a].TS < all[b].TS })

	cutoff := now.Add(-historyWindow).UnixMilli()
	recent := make([]ContestPoint, 0, len(all))
	for _, p := range all {
		if p.TS >= cutoff {
			recent = append(recent, p)
		}
	}

	// Latest ranked entry, used when the aggregate ranking is absent.
	var latestRanking *int64
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Ranking != nil {
			latestRanking = all[i].Ranking
			break
		}
	}

	result := ContestResult{
		GlobalRanking: latestRanking,
		Attended:      len(all),
		History:       recent,
	}

	if data != nil && data.UserContestRanking != nil {
		r := data.UserContestRanking
		result.Rating = r.Rating
		if r.GlobalRanking != nil {
			result.GlobalRanking = r.GlobalRanking
		}
		if r.AttendedContestsCount != nil {
			result.Attended = *r.AttendedContestsCount
		}
		result.TopPercentage = r.TopPercentage
	}

	return result
}
