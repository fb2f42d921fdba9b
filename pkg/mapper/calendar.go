package mapper

import "folio-hq/relay/pkg/upstream"

// Operator-facing hints for the most common cause of an empty calendar.
const (
	nullUserHint  = "GitHub returned a null user node. Common cause: fine-grained PAT lacks GraphQL access. Use a classic PAT."
	emptyGridHint = "Calendar is empty; check token permissions."
	fineGrainHint = "Fine-grained PATs often lack GraphQL access. Use a classic PAT (no scopes needed for public data)."
)

// CalendarResult is the shaped contribution calendar plus an optional
// warning distinguishing a degraded payload from a genuinely empty one.
type CalendarResult struct {
	Total   int
	Weeks   []upstream.ContributionWeek
	Warning string
}

// Calendar shapes the calendar query payload. A null user node yields a
// zeroed result with a non-empty warning rather than an error: the
// dashboard should keep rendering while signalling the degradation.
// fineGrained marks credentials known to lack GraphQL access, which
// sharpens the warning text.
func Calendar(data *upstream.CalendarData, fineGrained bool) CalendarResult {
	if data == nil || data.User == nil {
		return CalendarResult{Total: 0, Weeks: []upstream.ContributionWeek{}, Warning: nullUserHint}
	}

	cal := data.User.ContributionsCollection.ContributionCalendar
	weeks := cal.Weeks
	if weeks == nil {
		weeks = []upstream.ContributionWeek{}
	}

	result := CalendarResult{Total: cal.TotalContributions, Weeks: weeks}
	if len(weeks) == 0 && cal.TotalContributions == 0 {
		if fineGrained {
			result.Warning = fineGrainHint
		} else {
			result.Warning = emptyGridHint
		}
	}
	return result
}
