package ingest

import (
	"time"

	subdomain "subwatch-backend/internal/subreddit/domain"
)

// DueSubreddit is a subreddit selected for refresh, with the "after" boundary
// to pass to the post source.
type DueSubreddit struct {
	Name  string
	After time.Time
}

// DueSubreddits partitions the candidate subreddits into due and not-due.
//
// A subreddit with no status row, or a null LastFetchedAt, is always due with
// the backfill window as its boundary. Otherwise it is due once the refresh
// interval has fully elapsed, and the boundary is the newest stored post for
// that subreddit (falling back to the backfill window when none is stored).
func DueSubreddits(
	now time.Time,
	names []string,
	statuses map[string]*subdomain.FetchStatus,
	latestPost map[string]time.Time,
	backfill time.Duration,
) []DueSubreddit {
	var due []DueSubreddit

	for _, name := range names {
		status := statuses[name]
		if status == nil || status.LastFetchedAt == nil {
			due = append(due, DueSubreddit{Name: name, After: now.Add(-backfill)})
			continue
		}

		interval := status.RefreshIntervalMinutes
		if interval <= 0 {
			interval = subdomain.DefaultRefreshIntervalMinutes
		}

		nextDue := status.LastFetchedAt.Add(time.Duration(interval) * time.Minute)
		if now.Before(nextDue) {
			continue
		}

		after := now.Add(-backfill)
		if latest, ok := latestPost[name]; ok {
			after = latest
		}
		due = append(due, DueSubreddit{Name: name, After: after})
	}

	return due
}
