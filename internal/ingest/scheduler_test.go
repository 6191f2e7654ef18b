package ingest

import (
	"testing"
	"time"

	subdomain "subwatch-backend/internal/subreddit/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const backfill = 7 * 24 * time.Hour

func TestDueSubreddits_NeverFetchedIsAlwaysDue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	due := DueSubreddits(now, []string{"postgresql"}, nil, nil, backfill)

	require.Len(t, due, 1)
	assert.Equal(t, "postgresql", due[0].Name)
	assert.Equal(t, now.Add(-backfill), due[0].After)
}

func TestDueSubreddits_NullLastFetchedIsDue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	statuses := map[string]*subdomain.FetchStatus{
		"golang": {Name: "golang", LastFetchedAt: nil, RefreshIntervalMinutes: 60},
	}

	due := DueSubreddits(now, []string{"golang"}, statuses, nil, backfill)

	require.Len(t, due, 1)
	assert.Equal(t, now.Add(-backfill), due[0].After)
}

func TestDueSubreddits_IntervalBoundary(t *testing.T) {
	fetchedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	statuses := map[string]*subdomain.FetchStatus{
		"golang": {Name: "golang", LastFetchedAt: &fetchedAt, RefreshIntervalMinutes: 60},
	}

	// Not due one minute before the interval elapses
	due := DueSubreddits(fetchedAt.Add(59*time.Minute), []string{"golang"}, statuses, nil, backfill)
	assert.Empty(t, due)

	// Due at exactly the interval
	due = DueSubreddits(fetchedAt.Add(60*time.Minute), []string{"golang"}, statuses, nil, backfill)
	require.Len(t, due, 1)
}

func TestDueSubreddits_BoundaryIsLatestStoredPost(t *testing.T) {
	fetchedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := fetchedAt.Add(2 * time.Hour)
	latest := time.Date(2025, 6, 1, 11, 30, 0, 0, time.UTC)

	statuses := map[string]*subdomain.FetchStatus{
		"golang": {Name: "golang", LastFetchedAt: &fetchedAt, RefreshIntervalMinutes: 60},
	}
	latestPost := map[string]time.Time{"golang": latest}

	due := DueSubreddits(now, []string{"golang"}, statuses, latestPost, backfill)

	require.Len(t, due, 1)
	assert.Equal(t, latest, due[0].After)
}

func TestDueSubreddits_FirstFetchIgnoresStoredPosts(t *testing.T) {
	// Posts already present for the subreddit (e.g. from another source) do
	// not change the first-fetch backfill boundary
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	latestPost := map[string]time.Time{"postgresql": now.Add(-10 * time.Minute)}

	due := DueSubreddits(now, []string{"postgresql"}, nil, latestPost, backfill)

	require.Len(t, due, 1)
	assert.Equal(t, now.Add(-backfill), due[0].After)
}

func TestDueSubreddits_FetchedWithNoStoredPostsFallsBackToBackfill(t *testing.T) {
	fetchedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := fetchedAt.Add(90 * time.Minute)
	statuses := map[string]*subdomain.FetchStatus{
		"quietsub": {Name: "quietsub", LastFetchedAt: &fetchedAt, RefreshIntervalMinutes: 60},
	}

	due := DueSubreddits(now, []string{"quietsub"}, statuses, nil, backfill)

	require.Len(t, due, 1)
	assert.Equal(t, now.Add(-backfill), due[0].After)
}

func TestDueSubreddits_MixedPartition(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-5 * time.Minute)
	old := now.Add(-3 * time.Hour)

	statuses := map[string]*subdomain.FetchStatus{
		"fresh": {Name: "fresh", LastFetchedAt: &recent, RefreshIntervalMinutes: 60},
		"stale": {Name: "stale", LastFetchedAt: &old, RefreshIntervalMinutes: 60},
	}

	due := DueSubreddits(now, []string{"fresh", "stale", "brandnew"}, statuses, nil, backfill)

	names := make([]string, len(due))
	for i, d := range due {
		names[i] = d.Name
	}
	assert.ElementsMatch(t, []string{"stale", "brandnew"}, names)
}

func TestDueSubreddits_ZeroIntervalUsesDefault(t *testing.T) {
	fetchedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	statuses := map[string]*subdomain.FetchStatus{
		"golang": {Name: "golang", LastFetchedAt: &fetchedAt, RefreshIntervalMinutes: 0},
	}

	due := DueSubreddits(fetchedAt.Add(30*time.Minute), []string{"golang"}, statuses, nil, backfill)
	assert.Empty(t, due)

	due = DueSubreddits(fetchedAt.Add(60*time.Minute), []string{"golang"}, statuses, nil, backfill)
	assert.Len(t, due, 1)
}
