package repository

import (
	"time"

	subdomain "subwatch-backend/internal/subreddit/domain"
)

// SubscriptionRepository defines data access for subreddit subscriptions
type SubscriptionRepository interface {
	Create(sub *subdomain.Subscription) error
	FindByUserID(userID string) ([]*subdomain.Subscription, error)
	FindByUserAndName(userID, name string) (*subdomain.Subscription, error)
	Delete(userID, id string) error

	// DistinctNames returns every subreddit name with at least one subscriber.
	// This is the candidate set for the fetch cycle.
	DistinctNames() ([]string, error)

	// SubscriberIDs returns the user IDs subscribed to a subreddit
	SubscriberIDs(name string) ([]string, error)
}

// FetchStatusRepository defines data access for per-subreddit fetch status
type FetchStatusRepository interface {
	// FindAll returns all fetch-status rows keyed by name
	FindAll() (map[string]*subdomain.FetchStatus, error)

	// UpsertLastFetched atomically sets last_fetched_at for a subreddit,
	// creating the row with the default interval if absent
	UpsertLastFetched(name string, fetchedAt time.Time) error

	// SetRefreshInterval updates the cadence for a subreddit
	SetRefreshInterval(name string, minutes int) error
}
