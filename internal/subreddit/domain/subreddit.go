package domain

import "time"

// DefaultRefreshIntervalMinutes applies to fetch-status rows created without
// an explicit cadence.
const DefaultRefreshIntervalMinutes = 60

// Subscription links a user to a subreddit they monitor.
// One row per (user, subreddit name).
type Subscription struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;uniqueIndex:idx_user_subreddit;not null"`
	Name      string    `json:"name" gorm:"uniqueIndex:idx_user_subreddit;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// FetchStatus tracks the refresh cadence of one subreddit across all users.
// One row per distinct subreddit name; absence (or a null LastFetchedAt)
// means never fetched.
type FetchStatus struct {
	Name                   string     `json:"name" gorm:"primaryKey"`
	LastFetchedAt          *time.Time `json:"last_fetched_at"`
	RefreshIntervalMinutes int        `json:"refresh_interval_minutes" gorm:"default:60"`
	UpdatedAt              time.Time  `json:"updated_at"`
}
