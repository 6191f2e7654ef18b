package domain

import "time"

// Post is a globally shared Reddit post, deduplicated by ExternalID and
// immutable once stored (score and comment count are snapshots from fetch
// time, not live-updated).
type Post struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	ExternalID  string    `json:"external_id" gorm:"uniqueIndex;not null"`
	Title       string    `json:"title" gorm:"not null"`
	Body        *string   `json:"body"`
	Author      string    `json:"author"`
	Subreddit   string    `json:"subreddit" gorm:"index"`
	Permalink   string    `json:"permalink"`
	URL         string    `json:"url"`
	CreatedUTC  time.Time `json:"created_utc" gorm:"index"`
	Score       int       `json:"score"`
	NumComments int       `json:"num_comments"`
	NSFW        bool      `json:"nsfw"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserPostStatus is the triage state of a post for one user
type UserPostStatus string

const (
	StatusNew     UserPostStatus = "new"
	StatusIgnored UserPostStatus = "ignored"
	StatusDone    UserPostStatus = "done"
)

// UserPost is the per-user association over a shared post: the only mutable
// per-user state (triage status, drafted response).
type UserPost struct {
	ID          string         `json:"id" gorm:"primaryKey"`
	UserID      string         `json:"user_id" gorm:"index;uniqueIndex:idx_user_post;not null"`
	PostID      string         `json:"post_id" gorm:"uniqueIndex:idx_user_post;not null"`
	Status      UserPostStatus `json:"status" gorm:"default:new"`
	Response    *string        `json:"response"`
	RespondedAt *time.Time     `json:"responded_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// PostTag records a tag match computed at ingestion time
type PostTag struct {
	UserPostID string `json:"user_post_id" gorm:"uniqueIndex:idx_userpost_tag;not null"`
	TagID      string `json:"tag_id" gorm:"uniqueIndex:idx_userpost_tag;index;not null"`
}
