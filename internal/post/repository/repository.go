package repository

import (
	"time"

	postdomain "subwatch-backend/internal/post/domain"
)

// UserPostItem is a user's association joined with its shared post and
// matched tag IDs, as returned by list queries.
type UserPostItem struct {
	Association *postdomain.UserPost `json:"association"`
	Post        *postdomain.Post     `json:"post"`
	TagIDs      []string             `json:"tag_ids"`
}

// PostFilter narrows list queries
type PostFilter struct {
	Status    *postdomain.UserPostStatus
	Subreddit *string
	TagID     *string
	Limit     int
	Offset    int
}

// PostRepository defines data access for the shared post store
type PostRepository interface {
	// UpsertByExternalID inserts the post if its external id is unseen and
	// returns the stored row either way. At-least-once safe.
	UpsertByExternalID(post *postdomain.Post) (*postdomain.Post, error)

	// LatestCreatedBySubreddit returns the newest stored CreatedUTC per
	// subreddit, for the given names. Names with no posts are absent.
	LatestCreatedBySubreddit(names []string) (map[string]time.Time, error)

	FindByID(id string) (*postdomain.Post, error)
}

// UserPostRepository defines data access for per-user post associations
type UserPostRepository interface {
	// CreateIfAbsent creates the (user, post) association in status "new".
	// Returns created=false when it already exists.
	CreateIfAbsent(userID, postID string) (assoc *postdomain.UserPost, created bool, err error)

	FindByUserAndPost(userID, postID string) (*postdomain.UserPost, error)
	FindByUserID(userID string, filter PostFilter) ([]*UserPostItem, int64, error)
	UpdateStatus(userID, postID string, status postdomain.UserPostStatus) error
	SaveResponse(userID, postID, response string) error

	// AddTags records tag matches for an association (idempotent)
	AddTags(userPostID string, tagIDs []string) error
}
