package repository

import (
	"errors"
	"time"

	postdomain "subwatch-backend/internal/post/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postRepository implements PostRepository using GORM
type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// UpsertByExternalID is safe under concurrent writers: INSERT ... ON CONFLICT
// (external_id) DO NOTHING, then read back the surviving row.
func (r *postRepository) UpsertByExternalID(post *postdomain.Post) (*postdomain.Post, error) {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	post.CreatedAt = time.Now()

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(post).Error
	if err != nil {
		return nil, err
	}

	var stored postdomain.Post
	if err := r.db.Where("external_id = ?", post.ExternalID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *postRepository) LatestCreatedBySubreddit(names []string) (map[string]time.Time, error) {
	if len(names) == 0 {
		return map[string]time.Time{}, nil
	}

	var rows []struct {
		Subreddit string
		Latest    time.Time
	}
	err := r.db.Model(&postdomain.Post{}).
		Select("subreddit, MAX(created_utc) AS latest").
		Where("subreddit IN ?", names).
		Group("subreddit").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	latest := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		latest[row.Subreddit] = row.Latest
	}
	return latest, nil
}

func (r *postRepository) FindByID(id string) (*postdomain.Post, error) {
	var post postdomain.Post
	err := r.db.Where("id = ?", id).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// userPostRepository implements UserPostRepository using GORM
type userPostRepository struct {
	db *gorm.DB
}

func NewUserPostRepository(db *gorm.DB) UserPostRepository {
	return &userPostRepository{db: db}
}

// CreateIfAbsent is at-least-once safe the same way UpsertByExternalID is:
// INSERT ... ON CONFLICT (user_id, post_id) DO NOTHING, then read back the
// surviving row. A redundant fan-out delivery is a no-op, never a
// unique-index error.
func (r *userPostRepository) CreateIfAbsent(userID, postID string) (*postdomain.UserPost, bool, error) {
	now := time.Now()
	assoc := postdomain.UserPost{
		ID:        uuid.New().String(),
		UserID:    userID,
		PostID:    postID,
		Status:    postdomain.StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoNothing: true,
	}).Create(&assoc)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected > 0 {
		return &assoc, true, nil
	}

	var existing postdomain.UserPost
	if err := r.db.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

func (r *userPostRepository) FindByUserAndPost(userID, postID string) (*postdomain.UserPost, error) {
	var assoc postdomain.UserPost
	err := r.db.Where("user_id = ? AND post_id = ?", userID, postID).First(&assoc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assoc, nil
}

func (r *userPostRepository) FindByUserID(userID string, filter PostFilter) ([]*UserPostItem, int64, error) {
	query := r.db.Model(&postdomain.UserPost{}).
		Joins("JOIN posts ON posts.id = user_posts.post_id").
		Where("user_posts.user_id = ?", userID)

	if filter.Status != nil {
		query = query.Where("user_posts.status = ?", *filter.Status)
	}
	if filter.Subreddit != nil {
		query = query.Where("posts.subreddit = ?", *filter.Subreddit)
	}
	if filter.TagID != nil {
		query = query.Joins("JOIN post_tags ON post_tags.user_post_id = user_posts.id").
			Where("post_tags.tag_id = ?", *filter.TagID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var assocs []*postdomain.UserPost
	err := query.Select("user_posts.*").
		Order("posts.created_utc DESC").
		Limit(limit).Offset(filter.Offset).
		Find(&assocs).Error
	if err != nil {
		return nil, 0, err
	}

	items := make([]*UserPostItem, 0, len(assocs))
	for _, assoc := range assocs {
		var post postdomain.Post
		if err := r.db.Where("id = ?", assoc.PostID).First(&post).Error; err != nil {
			return nil, 0, err
		}

		var tagIDs []string
		if err := r.db.Model(&postdomain.PostTag{}).Where("user_post_id = ?", assoc.ID).Pluck("tag_id", &tagIDs).Error; err != nil {
			return nil, 0, err
		}

		items = append(items, &UserPostItem{
			Association: assoc,
			Post:        &post,
			TagIDs:      tagIDs,
		})
	}
	return items, total, nil
}

func (r *userPostRepository) UpdateStatus(userID, postID string, status postdomain.UserPostStatus) error {
	return r.db.Model(&postdomain.UserPost{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *userPostRepository) SaveResponse(userID, postID, response string) error {
	now := time.Now()
	return r.db.Model(&postdomain.UserPost{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Updates(map[string]interface{}{
			"response":     response,
			"responded_at": now,
			"updated_at":   now,
		}).Error
}

func (r *userPostRepository) AddTags(userPostID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]postdomain.PostTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		rows = append(rows, postdomain.PostTag{UserPostID: userPostID, TagID: tagID})
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
