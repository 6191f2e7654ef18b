package repository

import (
	"errors"
	"time"

	chatdomain "subwatch-backend/internal/chat/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// chatRepository implements ChatRepository using GORM
type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Append(message *chatdomain.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	return r.db.Create(message).Error
}

func (r *chatRepository) FindByUserAndPost(userID, postID string, limit int) ([]*chatdomain.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	// Take the newest rows, then flip to chronological order for the caller
	var messages []*chatdomain.ChatMessage
	err := r.db.Where("user_id = ? AND post_id = ?", userID, postID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *chatRepository) FindSuggestion(userID, postID string) (*chatdomain.ChatMessage, error) {
	var message chatdomain.ChatMessage
	err := r.db.Where("user_id = ? AND post_id = ? AND suggested = ?", userID, postID, true).
		Order("created_at DESC").
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}
