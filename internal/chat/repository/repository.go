package repository

import chatdomain "subwatch-backend/internal/chat/domain"

// ChatRepository defines data access for per-(user, post) chat history
type ChatRepository interface {
	Append(message *chatdomain.ChatMessage) error

	// FindByUserAndPost returns the conversation oldest-first, capped at limit
	FindByUserAndPost(userID, postID string, limit int) ([]*chatdomain.ChatMessage, error)

	// FindSuggestion returns the cached suggested draft, or nil when absent
	FindSuggestion(userID, postID string) (*chatdomain.ChatMessage, error)
}
