package domain

import "time"

// ChatMessage is one turn of a per-(user, post) AI conversation. Suggested
// marks drafts produced by the background suggestion worker rather than a
// direct chat exchange.
type ChatMessage struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index:idx_chat_user_post;not null"`
	PostID    string    `json:"post_id" gorm:"index:idx_chat_user_post;not null"`
	Role      string    `json:"role" gorm:"not null"` // "user" or "assistant"
	Content   string    `json:"content"`
	Model     string    `json:"model,omitempty"`
	Tier      string    `json:"tier,omitempty"`
	Suggested bool      `json:"suggested"`
	CreatedAt time.Time `json:"created_at"`
}
