package domain

import "time"

// Tag is a user-owned keyword tag. A post matches the tag when any of its
// terms appears (case-insensitively) in the post title or body.
type Tag struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Color     string    `json:"color"`
	Terms     []string  `json:"terms" gorm:"serializer:json"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
