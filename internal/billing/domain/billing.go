package domain

import "time"

// CreditBalance is a user's prepaid balance in integer cents. Debits clamp at
// zero; the balance is never negative.
type CreditBalance struct {
	UserID       string    `json:"user_id" gorm:"primaryKey"`
	BalanceCents int       `json:"balance_cents" gorm:"default:0"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UsageLog is an append-only record of one credit-funded AI completion
type UsageLog struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	UserID           string    `json:"user_id" gorm:"index;not null"`
	PostID           string    `json:"post_id" gorm:"index"`
	Model            string    `json:"model"`
	Provider         string    `json:"provider"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	CostCents        int       `json:"cost_cents"`
	CreatedAt        time.Time `json:"created_at"`
}
