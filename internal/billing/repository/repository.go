package repository

import billingdomain "subwatch-backend/internal/billing/domain"

// CreditRepository defines data access for credit balances and the usage log
type CreditRepository interface {
	// GetBalance returns the user's balance, zero if no row exists
	GetBalance(userID string) (int, error)

	// AddCredits atomically increases the balance, creating the row if absent
	AddCredits(userID string, cents int) error

	// Debit atomically applies balance = max(0, balance - cents) as a single
	// database-level update, never read-then-write
	Debit(userID string, cents int) error

	// AppendUsage appends a usage log entry
	AppendUsage(entry *billingdomain.UsageLog) error

	// FindUsageByUserID returns the usage history, newest first
	FindUsageByUserID(userID string, limit, offset int) ([]*billingdomain.UsageLog, int64, error)
}
