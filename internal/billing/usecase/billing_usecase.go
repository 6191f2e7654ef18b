package usecase

import (
	"errors"
	"log"
	"math"

	billingdomain "subwatch-backend/internal/billing/domain"
	"subwatch-backend/internal/billing/repository"
)

// minimumChargeCents is the floor for metered usage: a completion is never
// free, whether the vendor cost rounds to zero or is missing entirely.
const minimumChargeCents = 1

// UsageRecord describes one finished credit-funded completion
type UsageRecord struct {
	UserID           string
	PostID           string
	Model            string
	Provider         string
	PromptTokens     int
	CompletionTokens int
	CostDollars      *float64
}

// BillingUsecase defines the credit and metering business logic
type BillingUsecase interface {
	GetBalance(userID string) (int, error)
	GrantCredits(userID string, cents int) error
	GetUsage(userID string, limit, offset int) ([]*billingdomain.UsageLog, int64, error)

	// Meter debits the balance and appends a usage log entry after a
	// credits-tier completion. Both side effects are best-effort and
	// independent; errors are logged, never propagated, since the chat
	// response has already been delivered. Returns the cents charged.
	Meter(record UsageRecord) int
}

type billingUsecase struct {
	creditRepo repository.CreditRepository
}

func NewBillingUsecase(creditRepo repository.CreditRepository) BillingUsecase {
	return &billingUsecase{creditRepo: creditRepo}
}

func (u *billingUsecase) GetBalance(userID string) (int, error) {
	return u.creditRepo.GetBalance(userID)
}

func (u *billingUsecase) GrantCredits(userID string, cents int) error {
	if cents <= 0 {
		return errors.New("credit amount must be positive")
	}
	return u.creditRepo.AddCredits(userID, cents)
}

func (u *billingUsecase) GetUsage(userID string, limit, offset int) ([]*billingdomain.UsageLog, int64, error) {
	return u.creditRepo.FindUsageByUserID(userID, limit, offset)
}

func (u *billingUsecase) Meter(record UsageRecord) int {
	cents := CostCents(record.CostDollars)

	if err := u.creditRepo.Debit(record.UserID, cents); err != nil {
		log.Printf("[Billing] Error debiting %d cents for user %s: %v", cents, record.UserID, err)
	}

	entry := &billingdomain.UsageLog{
		UserID:           record.UserID,
		PostID:           record.PostID,
		Model:            record.Model,
		Provider:         record.Provider,
		PromptTokens:     record.PromptTokens,
		CompletionTokens: record.CompletionTokens,
		CostCents:        cents,
	}
	if err := u.creditRepo.AppendUsage(entry); err != nil {
		log.Printf("[Billing] Error appending usage log for user %s: %v", record.UserID, err)
	}

	return cents
}

// CostCents converts a vendor-reported dollar cost into cents, rounded up,
// with a one-cent floor. A missing cost signal also charges the floor.
func CostCents(costDollars *float64) int {
	if costDollars == nil {
		return minimumChargeCents
	}
	cents := int(math.Ceil(*costDollars * 100))
	if cents < minimumChargeCents {
		return minimumChargeCents
	}
	return cents
}
