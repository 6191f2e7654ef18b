package repository

import (
	"errors"
	"time"

	billingdomain "subwatch-backend/internal/billing/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// creditRepository implements CreditRepository using GORM
type creditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) CreditRepository {
	return &creditRepository{db: db}
}

func (r *creditRepository) GetBalance(userID string) (int, error) {
	var balance billingdomain.CreditBalance
	err := r.db.Where("user_id = ?", userID).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return balance.BalanceCents, nil
}

func (r *creditRepository) AddCredits(userID string, cents int) error {
	row := &billingdomain.CreditBalance{
		UserID:       userID,
		BalanceCents: cents,
		UpdatedAt:    time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance_cents": gorm.Expr("credit_balances.balance_cents + ?", cents),
			"updated_at":    time.Now(),
		}),
	}).Create(row).Error
}

// Debit clamps at zero inside the database so concurrent chat turns can
// never drive the balance negative or lose an update.
func (r *creditRepository) Debit(userID string, cents int) error {
	return r.db.Model(&billingdomain.CreditBalance{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance_cents": gorm.Expr("GREATEST(balance_cents - ?, 0)", cents),
			"updated_at":    time.Now(),
		}).Error
}

func (r *creditRepository) AppendUsage(entry *billingdomain.UsageLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = time.Now()
	return r.db.Create(entry).Error
}

func (r *creditRepository) FindUsageByUserID(userID string, limit, offset int) ([]*billingdomain.UsageLog, int64, error) {
	var total int64
	query := r.db.Model(&billingdomain.UsageLog{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}

	var entries []*billingdomain.UsageLog
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error
	return entries, total, err
}
