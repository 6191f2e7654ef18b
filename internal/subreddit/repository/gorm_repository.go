package repository

import (
	"errors"
	"time"

	subdomain "subwatch-backend/internal/subreddit/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subscriptionRepository implements SubscriptionRepository using GORM
type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(sub *subdomain.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	sub.CreatedAt = time.Now()
	return r.db.Create(sub).Error
}

func (r *subscriptionRepository) FindByUserID(userID string) ([]*subdomain.Subscription, error) {
	var subs []*subdomain.Subscription
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) FindByUserAndName(userID, name string) (*subdomain.Subscription, error) {
	var sub subdomain.Subscription
	err := r.db.Where("user_id = ? AND name = ?", userID, name).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) Delete(userID, id string) error {
	return r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&subdomain.Subscription{}).Error
}

func (r *subscriptionRepository) DistinctNames() ([]string, error) {
	var names []string
	err := r.db.Model(&subdomain.Subscription{}).Distinct("name").Pluck("name", &names).Error
	return names, err
}

func (r *subscriptionRepository) SubscriberIDs(name string) ([]string, error) {
	var ids []string
	err := r.db.Model(&subdomain.Subscription{}).Where("name = ?", name).Pluck("user_id", &ids).Error
	return ids, err
}

// fetchStatusRepository implements FetchStatusRepository using GORM
type fetchStatusRepository struct {
	db *gorm.DB
}

func NewFetchStatusRepository(db *gorm.DB) FetchStatusRepository {
	return &fetchStatusRepository{db: db}
}

func (r *fetchStatusRepository) FindAll() (map[string]*subdomain.FetchStatus, error) {
	var rows []*subdomain.FetchStatus
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	statuses := make(map[string]*subdomain.FetchStatus, len(rows))
	for _, row := range rows {
		statuses[row.Name] = row
	}
	return statuses, nil
}

// UpsertLastFetched is safe under concurrent writers: INSERT ... ON CONFLICT
// (name) DO UPDATE, never read-modify-write.
func (r *fetchStatusRepository) UpsertLastFetched(name string, fetchedAt time.Time) error {
	status := &subdomain.FetchStatus{
		Name:                   name,
		LastFetchedAt:          &fetchedAt,
		RefreshIntervalMinutes: subdomain.DefaultRefreshIntervalMinutes,
		UpdatedAt:              time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_fetched_at", "updated_at"}),
	}).Create(status).Error
}

func (r *fetchStatusRepository) SetRefreshInterval(name string, minutes int) error {
	status := &subdomain.FetchStatus{
		Name:                   name,
		RefreshIntervalMinutes: minutes,
		UpdatedAt:              time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"refresh_interval_minutes", "updated_at"}),
	}).Create(status).Error
}
