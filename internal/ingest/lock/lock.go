package lock

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FetchLock is a named-lock row. Holding the row means holding the lock.
type FetchLock struct {
	Name     string    `gorm:"primaryKey"`
	Token    string    `gorm:"not null"`
	LockedAt time.Time `gorm:"not null"`
}

// Locker is a distributed run-once lock: TryAcquire never blocks, Release is
// idempotent. Backed by a conditional insert so it holds across process
// instances sharing the database.
type Locker interface {
	// TryAcquire returns an opaque holder token and true on success
	TryAcquire(name string) (token string, acquired bool, err error)
	// Release frees the lock if this holder still owns it
	Release(name, token string) error
}

type gormLocker struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewGormLocker builds a lock backed by the fetch_locks table. Rows older than
// ttl are treated as abandoned by a crashed holder and may be taken over.
func NewGormLocker(db *gorm.DB, ttl time.Duration) Locker {
	return &gormLocker{db: db, ttl: ttl}
}

func (l *gormLocker) TryAcquire(name string) (string, bool, error) {
	// Expire abandoned locks first so a crashed holder cannot starve every
	// future run
	if err := l.db.Where("name = ? AND locked_at < ?", name, time.Now().Add(-l.ttl)).Delete(&FetchLock{}).Error; err != nil {
		return "", false, err
	}

	row := &FetchLock{
		Name:     name,
		Token:    uuid.New().String(),
		LockedAt: time.Now(),
	}

	// INSERT ... ON CONFLICT (name) DO NOTHING: exactly one concurrent caller
	// gets RowsAffected == 1
	result := l.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(row)
	if result.Error != nil {
		return "", false, result.Error
	}
	if result.RowsAffected == 0 {
		return "", false, nil
	}
	return row.Token, true, nil
}

func (l *gormLocker) Release(name, token string) error {
	// Scoped to the holder token so a takeover after TTL expiry is not
	// released by the stale holder; deleting an absent row is a no-op
	return l.db.Where("name = ? AND token = ?", name, token).Delete(&FetchLock{}).Error
}
