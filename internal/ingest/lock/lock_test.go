package lock

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "locks.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&FetchLock{}))
	return db
}

func TestTryAcquire_ExactlyOneHolder(t *testing.T) {
	db := newTestDB(t)
	locker := NewGormLocker(db, 10*time.Minute)

	token, acquired, err := locker.TryAcquire("fetch_cycle")
	require.NoError(t, err)
	require.True(t, acquired)
	assert.NotEmpty(t, token)

	// A second caller on the same table loses, whether it shares the Locker
	// or runs in another process instance
	_, acquired, err = locker.TryAcquire("fetch_cycle")
	require.NoError(t, err)
	assert.False(t, acquired)

	other := NewGormLocker(db, 10*time.Minute)
	_, acquired, err = other.TryAcquire("fetch_cycle")
	require.NoError(t, err)
	assert.False(t, acquired)
}

func TestTryAcquire_DistinctNamesAreIndependent(t *testing.T) {
	db := newTestDB(t)
	locker := NewGormLocker(db, 10*time.Minute)

	_, acquired, err := locker.TryAcquire("fetch_cycle")
	require.NoError(t, err)
	require.True(t, acquired)

	_, acquired, err = locker.TryAcquire("other_job")
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestRelease_AllowsReacquire(t *testing.T) {
	db := newTestDB(t)
	locker := NewGormLocker(db, 10*time.Minute)

	token, acquired, err := locker.TryAcquire("fetch_cycle")
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, locker.Release("fetch_cycle", token))

	next, acquired, err := locker.TryAcquire("fetch_cycle")
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.NotEqual(t, token, next)
}

func TestRelease_IsIdempotent(t *testing.T) {
	db := newTestDB(t)
	locker := NewGormLocker(db, 10*time.Minute)

	token, _, err := locker.TryAcquire("fetch_cycle")
	require.NoError(t, err)

	require.NoError(t, locker.Release("fetch_cycle", token))
	require.NoError(t, locker.Release("fetch_cycle", token))
	require.NoError(t, locker.Release("never_acquired", "no-such-token"))
}

func TestRelease_WrongTokenKeepsLockHeld(t *testing.T) {
	db := newTestDB(t)
	locker := NewGormLocker(db, 10*time.Minute)

	_, acquired, err := locker.TryAcquire("fetch_cycle")
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, locker.Release("fetch_cycle", "not-the-holder"))

	_, acquired, err = locker.TryAcquire("fetch_cycle")
	require.NoError(t, err)
	assert.False(t, acquired)
}

func TestTryAcquire_TakesOverStaleLock(t *testing.T) {
	db := newTestDB(t)
	locker := NewGormLocker(db, 10*time.Minute)

	// A holder that crashed 11 minutes ago never released its row
	stale := &FetchLock{
		Name:     "fetch_cycle",
		Token:    "crashed-holder",
		LockedAt: time.Now().Add(-11 * time.Minute),
	}
	require.NoError(t, db.Create(stale).Error)

	token, acquired, err := locker.TryAcquire("fetch_cycle")
	require.NoError(t, err)
	require.True(t, acquired)

	// The stale holder's deferred release must not free the new holder
	require.NoError(t, locker.Release("fetch_cycle", "crashed-holder"))
	_, acquired, err = locker.TryAcquire("fetch_cycle")
	require.NoError(t, err)
	assert.False(t, acquired)

	require.NoError(t, locker.Release("fetch_cycle", token))
}

func TestTryAcquire_FreshLockIsNotExpired(t *testing.T) {
	db := newTestDB(t)
	locker := NewGormLocker(db, 10*time.Minute)

	held := &FetchLock{
		Name:     "fetch_cycle",
		Token:    "live-holder",
		LockedAt: time.Now().Add(-5 * time.Minute),
	}
	require.NoError(t, db.Create(held).Error)

	_, acquired, err := locker.TryAcquire("fetch_cycle")
	require.NoError(t, err)
	assert.False(t, acquired)
}
