package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRepository(t *testing.T) (Repository, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&User{}))
	return NewRepository(db), db
}

func seedUser(t *testing.T, repo Repository, email string) *User {
	t.Helper()
	hash := "not-a-real-hash"
	user := &User{Email: email, PasswordHash: &hash}
	require.NoError(t, repo.CreateUser(user))
	return user
}

func TestRepository_CreateUser_DuplicateEmail(t *testing.T) {
	repo, _ := newTestRepository(t)
	seedUser(t, repo, "a@x.com")

	hash := "not-a-real-hash"
	err := repo.CreateUser(&User{Email: "a@x.com", PasswordHash: &hash})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRepository_CreateUser_DuplicateUsername(t *testing.T) {
	repo, _ := newTestRepository(t)

	username := "ann"
	hash := "not-a-real-hash"
	require.NoError(t, repo.CreateUser(&User{Email: "a@x.com", Username: &username, PasswordHash: &hash}))

	err := repo.CreateUser(&User{Email: "b@x.com", Username: &username, PasswordHash: &hash})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRepository_GetUserByID_NotFound(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.GetUserByID(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_IncrementFailedLogins(t *testing.T) {
	repo, _ := newTestRepository(t)
	user := seedUser(t, repo, "a@x.com")

	for want := 1; want <= 3; want++ {
		count, err := repo.IncrementFailedLogins(user.ID)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}

	require.NoError(t, repo.RecordLogin(user.ID))

	reloaded, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.FailedLoginCount)
	assert.NotNil(t, reloaded.LastLoginAt)
}

func TestRepository_IncrementFailedLogins_UnknownUser(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.IncrementFailedLogins(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_LockUnlock(t *testing.T) {
	repo, _ := newTestRepository(t)
	user := seedUser(t, repo, "a@x.com")

	until := time.Now().Add(30 * time.Minute)
	require.NoError(t, repo.LockAccount(user.ID, until))

	reloaded, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LockedUntil)
	assert.True(t, reloaded.LockActive(time.Now()))

	require.NoError(t, repo.UnlockAccount(user.ID))

	reloaded, err = repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.LockedUntil)
	assert.Zero(t, reloaded.FailedLoginCount)
}

func TestRepository_Deactivate(t *testing.T) {
	repo, db := newTestRepository(t)
	user := seedUser(t, repo, "a@x.com")

	require.NoError(t, repo.Deactivate(user))

	// The soft-deleted row is invisible to every lookup.
	_, err := repo.GetUserByID(user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = repo.GetUserByEmail("a@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// Deleting again reports not found.
	assert.ErrorIs(t, repo.Deactivate(user), ErrUserNotFound)

	// The row still exists physically, with a mangled email and deleted_at
	// set, so historical references stay intact.
	var raw User
	require.NoError(t, db.Unscoped().First(&raw, user.ID).Error)
	assert.NotEqual(t, "a@x.com", raw.Email)
	assert.Contains(t, raw.Email, "a@x.com")
	assert.True(t, raw.DeletedAt.Valid)

	// The original email is free again.
	seedUser(t, repo, "a@x.com")
}

func TestRepository_OAuthLinkAndLookup(t *testing.T) {
	repo, _ := newTestRepository(t)
	user := seedUser(t, repo, "a@x.com")

	_, err := repo.GetUserByOAuth("google", "g1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, repo.LinkOAuth(user.ID, "google", "g1"))

	linked, err := repo.GetUserByOAuth("google", "g1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, linked.ID)
	assert.True(t, linked.EmailVerified)
}
