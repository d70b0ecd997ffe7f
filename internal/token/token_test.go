package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mindmirror/backend/internal/auth"
	"github.com/mindmirror/backend/internal/config"
)

func newTestLogger(t *testing.T) *zap.Logger {
	logger, err := zap.NewDevelopment()
	assert.NoError(t, err)
	return logger
}

func newTestConfig() *config.AuthConfig {
	return &config.AuthConfig{
		AccessTokenSecret:    "test-access-secret",
		RefreshTokenSecret:   "test-refresh-secret",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 7 * 24 * time.Hour,
		Issuer:               "mindmirror",
		Audience:             "mindmirror-app",
		BcryptCost:           4,
		MaxLoginAttempts:     5,
		LockoutDuration:      30 * time.Minute,
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&auth.User{}, &RefreshToken{}))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *auth.User {
	t.Helper()
	hash := "$2a$04$notarealhashbutirrelevanthere000000000000000000000000"
	user := &auth.User{
		Email:        email,
		PasswordHash: &hash,
		Role:         "user",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
