package maintenance

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
	"github.com/mindmirror/backend/internal/session"
	"github.com/mindmirror/backend/internal/token"
)

func newTestCleaner(t *testing.T) (*Cleaner, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&auth.User{}, &token.RefreshToken{}, &session.Session{}))

	authConfig := &config.AuthConfig{
		AccessTokenSecret:    "test-access-secret",
		RefreshTokenSecret:   "test-refresh-secret",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 7 * 24 * time.Hour,
		Issuer:               "mindmirror",
		Audience:             "mindmirror-app",
	}
	maintConfig := &config.MaintenanceConfig{
		CleanupSchedule: "@hourly",
		RetentionWindow: 30 * 24 * time.Hour,
	}

	log := zap.NewNop()
	users := auth.NewRepository(db)
	tokens := token.NewService(authConfig, log, token.NewCodec(authConfig), token.NewStore(db), users)
	cleaner := NewCleaner(maintConfig, log, tokens, session.NewRegistry(db))
	return cleaner, db
}

func TestCleaner_Sweep(t *testing.T) {
	cleaner, db := newTestCleaner(t)

	hash := "not-a-real-hash"
	user := &auth.User{Email: "sweep@x.com", PasswordHash: &hash}
	require.NoError(t, db.Create(user).Error)

	old := time.Now().Add(-60 * 24 * time.Hour)
	stale := []interface{}{
		&token.RefreshToken{UserID: user.ID, Token: "stale-token", ExpiresAt: old},
		&session.Session{UserID: user.ID, Device: "Mac", LastActiveAt: old},
	}
	live := []interface{}{
		&token.RefreshToken{UserID: user.ID, Token: "live-token", ExpiresAt: time.Now().Add(time.Hour)},
		&session.Session{UserID: user.ID, Device: "iPhone", LastActiveAt: time.Now()},
	}
	for _, row := range append(stale, live...) {
		require.NoError(t, db.Create(row).Error)
	}

	cleaner.Sweep()

	var tokenCount, sessionCount int64
	require.NoError(t, db.Model(&token.RefreshToken{}).Count(&tokenCount).Error)
	require.NoError(t, db.Model(&session.Session{}).Count(&sessionCount).Error)
	assert.Equal(t, int64(1), tokenCount)
	assert.Equal(t, int64(1), sessionCount)
}

func TestCleaner_StartRejectsBadSchedule(t *testing.T) {
	cleaner, _ := newTestCleaner(t)
	cleaner.config.CleanupSchedule = "not a schedule"

	assert.Error(t, cleaner.Start())
}
