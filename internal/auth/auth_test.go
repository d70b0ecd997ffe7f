package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

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
		BcryptCost:           4, // MinCost, keeps the suite fast
		MaxLoginAttempts:     5,
		LockoutDuration:      30 * time.Minute,
	}
}

type mockRevoker struct {
	mu      sync.Mutex
	revoked []uint
}

func (m *mockRevoker) RevokeAllForUser(userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked = append(m.revoked, userID)
	return nil
}

func (m *mockRevoker) revokedFor(userID uint) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.revoked {
		if id == userID {
			return true
		}
	}
	return false
}

func newTestService(t *testing.T) (*Service, *mockRepository, *mockRevoker) {
	repo := newMockRepository()
	revoker := &mockRevoker{}
	svc := NewService(newTestConfig(), newTestLogger(t), repo, revoker)
	return svc, repo, revoker
}
