package api

import (
	"net/http"
	"net/http/httptest"
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
	"github.com/mindmirror/backend/internal/token"
)

func newMiddlewareFixture(t *testing.T) (*Middleware, *token.Codec, *auth.User, *config.AuthConfig) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&auth.User{}))

	cfg := &config.AuthConfig{
		AccessTokenSecret:    "test-access-secret",
		RefreshTokenSecret:   "test-refresh-secret",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 7 * 24 * time.Hour,
		Issuer:               "mindmirror",
		Audience:             "mindmirror-app",
	}

	username := "ann"
	user := &auth.User{Email: "a@x.com", Username: &username, FullName: "Ann", Role: "user"}
	require.NoError(t, db.Create(user).Error)

	log, err := zap.NewDevelopment()
	require.NoError(t, err)

	codec := token.NewCodec(cfg)
	return NewMiddleware(log, codec, auth.NewRepository(db)), codec, user, cfg
}

func identityEcho(captured **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFromContext(r.Context())
		*captured = identity
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_RequireAuth(t *testing.T) {
	middleware, codec, user, cfg := newMiddlewareFixture(t)

	valid, err := codec.IssueAccess(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	expiredCfg := *cfg
	expiredCfg.AccessTokenDuration = -time.Hour
	expired, err := token.NewCodec(&expiredCfg).IssueAccess(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	refresh, _, err := codec.IssueRefresh(user.ID)
	require.NoError(t, err)

	unknownUser, err := codec.IssueAccess(9999, "ghost@x.com", "user")
	require.NoError(t, err)

	tests := []struct {
		name         string
		header       string
		wantStatus   int
		wantIdentity bool
	}{
		{"missing header", "", http.StatusUnauthorized, false},
		{"not bearer", "Basic abc", http.StatusUnauthorized, false},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized, false},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, false},
		{"refresh token rejected", "Bearer " + refresh, http.StatusUnauthorized, false},
		{"unknown subject", "Bearer " + unknownUser, http.StatusUnauthorized, false},
		{"valid token", "Bearer " + valid, http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured *Identity
			handler := middleware.RequireAuth(identityEcho(&captured))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantIdentity {
				require.NotNil(t, captured)
				assert.Equal(t, user.ID, captured.UserID)
				assert.Equal(t, "a@x.com", captured.Email)
				assert.Equal(t, "ann", captured.Username)
				assert.Equal(t, "user", captured.Role)
			} else {
				assert.Nil(t, captured)
			}
		})
	}
}

func TestMiddleware_OptionalAuth(t *testing.T) {
	middleware, codec, user, _ := newMiddlewareFixture(t)

	valid, err := codec.IssueAccess(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	tests := []struct {
		name         string
		header       string
		wantIdentity bool
	}{
		{"anonymous proceeds", "", false},
		{"bad token proceeds anonymously", "Bearer not.a.token", false},
		{"valid token attaches identity", "Bearer " + valid, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured *Identity
			handler := middleware.OptionalAuth(identityEcho(&captured))

			req := httptest.NewRequest(http.MethodGet, "/open", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantIdentity, captured != nil)
		})
	}
}

func TestMiddleware_RequireRole(t *testing.T) {
	middleware, codec, user, _ := newMiddlewareFixture(t)

	userToken, err := codec.IssueAccess(user.ID, user.Email, "user")
	require.NoError(t, err)

	var captured *Identity
	handler := middleware.RequireAuth(
		middleware.RequireRole("admin", identityEcho(&captured)))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, captured)
}
