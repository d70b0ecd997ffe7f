package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mindmirror/backend/internal/auth"
	"github.com/mindmirror/backend/internal/token"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the minimal view of the authenticated caller attached to the
// request context. Role comes from the verified token, the rest from the
// hydrated user record.
type Identity struct {
	UserID   uint
	Email    string
	Username string
	FullName string
	Role     string
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	return identity, ok
}

type Middleware struct {
	log   *zap.Logger
	codec *token.Codec
	users auth.Repository
}

func NewMiddleware(log *zap.Logger, codec *token.Codec, users auth.Repository) *Middleware {
	return &Middleware{
		log:   log,
		codec: codec,
		users: users,
	}
}

// RequireAuth verifies the bearer token, hydrates the user, and attaches an
// Identity to the request context. Soft-deleted accounts fail here because
// the credential lookup excludes them.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, errMessage := m.authenticate(r)
		if identity == nil {
			writeError(w, http.StatusUnauthorized, "authentication", errMessage)
			return
		}
		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), identityContextKey, identity)))
	})
}

// OptionalAuth attaches an identity when a valid bearer token is present and
// silently proceeds anonymously otherwise.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, _ := m.authenticate(r); identity != nil {
			r = r.WithContext(context.WithValue(r.Context(), identityContextKey, identity))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole gates a handler on the role carried by the verified token.
// Must be applied inside RequireAuth.
func (m *Middleware) RequireRole(role string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok || identity.Role != role {
			writeError(w, http.StatusForbidden, "authentication", "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) authenticate(r *http.Request) (*Identity, string) {
	bearer := r.Header.Get("Authorization")
	if bearer == "" {
		return nil, "missing authorization token"
	}
	tokenString, ok := strings.CutPrefix(bearer, "Bearer ")
	if !ok {
		return nil, "malformed authorization header"
	}

	claims, err := m.codec.VerifyAccess(tokenString)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, "token expired"
		}
		return nil, "invalid token"
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, "invalid token"
	}

	user, err := m.users.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, "account no longer exists"
		}
		m.log.Error("failed to hydrate identity", zap.Uint("user_id", userID), zap.Error(err))
		return nil, "authentication failed"
	}

	identity := &Identity{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     claims.Role,
	}
	if user.Username != nil {
		identity.Username = *user.Username
	}
	return identity, ""
}
