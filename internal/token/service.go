package token

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mindmirror/backend/internal/apperror"
	"github.com/mindmirror/backend/internal/auth"
	"github.com/mindmirror/backend/internal/config"
)

// Pair is an issued access/refresh token pair in the shape clients consume.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type Service struct {
	config *config.AuthConfig
	log    *zap.Logger
	codec  *Codec
	store  Store
	users  auth.Repository
}

func NewService(config *config.AuthConfig, log *zap.Logger, codec *Codec, store Store, users auth.Repository) *Service {
	return &Service{
		config: config,
		log:    log,
		codec:  codec,
		store:  store,
		users:  users,
	}
}

// IssuePair mints an access/refresh pair for user and persists the refresh
// token.
func (s *Service) IssuePair(user *auth.User) (*Pair, error) {
	accessToken, err := s.codec.IssueAccess(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperror.Internal("failed to sign access token", err)
	}

	refreshToken, expiresAt, err := s.codec.IssueRefresh(user.ID)
	if err != nil {
		return nil, apperror.Internal("failed to sign refresh token", err)
	}

	if err := s.store.Create(user.ID, refreshToken, expiresAt); err != nil {
		return nil, apperror.Internal("failed to persist refresh token", err)
	}

	return &Pair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.config.AccessTokenDuration.Seconds()),
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// always rotated: refresh tokens are single-use, so an intercepted token is
// only good until its legitimate holder next refreshes.
func (s *Service) Refresh(refreshToken string) (*Pair, *auth.User, error) {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, nil, s.tokenError(err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, apperror.Token("invalid refresh token")
	}

	user, err := s.users.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			// Account deleted since issuance; retire the token.
			if revokeErr := s.store.Revoke(refreshToken); revokeErr != nil {
				s.log.Error("failed to revoke orphaned refresh token", zap.Error(revokeErr))
			}
			return nil, nil, apperror.Token("invalid refresh token")
		}
		return nil, nil, apperror.Internal("failed to load user", err)
	}

	newRefresh, expiresAt, err := s.codec.IssueRefresh(user.ID)
	if err != nil {
		return nil, nil, apperror.Internal("failed to sign refresh token", err)
	}

	if _, err := s.store.Rotate(refreshToken, newRefresh, expiresAt); err != nil {
		return nil, nil, s.tokenError(err)
	}

	accessToken, err := s.codec.IssueAccess(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, nil, apperror.Internal("failed to sign access token", err)
	}

	return &Pair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.config.AccessTokenDuration.Seconds()),
	}, user, nil
}

// Revoke retires one refresh token. Unknown tokens are ignored so logout is
// idempotent.
func (s *Service) Revoke(refreshToken string) error {
	if err := s.store.Revoke(refreshToken); err != nil {
		return apperror.Internal("failed to revoke refresh token", err)
	}
	return nil
}

func (s *Service) RevokeAllForUser(userID uint) error {
	return s.store.RevokeAllForUser(userID)
}

func (s *Service) ListActive(userID uint) ([]Metadata, error) {
	metadata, err := s.store.ListActiveForUser(userID)
	if err != nil {
		return nil, apperror.Internal("failed to list tokens", err)
	}
	return metadata, nil
}

func (s *Service) CleanupExpired(retention time.Duration) (int64, error) {
	return s.store.CleanupExpired(retention)
}

// tokenError maps codec and store failures onto the generic client-facing
// token error while keeping the distinct cause in the logs for abuse
// monitoring.
func (s *Service) tokenError(err error) error {
	switch {
	case errors.Is(err, ErrExpired):
		s.log.Warn("refresh rejected: token expired")
		return apperror.Token("refresh token expired")
	case errors.Is(err, ErrRevoked):
		s.log.Warn("refresh rejected: token revoked")
		return apperror.Token("refresh token revoked")
	case errors.Is(err, ErrInvalid), errors.Is(err, ErrWrongType):
		s.log.Warn("refresh rejected: token invalid", zap.Error(err))
		return apperror.Token("invalid refresh token")
	default:
		return apperror.Internal("failed to verify refresh token", err)
	}
}
