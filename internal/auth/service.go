package auth

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mindmirror/backend/internal/apperror"
	"github.com/mindmirror/backend/internal/config"
)

// lockedMessage is deliberately uniform and does not reveal the remaining
// lock duration, so a locked account gives no brute-force retry schedule.
const lockedMessage = "account temporarily locked due to too many failed login attempts"

const invalidCredentialsMessage = "invalid email or password"

// TokenRevoker is the slice of the token subsystem the auth service needs:
// after a password change every outstanding refresh token must die.
type TokenRevoker interface {
	RevokeAllForUser(userID uint) error
}

type Service struct {
	config     *config.AuthConfig
	log        *zap.Logger
	repository Repository
	revoker    TokenRevoker
	burnTarget []byte
}

func NewService(config *config.AuthConfig, log *zap.Logger, repo Repository, revoker TokenRevoker) *Service {
	return &Service{
		config:     config,
		log:        log,
		repository: repo,
		revoker:    revoker,
		burnTarget: newBurnTarget(config.BcryptCost),
	}
}

// newBurnTarget hashes a throwaway value at the configured cost. Comparing
// against it then costs the same as comparing against a stored credential;
// a cheaper hash here would let callers tell unknown accounts from wrong
// passwords by response time.
func newBurnTarget(cost int) []byte {
	hash, err := HashPassword("timing-equalizer", cost)
	if err != nil {
		hash, _ = HashPassword("timing-equalizer", 0)
	}
	return []byte(hash)
}

func (s *Service) burnHash(password string) {
	_ = bcrypt.CompareHashAndPassword(s.burnTarget, []byte(password))
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Username string
}

func (s *Service) Register(in RegisterInput) (*User, error) {
	if violations := ValidatePassword(in.Password); len(violations) > 0 {
		return nil, apperror.Validation("password does not meet requirements", violations...)
	}

	email := normalizeEmail(in.Email)
	if _, err := s.repository.GetUserByEmail(email); err == nil {
		return nil, apperror.Conflict("email already registered")
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, apperror.Internal("failed to check existing account", err)
	}

	hash, err := HashPassword(in.Password, s.config.BcryptCost)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}

	user := &User{
		Email:        email,
		PasswordHash: &hash,
		FullName:     in.FullName,
	}
	if in.Username != "" {
		user.Username = &in.Username
	}

	if err := s.repository.CreateUser(user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, apperror.Conflict("email or username already registered")
		}
		return nil, apperror.Internal("failed to create user", err)
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID))
	return user, nil
}

func (s *Service) Login(email, password string) (*User, error) {
	user, err := s.repository.GetUserByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Burn a hash so a missing account costs the same as a wrong
			// password. The error shape is identical to the wrong-password
			// case; callers cannot enumerate accounts.
			s.burnHash(password)
			return nil, apperror.Authentication(invalidCredentialsMessage)
		}
		return nil, apperror.Internal("failed to load user", err)
	}

	now := time.Now()
	if user.LockedUntil != nil {
		if user.LockActive(now) {
			return nil, apperror.AccountLocked(lockedMessage)
		}
		// Lock window has passed; clear it lazily and verify as normal.
		if err := s.repository.UnlockAccount(user.ID); err != nil {
			return nil, apperror.Internal("failed to unlock account", err)
		}
	}

	if !user.HasPassword() {
		s.burnHash(password)
		return nil, apperror.Authentication(invalidCredentialsMessage)
	}

	if !CheckPasswordHash(password, *user.PasswordHash) {
		count, err := s.repository.IncrementFailedLogins(user.ID)
		if err != nil {
			s.log.Error("failed to record login failure", zap.Uint("user_id", user.ID), zap.Error(err))
		} else if count >= s.config.MaxLoginAttempts {
			until := now.Add(s.config.LockoutDuration)
			if err := s.repository.LockAccount(user.ID, until); err != nil {
				s.log.Error("failed to lock account", zap.Uint("user_id", user.ID), zap.Error(err))
			} else {
				s.log.Warn("account locked after repeated login failures",
					zap.Uint("user_id", user.ID),
					zap.Int("failed_attempts", count))
			}
		}
		return nil, apperror.Authentication(invalidCredentialsMessage)
	}

	if err := s.repository.RecordLogin(user.ID); err != nil {
		s.log.Error("failed to record login", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	return user, nil
}

type OAuthInput struct {
	Provider       string
	OAuthID        string
	Email          string
	FullName       string
	ProfilePicture string
}

// OAuthLogin resolves a provider-asserted identity to a local account. A
// match on provider+id wins; failing that, a match on email links the OAuth
// identity to the existing account instead of creating a duplicate.
func (s *Service) OAuthLogin(in OAuthInput) (*User, bool, error) {
	user, err := s.repository.GetUserByOAuth(in.Provider, in.OAuthID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, apperror.Internal("failed to look up oauth identity", err)
	}

	email := normalizeEmail(in.Email)
	existing, err := s.repository.GetUserByEmail(email)
	if err == nil {
		if err := s.repository.LinkOAuth(existing.ID, in.Provider, in.OAuthID); err != nil {
			return nil, false, apperror.Internal("failed to link oauth identity", err)
		}
		s.log.Info("oauth identity linked to existing account",
			zap.Uint("user_id", existing.ID),
			zap.String("provider", in.Provider))
		return s.loadUser(existing.ID)
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, apperror.Internal("failed to look up account by email", err)
	}

	user = &User{
		Email:          email,
		FullName:       in.FullName,
		ProfilePicture: in.ProfilePicture,
		OAuthProvider:  &in.Provider,
		OAuthID:        &in.OAuthID,
		EmailVerified:  true, // provider-asserted identity is trusted
	}
	if err := s.repository.CreateUser(user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, false, apperror.Conflict("account already exists")
		}
		return nil, false, apperror.Internal("failed to create user", err)
	}

	s.log.Info("user created via oauth",
		zap.Uint("user_id", user.ID),
		zap.String("provider", in.Provider))
	return user, true, nil
}

func (s *Service) loadUser(id uint) (*User, bool, error) {
	user, err := s.repository.GetUserByID(id)
	if err != nil {
		return nil, false, apperror.Internal("failed to load user", err)
	}
	return user, false, nil
}

func (s *Service) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.repository.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperror.Authentication("account not found")
		}
		return apperror.Internal("failed to load user", err)
	}

	if !user.HasPassword() {
		return apperror.Authentication("account has no local password")
	}
	if !CheckPasswordHash(currentPassword, *user.PasswordHash) {
		return apperror.Authentication("current password is incorrect")
	}
	if currentPassword == newPassword {
		return apperror.Validation("new password must differ from the current password")
	}
	if violations := ValidatePassword(newPassword); len(violations) > 0 {
		return apperror.Validation("password does not meet requirements", violations...)
	}

	hash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return apperror.Internal("failed to hash password", err)
	}
	if err := s.repository.UpdatePassword(userID, hash); err != nil {
		return apperror.Internal("failed to update password", err)
	}

	// Force re-login everywhere; outstanding refresh tokens predate the
	// credential change.
	if err := s.revoker.RevokeAllForUser(userID); err != nil {
		s.log.Error("failed to revoke refresh tokens after password change",
			zap.Uint("user_id", userID), zap.Error(err))
	}

	s.log.Info("password changed", zap.Uint("user_id", userID))
	return nil
}

// DeleteAccount soft-deletes the account. Accounts with a local password
// require confirmation; OAuth-only accounts skip the check. The caller is
// responsible for cascading token and session cleanup.
func (s *Service) DeleteAccount(userID uint, password string) error {
	user, err := s.repository.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperror.NotFound("account not found or already deleted")
		}
		return apperror.Internal("failed to load user", err)
	}

	if user.HasPassword() && !CheckPasswordHash(password, *user.PasswordHash) {
		return apperror.Authentication("password is incorrect")
	}

	if err := s.repository.Deactivate(user); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperror.NotFound("account not found or already deleted")
		}
		return apperror.Internal("failed to delete account", err)
	}

	s.log.Info("account deleted", zap.Uint("user_id", userID))
	return nil
}

func (s *Service) GetProfile(userID uint) (*Profile, error) {
	user, err := s.repository.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperror.Authentication("account not found")
		}
		return nil, apperror.Internal("failed to load user", err)
	}
	profile := user.Profile()
	return &profile, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
