package auth

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type mockRepository struct {
	mu     sync.RWMutex
	users  map[uint]*User
	nextID uint
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:  make(map[uint]*User),
		nextID: 1,
	}
}

func (r *mockRepository) CreateUser(user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.DeletedAt.Valid {
			continue
		}
		if u.Email == user.Email {
			return ErrUserExists
		}
		if u.Username != nil && user.Username != nil && *u.Username == *user.Username {
			return ErrUserExists
		}
	}

	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++

	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *mockRepository) GetUserByID(id uint) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok || user.DeletedAt.Valid {
		return nil, ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *mockRepository) GetUserByEmail(email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if !u.DeletedAt.Valid && u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *mockRepository) GetUserByOAuth(provider, oauthID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.DeletedAt.Valid || u.OAuthProvider == nil || u.OAuthID == nil {
			continue
		}
		if *u.OAuthProvider == provider && *u.OAuthID == oauthID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *mockRepository) LinkOAuth(userID uint, provider, oauthID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.OAuthProvider = &provider
	user.OAuthID = &oauthID
	user.EmailVerified = true
	return nil
}

func (r *mockRepository) UpdatePassword(userID uint, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = &hash
	return nil
}

func (r *mockRepository) IncrementFailedLogins(userID uint) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	user.FailedLoginCount++
	return user.FailedLoginCount, nil
}

func (r *mockRepository) RecordLogin(userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	now := time.Now()
	user.FailedLoginCount = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	return nil
}

func (r *mockRepository) LockAccount(userID uint, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.LockedUntil = &until
	return nil
}

func (r *mockRepository) UnlockAccount(userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.LockedUntil = nil
	user.FailedLoginCount = 0
	return nil
}

func (r *mockRepository) Deactivate(user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok || stored.DeletedAt.Valid {
		return ErrUserNotFound
	}

	now := time.Now()
	stored.Email = fmt.Sprintf("deleted:%d:%s", now.UnixNano(), stored.Email)
	if stored.Username != nil {
		mangled := fmt.Sprintf("deleted:%d:%s", now.UnixNano(), *stored.Username)
		stored.Username = &mangled
	}
	stored.DeletedAt.Time = now
	stored.DeletedAt.Valid = true
	return nil
}

// setLockedUntil backdates or clears a lock directly, bypassing the service.
func (r *mockRepository) setLockedUntil(userID uint, until *time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[userID]; ok {
		user.LockedUntil = until
	}
}

func (r *mockRepository) storedEmail(userID uint) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if user, ok := r.users[userID]; ok {
		return user.Email
	}
	return ""
}

func (r *mockRepository) isMangled(userID uint) bool {
	return strings.HasPrefix(r.storedEmail(userID), "deleted:")
}
