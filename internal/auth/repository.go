package auth

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

type Repository interface {
	CreateUser(user *User) error
	GetUserByID(id uint) (*User, error)
	GetUserByEmail(email string) (*User, error)
	GetUserByOAuth(provider, oauthID string) (*User, error)
	LinkOAuth(userID uint, provider, oauthID string) error
	UpdatePassword(userID uint, hash string) error

	// IncrementFailedLogins bumps the failed-login counter and returns the
	// post-increment value so the caller can decide whether to lock.
	IncrementFailedLogins(userID uint) (int, error)
	// RecordLogin resets the failed-login counter, clears any lock, and
	// stamps the last-login time.
	RecordLogin(userID uint) error
	LockAccount(userID uint, until time.Time) error
	UnlockAccount(userID uint) error

	// Deactivate soft-deletes the user, mangling email and username so the
	// unique indexes free up for immediate re-registration.
	Deactivate(user *User) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateUser(user *User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

func (r *repository) GetUserByID(id uint) (*User, error) {
	var user User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetUserByEmail(email string) (*User, error) {
	var user User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetUserByOAuth(provider, oauthID string) (*User, error) {
	var user User
	err := r.db.Where("oauth_provider = ? AND oauth_id = ?", provider, oauthID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) LinkOAuth(userID uint, provider, oauthID string) error {
	return r.db.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"oauth_provider": provider,
		"oauth_id":       oauthID,
		"email_verified": true,
	}).Error
}

func (r *repository) UpdatePassword(userID uint, hash string) error {
	return r.db.Model(&User{}).Where("id = ?", userID).Update("password_hash", hash).Error
}

func (r *repository) IncrementFailedLogins(userID uint) (int, error) {
	var count int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&User{}).Where("id = ?", userID).
			UpdateColumn("failed_login_count", gorm.Expr("failed_login_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return tx.Model(&User{}).Where("id = ?", userID).
			Select("failed_login_count").Scan(&count).Error
	})
	return count, err
}

func (r *repository) RecordLogin(userID uint) error {
	now := time.Now()
	return r.db.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"failed_login_count": 0,
		"locked_until":       nil,
		"last_login_at":      now,
	}).Error
}

func (r *repository) LockAccount(userID uint, until time.Time) error {
	return r.db.Model(&User{}).Where("id = ?", userID).
		Update("locked_until", until).Error
}

func (r *repository) UnlockAccount(userID uint) error {
	return r.db.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"locked_until":       nil,
		"failed_login_count": 0,
	}).Error
}

func (r *repository) Deactivate(user *User) error {
	now := time.Now()
	mangled := fmt.Sprintf("deleted:%d:%s", now.UnixNano(), user.Email)

	return r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"email": mangled}
		if user.Username != nil {
			updates["username"] = fmt.Sprintf("deleted:%d:%s", now.UnixNano(), *user.Username)
		}

		res := tx.Model(&User{}).Where("id = ?", user.ID).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		return tx.Delete(&User{}, user.ID).Error
	})
}
