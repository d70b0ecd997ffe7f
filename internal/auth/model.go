package auth

import (
	"time"

	"gorm.io/gorm"
)

// User is the credential record behind every account. An account is usable
// when at least one of PasswordHash or OAuthID is set. Soft deletion mangles
// Email and Username so the unique indexes free up for re-registration.
type User struct {
	ID               uint    `gorm:"primaryKey"`
	Email            string  `gorm:"uniqueIndex;not null"`
	Username         *string `gorm:"uniqueIndex"`
	PasswordHash     *string
	FullName         string
	ProfilePicture   string
	OAuthProvider    *string `gorm:"column:oauth_provider;index:idx_users_oauth,priority:1"`
	OAuthID          *string `gorm:"column:oauth_id;index:idx_users_oauth,priority:2"`
	Role             string  `gorm:"default:user"`
	EmailVerified    bool    `gorm:"default:false"`
	FailedLoginCount int     `gorm:"default:0"`
	LockedUntil      *time.Time
	LastLoginAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// HasPassword reports whether the account can authenticate locally.
// OAuth-only accounts have no password hash.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// LockActive reports whether a lockout window is still in force at now.
func (u *User) LockActive(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// Profile is the public projection of a User. The password hash never
// leaves the auth package.
type Profile struct {
	ID             uint   `json:"id"`
	Email          string `json:"email"`
	Username       string `json:"username,omitempty"`
	FullName       string `json:"fullName,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	EmailVerified  bool   `json:"emailVerified"`
	CreatedAt      string `json:"createdAt"`
}

func (u *User) Profile() Profile {
	p := Profile{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		ProfilePicture: u.ProfilePicture,
		EmailVerified:  u.EmailVerified,
		CreatedAt:      u.CreatedAt.UTC().Format(time.RFC3339),
	}
	if u.Username != nil {
		p.Username = *u.Username
	}
	return p
}
