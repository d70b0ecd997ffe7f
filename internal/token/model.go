package token

import "time"

// RefreshToken is one issued refresh credential. A token is usable only
// while Revoked is false and ExpiresAt lies in the future; a revoked or
// expired row is never accepted again, even before physical deletion.
type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Token     string `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time
	Revoked   bool `gorm:"default:false;index"`
	RevokedAt *time.Time
	CreatedAt time.Time
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// Metadata is the caller-visible view of an issued token. The raw token
// value is never exposed through listings.
type Metadata struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
