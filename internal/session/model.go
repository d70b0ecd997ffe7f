package session

import "time"

// Session is a device-tracking record for the "active logins" management UI.
// It never gates access; revocation happens through refresh tokens.
type Session struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       uint   `gorm:"index;not null"`
	Device       string `gorm:"index"`
	IP           string
	UserAgent    string
	LastActiveAt time.Time `gorm:"index"`
	CreatedAt    time.Time
}

func (Session) TableName() string {
	return "sessions"
}

// View is a listed session. IsActive is derived from LastActiveAt at read
// time, never stored.
type View struct {
	ID           uint      `json:"id"`
	Device       string    `json:"device"`
	IP           string    `json:"ip"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	CreatedAt    time.Time `json:"createdAt"`
	IsActive     bool      `json:"isActive"`
}
