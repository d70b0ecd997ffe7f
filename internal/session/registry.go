package session

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	// A session whose device label was seen within this window is reused on
	// login instead of inserting a duplicate row.
	reuseWindow = 24 * time.Hour
	// A session is shown as active when it was touched within this window.
	activeWindow = 15 * time.Minute
)

type Registry interface {
	Create(userID uint, device, ip, userAgent string) (*Session, error)
	// FindOrCreate collapses repeated logins from the same device into one
	// session entry: a session with the same device label touched within
	// the last 24 hours is refreshed and returned instead of a new row.
	FindOrCreate(userID uint, device, ip, userAgent string) (*Session, error)
	ListForUser(userID uint) ([]View, error)
	// DeleteOne fails ErrSessionNotFound when the session does not exist or
	// does not belong to userID.
	DeleteOne(sessionID, userID uint) error
	DeleteAllForUser(userID uint) (int64, error)
	CleanupIdle(retention time.Duration) (int64, error)
}

type registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) Registry {
	return &registry{db: db}
}

func (r *registry) Create(userID uint, device, ip, userAgent string) (*Session, error) {
	s := &Session{
		UserID:       userID,
		Device:       device,
		IP:           ip,
		UserAgent:    userAgent,
		LastActiveAt: time.Now(),
	}
	if err := r.db.Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *registry) FindOrCreate(userID uint, device, ip, userAgent string) (*Session, error) {
	var existing Session
	err := r.db.
		Where("user_id = ? AND device = ? AND last_active_at > ?",
			userID, device, time.Now().Add(-reuseWindow)).
		Order("last_active_at DESC").
		First(&existing).Error
	if err == nil {
		now := time.Now()
		updates := map[string]interface{}{
			"last_active_at": now,
			"ip":             ip,
			"user_agent":     userAgent,
		}
		if err := r.db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, err
		}
		existing.LastActiveAt = now
		existing.IP = ip
		existing.UserAgent = userAgent
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return r.Create(userID, device, ip, userAgent)
}

func (r *registry) ListForUser(userID uint) ([]View, error) {
	var sessions []Session
	err := r.db.Where("user_id = ?", userID).
		Order("last_active_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	threshold := time.Now().Add(-activeWindow)
	views := make([]View, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, View{
			ID:           s.ID,
			Device:       s.Device,
			IP:           s.IP,
			LastActiveAt: s.LastActiveAt,
			CreatedAt:    s.CreatedAt,
			IsActive:     s.LastActiveAt.After(threshold),
		})
	}
	return views, nil
}

func (r *registry) DeleteOne(sessionID, userID uint) error {
	res := r.db.Where("id = ? AND user_id = ?", sessionID, userID).Delete(&Session{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *registry) DeleteAllForUser(userID uint) (int64, error) {
	res := r.db.Where("user_id = ?", userID).Delete(&Session{})
	return res.RowsAffected, res.Error
}

func (r *registry) CleanupIdle(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res := r.db.Where("last_active_at < ?", cutoff).Delete(&Session{})
	return res.RowsAffected, res.Error
}

// ParseDeviceLabel classifies a raw User-Agent string into a coarse device
// label for the sessions UI. Cosmetic only; never used for security
// decisions.
func ParseDeviceLabel(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case ua == "":
		return "Unknown Device"
	case strings.Contains(ua, "iphone"):
		return "iPhone"
	case strings.Contains(ua, "ipad"):
		return "iPad"
	case strings.Contains(ua, "android") && strings.Contains(ua, "mobile"):
		return "Android Mobile"
	case strings.Contains(ua, "android"):
		return "Android Tablet"
	case strings.Contains(ua, "windows"):
		return "Windows PC"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		return "Mac"
	case strings.Contains(ua, "linux"):
		return "Linux PC"
	case strings.Contains(ua, "mobile"):
		return "Mobile"
	case strings.Contains(ua, "mozilla"):
		return "Desktop"
	default:
		return "Unknown Device"
	}
}
