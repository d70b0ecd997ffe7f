package token

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type Store interface {
	Create(userID uint, token string, expiresAt time.Time) error
	// Verify returns the live record for token. It fails ErrInvalid when no
	// record exists, ErrRevoked when the record is revoked, and ErrExpired
	// when the expiry has passed; an expired record is revoked on read so
	// it can never be replayed.
	Verify(token string) (*RefreshToken, error)
	// Revoke is idempotent; revoking an unknown or already-revoked token is
	// not an error.
	Revoke(token string) error
	RevokeAllForUser(userID uint) error
	// Rotate verifies oldToken, revokes it, and creates newToken for the
	// same user as one transaction. Nothing is created when verification
	// fails.
	Rotate(oldToken, newToken string, newExpiresAt time.Time) (*RefreshToken, error)
	ListActiveForUser(userID uint) ([]Metadata, error)
	// CleanupExpired deletes rows expired or revoked for longer than
	// retention. Storage hygiene only; Verify is the security boundary.
	CleanupExpired(retention time.Duration) (int64, error)
}

type store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Create(userID uint, token string, expiresAt time.Time) error {
	record := &RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	return s.db.Create(record).Error
}

func (s *store) Verify(token string) (*RefreshToken, error) {
	return verifyTx(s.db, token)
}

func verifyTx(tx *gorm.DB, token string) (*RefreshToken, error) {
	var record RefreshToken
	if err := tx.Where("token = ?", token).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalid
		}
		return nil, err
	}

	if record.Revoked {
		return nil, ErrRevoked
	}

	if time.Now().After(record.ExpiresAt) {
		// Lazy revocation: the first read after expiry retires the row so
		// it cannot be reused even once more.
		if err := revokeTx(tx, token); err != nil {
			return nil, err
		}
		return nil, ErrExpired
	}

	return &record, nil
}

func (s *store) Revoke(token string) error {
	return revokeTx(s.db, token)
}

func revokeTx(tx *gorm.DB, token string) error {
	now := time.Now()
	return tx.Model(&RefreshToken{}).
		Where("token = ? AND revoked = ?", token, false).
		Updates(map[string]interface{}{
			"revoked":    true,
			"revoked_at": now,
		}).Error
}

func (s *store) RevokeAllForUser(userID uint) error {
	now := time.Now()
	return s.db.Model(&RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Updates(map[string]interface{}{
			"revoked":    true,
			"revoked_at": now,
		}).Error
}

func (s *store) Rotate(oldToken, newToken string, newExpiresAt time.Time) (*RefreshToken, error) {
	var created *RefreshToken
	err := s.db.Transaction(func(tx *gorm.DB) error {
		record, err := verifyTx(tx, oldToken)
		if err != nil {
			return err
		}
		if err := revokeTx(tx, oldToken); err != nil {
			return err
		}
		created = &RefreshToken{
			UserID:    record.UserID,
			Token:     newToken,
			ExpiresAt: newExpiresAt,
		}
		return tx.Create(created).Error
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *store) ListActiveForUser(userID uint) ([]Metadata, error) {
	var records []RefreshToken
	err := s.db.
		Where("user_id = ? AND revoked = ? AND expires_at > ?", userID, false, time.Now()).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	metadata := make([]Metadata, 0, len(records))
	for _, r := range records {
		metadata = append(metadata, Metadata{
			ID:        r.ID,
			CreatedAt: r.CreatedAt,
			ExpiresAt: r.ExpiresAt,
		})
	}
	return metadata, nil
}

func (s *store) CleanupExpired(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res := s.db.
		Where("expires_at < ?", cutoff).
		Or("revoked = ? AND revoked_at < ?", true, cutoff).
		Delete(&RefreshToken{})
	return res.RowsAffected, res.Error
}
