// Package locks implements a per-user mutual exclusion record for contact
// imports. Only one unexpired lock may exist per user.
package locks

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sunrise-events/sunrise/internal/entities"
)

var ErrLocked = errors.New("lock is held by another operation")

type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Acquire takes the user's lock for ttl and returns the token needed to
// release it. An expired lock left behind by a crashed import is replaced.
func (r *Repository) Acquire(ctx context.Context, userID uint, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	now := r.now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND expires_at <= ?", userID, now).
			Delete(&entities.ImportLock{}).Error; err != nil {
			return err
		}

		var held int64
		if err := tx.Model(&entities.ImportLock{}).Where("user_id = ?", userID).Count(&held).Error; err != nil {
			return err
		}
		if held > 0 {
			return ErrLocked
		}

		return tx.Create(&entities.ImportLock{
			UserID:    userID,
			Token:     token,
			ExpiresAt: now.Add(ttl),
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrLocked) || isUniqueViolation(err) {
			return "", ErrLocked
		}
		return "", err
	}
	return token, nil
}

// Release drops the lock if token still owns it.
func (r *Repository) Release(ctx context.Context, userID uint, token string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&entities.ImportLock{}).Error
}

// PurgeExpired removes every lock whose TTL has passed.
func (r *Repository) PurgeExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", r.now()).Delete(&entities.ImportLock{})
	return result.RowsAffected, result.Error
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
