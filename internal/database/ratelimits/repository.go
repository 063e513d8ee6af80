// Package ratelimits persists failed-attempt counters so lockouts survive
// restarts and are shared between processes using the same database.
package ratelimits

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sunrise-events/sunrise/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the record for key, or nil when none exists.
func (r *Repository) Get(ctx context.Context, key string) (*entities.RateLimitRecord, error) {
	var record entities.RateLimitRecord
	err := r.db.WithContext(ctx).Where(&entities.RateLimitRecord{Key: key}).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Save inserts or overwrites the record stored under record.Key.
func (r *Repository) Save(ctx context.Context, record *entities.RateLimitRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(record).Error
}

func (r *Repository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&entities.RateLimitRecord{Key: key}).Error
}

// DeleteExpired removes records whose window started before windowStart and
// whose lockout, if any, ended before now.
func (r *Repository) DeleteExpired(ctx context.Context, windowStart, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("first_attempt < ? AND locked_until < ?", windowStart, now).
		Delete(&entities.RateLimitRecord{})
	return result.RowsAffected, result.Error
}
