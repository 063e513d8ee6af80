// Package subscriptions stores the plan tier each user is subscribed to.
package subscriptions

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sunrise-events/sunrise/internal/entities"
)

var ErrNotFound = errors.New("subscription not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByUserID returns the user's subscription or ErrNotFound.
func (r *Repository) GetByUserID(ctx context.Context, userID uint) (*entities.Subscription, error) {
	var sub entities.Subscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Upsert creates or replaces the user's subscription tier and status.
func (r *Repository) Upsert(ctx context.Context, sub *entities.Subscription) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tier", "status", "expires_at", "updated_at"}),
	}).Create(sub).Error
}
