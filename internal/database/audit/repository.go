package audit

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sunrise-events/sunrise/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves an audit event to the database.
func (r *Repository) LogEvent(ctx context.Context, event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// GetEvents retrieves paginated audit events for a user, most recent first.
// A zero userID lists events for everyone.
func (r *Repository) GetEvents(ctx context.Context, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	var events []entities.AuditEvent
	var total int64

	query := r.db.WithContext(ctx).Model(&entities.AuditEvent{})
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

// CountSince counts events of the given type created after since, ignoring
// events that belong to excludedUserIDs.
func (r *Repository) CountSince(ctx context.Context, eventType entities.AuditEventType, since time.Time, excludedUserIDs []uint) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entities.AuditEvent{}).
		Where("event_type = ? AND created_at > ?", eventType, since)
	if len(excludedUserIDs) > 0 {
		query = query.Where("user_id NOT IN ?", excludedUserIDs)
	}
	err := query.Count(&count).Error
	return count, err
}

// DeleteOldEvents removes audit events older than the specified time.
// Returns the number of deleted events.
func (r *Repository) DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}
