// Package contacts provides database operations for the contacts table.
//
// Every query is scoped by user ID; a contact belonging to another user is
// reported as ErrNotFound.
package contacts

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sunrise-events/sunrise/internal/entities"
)

// maxInParams keeps IN (...) lists below SQLite's bound-parameter limit.
const maxInParams = 500

var ErrNotFound = errors.New("contact not found")

// ListOptions filters and paginates contact listings.
type ListOptions struct {
	Query    string // Matches first name, last name or email (case-insensitive)
	Category string
	Limit    int
	Offset   int
}

// CategoryCount is one row of a per-category aggregate.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Repository handles all contact database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new contacts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a single contact.
func (r *Repository) Create(ctx context.Context, contact *entities.Contact) error {
	contact.EmailKey = entities.NormalizeEmail(contact.Email)
	return r.db.WithContext(ctx).Create(contact).Error
}

// InsertBatch inserts one chunk of contacts in a single statement.
func (r *Repository) InsertBatch(ctx context.Context, batch []entities.Contact) error {
	if len(batch) == 0 {
		return nil
	}
	setEmailKeys(batch)
	return r.db.WithContext(ctx).Create(&batch).Error
}

// InsertAll inserts every chunk inside one transaction. Any failure rolls back all chunks.
func (r *Repository) InsertAll(ctx context.Context, chunks [][]entities.Contact) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, chunk := range chunks {
			if len(chunk) == 0 {
				continue
			}
			setEmailKeys(chunk)
			if err := tx.Create(&chunk).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ExistingEmails returns the email keys among emails already stored for the user.
func (r *Repository) ExistingEmails(ctx context.Context, userID uint, emails []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(emails) == 0 {
		return existing, nil
	}

	keys := make([]string, 0, len(emails))
	for _, e := range emails {
		keys = append(keys, entities.NormalizeEmail(e))
	}

	for start := 0; start < len(keys); start += maxInParams {
		end := min(start+maxInParams, len(keys))

		var found []string
		err := r.db.WithContext(ctx).Model(&entities.Contact{}).
			Where("user_id = ? AND email_key IN ?", userID, keys[start:end]).
			Pluck("email_key", &found).Error
		if err != nil {
			return nil, err
		}
		for _, e := range found {
			existing[e] = struct{}{}
		}
	}

	return existing, nil
}

// EmailExists reports whether the user already has a contact with this email.
func (r *Repository) EmailExists(ctx context.Context, userID uint, email string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entities.Contact{}).
		Where("user_id = ? AND email_key = ?", userID, entities.NormalizeEmail(email))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// CountForUser returns how many contacts the user owns.
func (r *Repository) CountForUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Contact{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// List returns a page of the user's contacts and the total matching count.
func (r *Repository) List(ctx context.Context, userID uint, opts ListOptions) ([]entities.Contact, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Contact{}).Where("user_id = ?", userID)

	if q := strings.TrimSpace(opts.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR email_key LIKE ?", pattern, pattern, pattern)
	}
	if opts.Category != "" {
		query = query.Where("category = ?", opts.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	var contacts []entities.Contact
	err := query.Order("first_name ASC, last_name ASC, id ASC").
		Limit(opts.Limit).Offset(opts.Offset).
		Find(&contacts).Error
	return contacts, total, err
}

// AllForUser returns every contact the user owns, ordered by ID.
func (r *Repository) AllForUser(ctx context.Context, userID uint) ([]entities.Contact, error) {
	var contacts []entities.Contact
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&contacts).Error
	return contacts, err
}

// GetForUser retrieves a single contact owned by the user.
func (r *Repository) GetForUser(ctx context.Context, userID, id uint) (*entities.Contact, error) {
	var contact entities.Contact
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// Update saves all fields of an existing contact.
func (r *Repository) Update(ctx context.Context, contact *entities.Contact) error {
	contact.EmailKey = entities.NormalizeEmail(contact.Email)
	result := r.db.WithContext(ctx).Model(&entities.Contact{}).
		Where("id = ? AND user_id = ?", contact.ID, contact.UserID).
		Select("first_name", "last_name", "email", "email_key", "phone", "category", "notes", "telegram_chat_id", "updated_at").
		Updates(contact)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a contact owned by the user.
func (r *Repository) Delete(ctx context.Context, userID, id uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&entities.Contact{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountExcluding counts all contacts, ignoring those owned by excluded users.
func (r *Repository) CountExcluding(ctx context.Context, excludedUserIDs []uint) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entities.Contact{})
	if len(excludedUserIDs) > 0 {
		query = query.Where("user_id NOT IN ?", excludedUserIDs)
	}
	err := query.Count(&count).Error
	return count, err
}

// CountByCategoryExcluding aggregates contacts per category, ignoring excluded users.
func (r *Repository) CountByCategoryExcluding(ctx context.Context, excludedUserIDs []uint) ([]CategoryCount, error) {
	var rows []CategoryCount
	query := r.db.WithContext(ctx).Model(&entities.Contact{}).Select("category, COUNT(*) AS count")
	if len(excludedUserIDs) > 0 {
		query = query.Where("user_id NOT IN ?", excludedUserIDs)
	}
	err := query.Group("category").Order("count DESC, category ASC").Scan(&rows).Error
	return rows, err
}

func setEmailKeys(batch []entities.Contact) {
	for i := range batch {
		batch[i].EmailKey = entities.NormalizeEmail(batch[i].Email)
	}
}
