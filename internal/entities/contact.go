package entities

import (
	"strings"
	"time"
)

// DefaultCategory is assigned to contacts that arrive without a category
// and without a caller-supplied default.
const DefaultCategory = "other"

// Contact is a persisted address-book entry owned by a single user.
// Email is the de-duplication key within a user's address book. It is
// compared through EmailKey, its Unicode-lowercased form, because SQLite's
// LOWER only folds ASCII.
type Contact struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index:idx_contacts_user_email_key,priority:1;not null" json:"user_id"`
	FirstName      string    `gorm:"size:255;not null" json:"first_name"`
	LastName       string    `gorm:"size:255" json:"last_name,omitempty"`
	Email          string    `gorm:"size:320" json:"email,omitempty"`
	EmailKey       string    `gorm:"column:email_key;index:idx_contacts_user_email_key,priority:2;size:320" json:"-"`
	Phone          string    `gorm:"size:64" json:"phone,omitempty"`
	Category       string    `gorm:"index;size:64;default:'other'" json:"category"`
	Notes          string    `gorm:"type:text" json:"notes,omitempty"`
	TelegramChatID string    `gorm:"column:telegram_chat_id;size:64" json:"telegram_chat_id,omitempty"`
	User           User      `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

// FullName joins first and last name with a single space.
func (c Contact) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// NormalizeEmail returns the comparison key for an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
