package importers

import (
	"strings"

	"github.com/sunrise-events/sunrise/internal/entities"
)

// UnknownFirstName is assigned when a record carries no first name.
const UnknownFirstName = "Unknown"

// ImportedContact is one record extracted from an uploaded file. It lives
// only for the duration of an import.
type ImportedContact struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Category       string `json:"category,omitempty"`
	Notes          string `json:"notes,omitempty"`
	TelegramChatID string `json:"telegram_chat_id,omitempty"`
}

// EmailKey is the case-insensitive identity used for deduplication.
func (c ImportedContact) EmailKey() string {
	return entities.NormalizeEmail(c.Email)
}

func (c ImportedContact) hasName() bool {
	return c.FirstName != "" && c.FirstName != UnknownFirstName
}

// ToEntity converts the record into a contact owned by userID. The category
// falls back to defaultCategory, then to entities.DefaultCategory.
func (c ImportedContact) ToEntity(userID uint, defaultCategory string) entities.Contact {
	category := c.Category
	if category == "" {
		category = defaultCategory
	}
	if category == "" {
		category = entities.DefaultCategory
	}

	return entities.Contact{
		UserID:         userID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          strings.TrimSpace(c.Email),
		EmailKey:       c.EmailKey(),
		Phone:          c.Phone,
		Category:       category,
		Notes:          c.Notes,
		TelegramChatID: c.TelegramChatID,
	}
}
