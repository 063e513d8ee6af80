package entities

import "time"

// RateLimitRecord tracks failed attempts for one rate-limit key
// (for example "login:<ip>:<username>").
type RateLimitRecord struct {
	Key          string    `gorm:"primaryKey;size:255" json:"key"`
	Count        int       `json:"count"`
	FirstAttempt time.Time `json:"first_attempt"`
	LockedUntil  time.Time `gorm:"index" json:"locked_until"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (RateLimitRecord) TableName() string {
	return "rate_limits"
}

// ImportLock marks a user's contact import as in progress.
type ImportLock struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Token     string    `gorm:"size:64" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (ImportLock) TableName() string {
	return "import_locks"
}
