package entities

import "time"

type Tier string

const (
	TierFree       Tier = "free"
	TierBasic      Tier = "basic"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// ValidTier reports whether t names a known plan.
func ValidTier(t Tier) bool {
	switch t {
	case TierFree, TierBasic, TierPro, TierEnterprise:
		return true
	}
	return false
}

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Subscription records the plan a user is on. Users without a row are on
// the free tier.
type Subscription struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	UserID    uint               `gorm:"uniqueIndex" json:"user_id"`
	Tier      Tier               `gorm:"size:20;default:'free'" json:"tier"`
	Status    SubscriptionStatus `gorm:"size:20;default:'active'" json:"status"`
	ExpiresAt *time.Time         `json:"expires_at,omitempty"`
	User      User               `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// IsActive reports whether the subscription currently grants its tier.
func (s Subscription) IsActive(now time.Time) bool {
	if s.ExpiresAt != nil && now.After(*s.ExpiresAt) {
		return false
	}
	return s.Status == SubscriptionActive || s.Status == SubscriptionTrialing
}
