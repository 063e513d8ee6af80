package subscriptions

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sunrise-events/sunrise/internal/config"
	"github.com/sunrise-events/sunrise/internal/database/subscriptions"
	"github.com/sunrise-events/sunrise/internal/entities"
	"github.com/sunrise-events/sunrise/internal/importers"
)

type mockCounter struct {
	counts map[uint]int64
}

func (m *mockCounter) CountForUser(_ context.Context, userID uint) (int64, error) {
	return m.counts[userID], nil
}

var testPlans = config.Plans{
	FreeMaxContacts:       20,
	BasicMaxContacts:      100,
	ProMaxContacts:        1000,
	EnterpriseMaxContacts: config.UnlimitedContacts,
}

func setupTestService(t *testing.T, counts map[uint]int64) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "subs.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}, &entities.Subscription{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewService(subscriptions.NewRepository(db), &mockCounter{counts: counts}, testPlans), db
}

func TestService_ContactLimits(t *testing.T) {
	expired := time.Now().Add(-time.Hour)

	tests := []struct {
		name     string
		sub      *entities.Subscription
		count    int64
		expected importers.LimitStatus
	}{
		{
			name:     "no subscription is free",
			count:    18,
			expected: importers.LimitStatus{Allowed: true, CurrentCount: 18, MaxAllowed: 20, Tier: "free"},
		},
		{
			name:     "free at ceiling",
			count:    20,
			expected: importers.LimitStatus{Allowed: false, CurrentCount: 20, MaxAllowed: 20, Tier: "free"},
		},
		{
			name:     "active pro",
			sub:      &entities.Subscription{Tier: entities.TierPro, Status: entities.SubscriptionActive},
			count:    20,
			expected: importers.LimitStatus{Allowed: true, CurrentCount: 20, MaxAllowed: 1000, Tier: "pro"},
		},
		{
			name:     "canceled falls back to free",
			sub:      &entities.Subscription{Tier: entities.TierPro, Status: entities.SubscriptionCanceled},
			count:    25,
			expected: importers.LimitStatus{Allowed: false, CurrentCount: 25, MaxAllowed: 20, Tier: "free"},
		},
		{
			name:     "expired falls back to free",
			sub:      &entities.Subscription{Tier: entities.TierBasic, Status: entities.SubscriptionActive, ExpiresAt: &expired},
			count:    1,
			expected: importers.LimitStatus{Allowed: true, CurrentCount: 1, MaxAllowed: 20, Tier: "free"},
		},
		{
			name:     "enterprise is unlimited",
			sub:      &entities.Subscription{Tier: entities.TierEnterprise, Status: entities.SubscriptionTrialing},
			count:    1_000_000,
			expected: importers.LimitStatus{Allowed: true, CurrentCount: 1_000_000, MaxAllowed: importers.Unlimited, Tier: "enterprise"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db := setupTestService(t, map[uint]int64{1: tt.count})
			if tt.sub != nil {
				tt.sub.UserID = 1
				require.NoError(t, db.Create(tt.sub).Error)
			}

			status, err := svc.ContactLimits(context.Background(), 1)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestService_SetTier(t *testing.T) {
	svc, _ := setupTestService(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.SetTier(ctx, 3, entities.TierBasic))
	tier, err := svc.Tier(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, entities.TierBasic, tier)

	require.NoError(t, svc.SetTier(ctx, 3, entities.TierPro))
	tier, err = svc.Tier(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, entities.TierPro, tier)

	err = svc.SetTier(ctx, 3, entities.Tier("platinum"))
	assert.ErrorIs(t, err, ErrUnknownTier)
}
