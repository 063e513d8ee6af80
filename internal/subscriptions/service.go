// Package subscriptions resolves a user's plan and the contact allowance that
// comes with it.
package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sunrise-events/sunrise/internal/config"
	"github.com/sunrise-events/sunrise/internal/database/subscriptions"
	"github.com/sunrise-events/sunrise/internal/entities"
	"github.com/sunrise-events/sunrise/internal/importers"
)

var ErrUnknownTier = errors.New("unknown subscription tier")

// ContactCounter counts the contacts a user owns.
type ContactCounter interface {
	CountForUser(ctx context.Context, userID uint) (int64, error)
}

type Service struct {
	repo     *subscriptions.Repository
	contacts ContactCounter
	plans    config.Plans
	now      func() time.Time
}

func NewService(repo *subscriptions.Repository, contacts ContactCounter, plans config.Plans) *Service {
	return &Service{repo: repo, contacts: contacts, plans: plans, now: time.Now}
}

// Tier returns the tier currently granted to userID. Users without a
// subscription, or whose subscription lapsed, are on the free tier.
func (s *Service) Tier(ctx context.Context, userID uint) (entities.Tier, error) {
	sub, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, subscriptions.ErrNotFound) {
		return entities.TierFree, nil
	}
	if err != nil {
		return "", err
	}
	if !sub.IsActive(s.now()) || !entities.ValidTier(sub.Tier) {
		return entities.TierFree, nil
	}
	return sub.Tier, nil
}

// MaxContacts is the contact ceiling of tier; importers.Unlimited for none.
func (s *Service) MaxContacts(tier entities.Tier) int {
	switch tier {
	case entities.TierBasic:
		return s.plans.BasicMaxContacts
	case entities.TierPro:
		return s.plans.ProMaxContacts
	case entities.TierEnterprise:
		return s.plans.EnterpriseMaxContacts
	default:
		return s.plans.FreeMaxContacts
	}
}

// ContactLimits implements importers.LimitChecker.
func (s *Service) ContactLimits(ctx context.Context, userID uint) (importers.LimitStatus, error) {
	tier, err := s.Tier(ctx, userID)
	if err != nil {
		return importers.LimitStatus{}, fmt.Errorf("failed to resolve tier: %w", err)
	}

	count, err := s.contacts.CountForUser(ctx, userID)
	if err != nil {
		return importers.LimitStatus{}, fmt.Errorf("failed to count contacts: %w", err)
	}

	maxAllowed := s.MaxContacts(tier)
	return importers.LimitStatus{
		Allowed:      maxAllowed == importers.Unlimited || int(count) < maxAllowed,
		CurrentCount: int(count),
		MaxAllowed:   maxAllowed,
		Tier:         string(tier),
	}, nil
}

// SetTier moves userID onto tier with an active status.
func (s *Service) SetTier(ctx context.Context, userID uint, tier entities.Tier) error {
	if !entities.ValidTier(tier) {
		return fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	return s.repo.Upsert(ctx, &entities.Subscription{
		UserID: userID,
		Tier:   tier,
		Status: entities.SubscriptionActive,
	})
}
