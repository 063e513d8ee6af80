package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
)

// RateLimitCleaner prunes login attempt records whose window and lockout
// have both passed. auth.RateLimiter implements it.
type RateLimitCleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

type CleanupRateLimitsTask struct{}

func (t CleanupRateLimitsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_rate_limits",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   time.Hour,
			OnlyFailed: true,
		},
	}
}

func CleanupRateLimitsProcessor(cleaner RateLimitCleaner) backlite.QueueProcessor[CleanupRateLimitsTask] {
	return func(ctx context.Context, _ CleanupRateLimitsTask) error {
		if cleaner == nil {
			return errors.New("rate limit cleaner not configured")
		}

		deleted, err := cleaner.Cleanup(ctx)
		if err != nil {
			return fmt.Errorf("cleanup rate limits: %w", err)
		}

		log.Debug().Int64("deleted", deleted).Msg("cleaned up rate limit records")
		return nil
	}
}

func NewCleanupRateLimitsQueue(cleaner RateLimitCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupRateLimitsProcessor(cleaner))
}
