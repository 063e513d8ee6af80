package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
)

// ImportLockPurger removes import locks left behind by crashed imports.
type ImportLockPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// PurgeImportLocksTask deletes expired per-user import locks. Acquire takes
// over an expired lock anyway; this keeps the table small.
type PurgeImportLocksTask struct{}

func (t PurgeImportLocksTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "purge_import_locks",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration:   time.Hour,
			OnlyFailed: true,
		},
	}
}

func PurgeImportLocksProcessor(purger ImportLockPurger) backlite.QueueProcessor[PurgeImportLocksTask] {
	return func(ctx context.Context, _ PurgeImportLocksTask) error {
		if purger == nil {
			return errors.New("import lock purger not configured")
		}

		purged, err := purger.PurgeExpired(ctx)
		if err != nil {
			return fmt.Errorf("purge import locks: %w", err)
		}
		if purged > 0 {
			log.Info().Int64("purged", purged).Msg("purged expired import locks")
		}
		return nil
	}
}

func NewPurgeImportLocksQueue(purger ImportLockPurger) backlite.Queue {
	return backlite.NewQueue(PurgeImportLocksProcessor(purger))
}
