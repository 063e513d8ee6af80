package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/sunrise-events/sunrise/internal/tasks"
)

// HousekeepingSchedule is how often expired rate limit records and import
// locks are pruned.
const HousekeepingSchedule = "*/15 * * * *"

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRunTime returns the next activation of schedule after from.
func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// Enqueuer adds tasks to the background queue. tasks.Client implements it.
type Enqueuer interface {
	Enqueue(ctx context.Context, tasks ...backlite.Task) ([]string, error)
}

// MaintenanceConfig controls the maintenance scheduler.
type MaintenanceConfig struct {
	Schedule           string // cron expression for the daily audit cleanup
	AuditRetentionDays int
}

// Maintenance enqueues cleanup tasks on a cron schedule. The work itself runs
// in the task queue so a slow cleanup never blocks the scheduler.
type Maintenance struct {
	queue  Enqueuer
	config MaintenanceConfig

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewMaintenance creates a stopped maintenance scheduler.
func NewMaintenance(queue Enqueuer, cfg MaintenanceConfig) *Maintenance {
	return &Maintenance{
		queue:  queue,
		config: cfg,
		cron:   cron.New(cron.WithParser(parser)),
	}
}

// Start registers the jobs and starts the cron runner. It stops by itself
// when ctx is cancelled.
func (m *Maintenance) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(m.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", m.config.Schedule, err)
	}

	if _, err := m.cron.AddFunc(m.config.Schedule, func() { m.RunAuditCleanup(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	if _, err := m.cron.AddFunc(HousekeepingSchedule, func() { m.RunHousekeeping(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule housekeeping: %w", err)
	}

	m.cron.Start()
	m.isRunning = true

	next, _ := NextRunTime(m.config.Schedule, time.Now())
	log.Info().
		Str("schedule", m.config.Schedule).
		Time("next_run", next).
		Msg("maintenance scheduler started")

	go func() {
		<-ctx.Done()
		m.Stop()
	}()

	return nil
}

// Stop stops the cron runner and waits for a running job to return.
func (m *Maintenance) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isRunning {
		return
	}

	<-m.cron.Stop().Done()
	m.isRunning = false
	log.Info().Msg("maintenance scheduler stopped")
}

// IsRunning reports whether the scheduler is active.
func (m *Maintenance) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isRunning
}

// RunAuditCleanup enqueues an audit retention task.
func (m *Maintenance) RunAuditCleanup(ctx context.Context) {
	m.enqueue(ctx, tasks.CleanupAuditEventsTask{RetentionDays: m.config.AuditRetentionDays})
}

// RunHousekeeping enqueues the rate limit and import lock cleanups.
func (m *Maintenance) RunHousekeeping(ctx context.Context) {
	m.enqueue(ctx, tasks.CleanupRateLimitsTask{}, tasks.PurgeImportLocksTask{})
}

func (m *Maintenance) enqueue(ctx context.Context, jobs ...backlite.Task) {
	if _, err := m.queue.Enqueue(ctx, jobs...); err != nil {
		log.Error().Err(err).Int("tasks", len(jobs)).Msg("failed to enqueue maintenance tasks")
	}
}
