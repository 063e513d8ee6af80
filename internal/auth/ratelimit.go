package auth

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sunrise-events/sunrise/internal/entities"
)

// RateLimitStore persists attempt records. database/ratelimits implements it.
type RateLimitStore interface {
	Get(ctx context.Context, key string) (*entities.RateLimitRecord, error)
	Save(ctx context.Context, record *entities.RateLimitRecord) error
	Delete(ctx context.Context, key string) error
	DeleteExpired(ctx context.Context, windowStart, now time.Time) (int64, error)
}

// RateLimiter limits login attempts per client IP and username using a
// fixed window. State lives in a RateLimitStore rather than process memory.
type RateLimiter struct {
	store           RateLimitStore
	maxAttempts     int
	windowDuration  time.Duration
	lockoutDuration time.Duration
	now             func() time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxAttempts     int           // Maximum attempts before lockout (default: 5)
	WindowDuration  time.Duration // Time window for counting attempts (default: 15m)
	LockoutDuration time.Duration // How long to lock out after max attempts (default: 30m)
}

// DefaultRateLimitConfig returns the default limits.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     5,
		WindowDuration:  15 * time.Minute,
		LockoutDuration: 30 * time.Minute,
	}
}

// NewRateLimiter creates a rate limiter backed by store.
func NewRateLimiter(store RateLimitStore, cfg RateLimitConfig) *RateLimiter {
	defaults := DefaultRateLimitConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = defaults.WindowDuration
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = defaults.LockoutDuration
	}

	return &RateLimiter{
		store:           store,
		maxAttempts:     cfg.MaxAttempts,
		windowDuration:  cfg.WindowDuration,
		lockoutDuration: cfg.LockoutDuration,
		now:             time.Now,
	}
}

func loginKey(ip, username string) string {
	return "login:" + ip + ":" + username
}

// Allow checks if a login attempt should be allowed. When it is not,
// retryAfter says how long the caller has to wait. Store failures allow the
// attempt; the account lockout in Service still applies.
func (rl *RateLimiter) Allow(ctx context.Context, ip, username string) (bool, time.Duration) {
	record, err := rl.store.Get(ctx, loginKey(ip, username))
	if err != nil {
		log.Warn().Err(err).Str("ip", ip).Msg("rate limit lookup failed, allowing attempt")
		return true, 0
	}
	if record == nil {
		return true, 0
	}

	now := rl.now()
	if now.Before(record.LockedUntil) {
		return false, record.LockedUntil.Sub(now)
	}
	if now.Sub(record.FirstAttempt) > rl.windowDuration {
		return true, 0
	}
	if record.Count < rl.maxAttempts {
		return true, 0
	}

	return false, rl.lockoutDuration
}

// RecordFailure records a failed login attempt and reports whether the key
// is now locked out.
func (rl *RateLimiter) RecordFailure(ctx context.Context, ip, username string) (bool, time.Duration) {
	key := loginKey(ip, username)
	now := rl.now()

	record, err := rl.store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("ip", ip).Msg("rate limit lookup failed")
		return false, 0
	}
	if record == nil || now.Sub(record.FirstAttempt) > rl.windowDuration {
		record = &entities.RateLimitRecord{Key: key, FirstAttempt: now}
	}

	record.Count++
	locked := record.Count >= rl.maxAttempts
	if locked {
		record.LockedUntil = now.Add(rl.lockoutDuration)
	}

	if err := rl.store.Save(ctx, record); err != nil {
		log.Warn().Err(err).Str("ip", ip).Msg("failed to persist rate limit record")
	}

	if locked {
		return true, rl.lockoutDuration
	}
	return false, 0
}

// RecordSuccess clears the failure record for a successful login.
func (rl *RateLimiter) RecordSuccess(ctx context.Context, ip, username string) {
	if err := rl.store.Delete(ctx, loginKey(ip, username)); err != nil {
		log.Warn().Err(err).Str("ip", ip).Msg("failed to clear rate limit record")
	}
}

// Cleanup removes records whose window and lockout have both passed.
func (rl *RateLimiter) Cleanup(ctx context.Context) (int64, error) {
	now := rl.now()
	return rl.store.DeleteExpired(ctx, now.Add(-rl.windowDuration), now)
}
