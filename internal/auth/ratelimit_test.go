package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunrise-events/sunrise/internal/database/ratelimits"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestRateLimiter(t *testing.T, maxAttempts int) (*RateLimiter, *fakeClock) {
	t.Helper()
	rl := NewRateLimiter(ratelimits.NewRepository(setupTestDB(t)), RateLimitConfig{
		MaxAttempts:     maxAttempts,
		WindowDuration:  15 * time.Minute,
		LockoutDuration: 30 * time.Minute,
	})
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	rl.now = clock.Now
	return rl, clock
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{})
	defaults := DefaultRateLimitConfig()

	assert.Equal(t, defaults.MaxAttempts, rl.maxAttempts)
	assert.Equal(t, defaults.WindowDuration, rl.windowDuration)
	assert.Equal(t, defaults.LockoutDuration, rl.lockoutDuration)
}

func TestRateLimiter_LocksOutAfterMaxAttempts(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _ := rl.Allow(ctx, "10.0.0.1", "alice")
		require.True(t, allowed, "attempt %d", i+1)
		locked, _ := rl.RecordFailure(ctx, "10.0.0.1", "alice")
		require.False(t, locked)
	}

	locked, retry := rl.RecordFailure(ctx, "10.0.0.1", "alice")
	assert.True(t, locked)
	assert.Equal(t, 30*time.Minute, retry)

	allowed, retry := rl.Allow(ctx, "10.0.0.1", "alice")
	assert.False(t, allowed)
	assert.Positive(t, retry)
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 2)
	ctx := context.Background()

	rl.RecordFailure(ctx, "10.0.0.1", "alice")
	rl.RecordFailure(ctx, "10.0.0.1", "alice")

	allowed, _ := rl.Allow(ctx, "10.0.0.1", "alice")
	assert.False(t, allowed)

	allowed, _ = rl.Allow(ctx, "10.0.0.1", "bob")
	assert.True(t, allowed)
	allowed, _ = rl.Allow(ctx, "10.0.0.2", "alice")
	assert.True(t, allowed)
}

func TestRateLimiter_SuccessClearsRecord(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 3)
	ctx := context.Background()

	rl.RecordFailure(ctx, "10.0.0.1", "alice")
	rl.RecordFailure(ctx, "10.0.0.1", "alice")
	rl.RecordSuccess(ctx, "10.0.0.1", "alice")

	// Two more failures stay under the limit again.
	rl.RecordFailure(ctx, "10.0.0.1", "alice")
	locked, _ := rl.RecordFailure(ctx, "10.0.0.1", "alice")
	assert.False(t, locked)
}

func TestRateLimiter_LockoutExpires(t *testing.T) {
	rl, clock := newTestRateLimiter(t, 1)
	ctx := context.Background()

	locked, _ := rl.RecordFailure(ctx, "10.0.0.1", "alice")
	require.True(t, locked)

	clock.Advance(31 * time.Minute)
	allowed, _ := rl.Allow(ctx, "10.0.0.1", "alice")
	assert.True(t, allowed)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl, clock := newTestRateLimiter(t, 5)
	ctx := context.Background()

	rl.RecordFailure(ctx, "10.0.0.1", "alice")
	clock.Advance(20 * time.Minute)
	rl.RecordFailure(ctx, "10.0.0.1", "bob")

	removed, err := rl.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	record, err := rl.store.Get(ctx, loginKey("10.0.0.1", "bob"))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 1, record.Count)
}
