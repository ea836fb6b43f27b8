package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestMemoryLimiterCooldown(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(Policy{Cooldown: time.Minute, Window: time.Hour, Max: 5}).WithClock(clk.now)
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "k"))

	clk.advance(20 * time.Second)
	err := l.Allow(ctx, "k")
	var le *LimitError
	require.ErrorAs(t, err, &le)
	assert.False(t, le.Blocked)
	assert.Equal(t, 40*time.Second, le.RetryAfter)

	// other keys are independent
	require.NoError(t, l.Allow(ctx, "other"))

	clk.advance(40 * time.Second)
	assert.NoError(t, l.Allow(ctx, "k"))
}

func TestMemoryLimiterWindowBlock(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(Policy{Cooldown: time.Second, Window: time.Hour, Max: 3}).WithClock(clk.now)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Allow(ctx, "k"), "attempt %d", i)
		clk.advance(2 * time.Second)
	}

	err := l.Allow(ctx, "k")
	var le *LimitError
	require.ErrorAs(t, err, &le)
	assert.True(t, le.Blocked)
	assert.Equal(t, 3*time.Hour, le.RetryAfter)

	clk.advance(2 * time.Hour)
	require.ErrorAs(t, l.Allow(ctx, "k"), &le)
	assert.True(t, le.Blocked)

	clk.advance(time.Hour)
	assert.NoError(t, l.Allow(ctx, "k"))
}

func TestMemoryLimiterPrune(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(Policy{Cooldown: time.Minute, Window: time.Hour, Max: 5}).WithClock(clk.now)

	require.NoError(t, l.Allow(context.Background(), "k"))
	clk.advance(2 * time.Hour)
	l.Prune()

	assert.Empty(t, l.last)
	assert.Empty(t, l.counts)
}

func TestZeroPolicyNeverRefuses(t *testing.T) {
	var p Policy
	assert.False(t, p.Enabled())
	assert.True(t, Policy{Cooldown: time.Second}.Enabled())
	assert.True(t, Policy{Window: time.Hour, Max: 1}.Enabled())
	assert.False(t, Policy{Window: time.Hour}.Enabled())

	l := NewMemoryLimiter(p)
	for i := 0; i < 20; i++ {
		require.NoError(t, l.Allow(context.Background(), "k"))
	}
}

func TestLimitErrorMessage(t *testing.T) {
	assert.Equal(t, "please wait 30 seconds before requesting another code", (&LimitError{RetryAfter: 30 * time.Second}).Error())
	assert.Equal(t, "too many requests; try again after 60 seconds", (&LimitError{RetryAfter: time.Minute, Blocked: true}).Error())
	assert.Equal(t, "password_reset:a@b.com", Key("a@b.com", "password_reset"))
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping redis limiter tests")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	l := NewRedisLimiter(rdb, Policy{Cooldown: time.Minute, Window: time.Hour, Max: 1})
	key := Key("redis-test@b.com", "email_verification")
	require.NoError(t, l.Reset(ctx, key))
	t.Cleanup(func() { _ = l.Reset(ctx, key) })

	require.NoError(t, l.Allow(ctx, key))

	var le *LimitError
	require.ErrorAs(t, l.Allow(ctx, key), &le)
	assert.False(t, le.Blocked)
	assert.Greater(t, le.RetryAfter, time.Duration(0))

	require.NoError(t, rdb.Del(ctx, keyPrefix+"last:"+key).Err())
	require.ErrorAs(t, l.Allow(ctx, key), &le)
	assert.True(t, le.Blocked)
}
