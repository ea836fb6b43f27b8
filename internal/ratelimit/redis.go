package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "teklip:code_rate:"

// RedisLimiter shares limiter state between instances.
type RedisLimiter struct {
	rdb    redis.UniversalClient
	policy Policy
}

func NewRedisLimiter(rdb redis.UniversalClient, p Policy) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, policy: p}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) error {
	blockKey := keyPrefix + "block:" + key
	lastKey := keyPrefix + "last:" + key
	countKey := keyPrefix + "count:" + key

	if ttl, err := l.rdb.PTTL(ctx, blockKey).Result(); err != nil {
		return fmt.Errorf("rate block ttl: %w", err)
	} else if ttl > 0 {
		return &LimitError{RetryAfter: ttl, Blocked: true}
	}

	if ttl, err := l.rdb.PTTL(ctx, lastKey).Result(); err != nil {
		return fmt.Errorf("rate cooldown ttl: %w", err)
	} else if ttl > 0 {
		return &LimitError{RetryAfter: ttl}
	}

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, countKey)
	pipe.ExpireNX(ctx, countKey, l.policy.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rate count: %w", err)
	}

	if l.policy.Max > 0 && int(incr.Val()) > l.policy.Max {
		block := l.policy.blockFor()
		if err := l.rdb.Set(ctx, blockKey, "1", block).Err(); err != nil {
			return fmt.Errorf("rate block: %w", err)
		}
		return &LimitError{RetryAfter: block, Blocked: true}
	}

	if l.policy.Cooldown > 0 {
		if err := l.rdb.Set(ctx, lastKey, "1", l.policy.Cooldown).Err(); err != nil {
			return fmt.Errorf("rate cooldown: %w", err)
		}
	}
	return nil
}

// Reset clears all limiter state for key.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.rdb.Del(ctx,
		keyPrefix+"block:"+key,
		keyPrefix+"last:"+key,
		keyPrefix+"count:"+key,
	).Err()
}

var _ Limiter = (*RedisLimiter)(nil)
var _ Limiter = (*MemoryLimiter)(nil)
