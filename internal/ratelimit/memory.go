package ratelimit

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	n       int
	resetAt time.Time
}

// MemoryLimiter keeps limiter state in process. Suitable for a single
// instance and for tests.
type MemoryLimiter struct {
	policy Policy
	now    func() time.Time

	mu      sync.Mutex
	last    map[string]time.Time
	counts  map[string]counter
	blocked map[string]time.Time
}

func NewMemoryLimiter(p Policy) *MemoryLimiter {
	return &MemoryLimiter{
		policy:  p,
		now:     time.Now,
		last:    make(map[string]time.Time),
		counts:  make(map[string]counter),
		blocked: make(map[string]time.Time),
	}
}

func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if until, ok := l.blocked[key]; ok {
		if now.Before(until) {
			return &LimitError{RetryAfter: until.Sub(now), Blocked: true}
		}
		delete(l.blocked, key)
	}

	if last, ok := l.last[key]; ok && now.Sub(last) < l.policy.Cooldown {
		return &LimitError{RetryAfter: l.policy.Cooldown - now.Sub(last)}
	}

	c := l.counts[key]
	if !now.Before(c.resetAt) {
		c = counter{resetAt: now.Add(l.policy.Window)}
	}
	c.n++
	l.counts[key] = c

	if l.policy.Max > 0 && c.n > l.policy.Max {
		block := l.policy.blockFor()
		l.blocked[key] = now.Add(block)
		return &LimitError{RetryAfter: block, Blocked: true}
	}

	l.last[key] = now
	return nil
}

// Prune drops state that can no longer affect a decision.
func (l *MemoryLimiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, t := range l.last {
		if now.Sub(t) >= l.policy.Cooldown {
			delete(l.last, k)
		}
	}
	for k, c := range l.counts {
		if !now.Before(c.resetAt) {
			delete(l.counts, k)
		}
	}
	for k, until := range l.blocked {
		if !now.Before(until) {
			delete(l.blocked, k)
		}
	}
}
