// Package ratelimit throttles the flows that email a verification code.
// A key may be used once per cooldown and at most Max times per window;
// exceeding Max blocks the key for three windows.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

type Limiter interface {
	// Allow records an attempt for key or returns a *LimitError.
	Allow(ctx context.Context, key string) error
}

type Policy struct {
	Cooldown time.Duration
	Window   time.Duration
	Max      int
}

// Enabled reports whether the policy can ever refuse an attempt.
func (p Policy) Enabled() bool {
	return p.Cooldown > 0 || p.Max > 0
}

func (p Policy) blockFor() time.Duration {
	return p.Window * 3
}

type LimitError struct {
	RetryAfter time.Duration
	Blocked    bool
}

func (e *LimitError) Error() string {
	secs := int(e.RetryAfter.Round(time.Second).Seconds())
	if e.Blocked {
		return fmt.Sprintf("too many requests; try again after %d seconds", secs)
	}
	return fmt.Sprintf("please wait %d seconds before requesting another code", secs)
}

// Key builds the limiter key for one address and purpose.
func Key(email, purpose string) string {
	return purpose + ":" + email
}
