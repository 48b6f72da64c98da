package logsapi

import (
	"context"
	"fmt"
	"time"
)

// ErrRateLimited is returned when a capped backoff runs out of attempts
// while the service keeps answering 429. With the default unbounded
// policy it is never returned.
var ErrRateLimited = fmt.Errorf("rate limited by the logging service")

// RetryPolicy is the resilience contract shared by both remote calls.
//
// Transient conditions (transport failure, malformed body, 404) get one
// retry after Cooldown. A 429 enters exponential backoff: the n-th
// attempt waits BackoffBase * 2^n, with no attempt cap unless
// MaxAttempts is set. Setting a cap trades completeness of a long run
// for a guaranteed stop when the service never recovers.
type RetryPolicy struct {
	Cooldown    time.Duration
	BackoffBase time.Duration
	// MaxAttempts bounds the 429 backoff loop. 0 means retry forever.
	MaxAttempts int
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Cooldown:    35 * time.Second,
		BackoffBase: time.Second,
	}
}

// backoffWait is the wait before re-issuing attempt n (0-indexed). The
// exponent is clamped so an unbounded run of 429s can't shift the wait
// into overflow and degrade the backoff into immediate retries.
func (p RetryPolicy) backoffWait(attempt int) time.Duration {
	const maxShift = 20
	if attempt > maxShift {
		attempt = maxShift
	}
	return p.BackoffBase << uint(attempt)
}

// BackoffObserver receives one call per backoff attempt so an operator
// can tell "working slowly" from "stuck". Attempt is 0-indexed; total is
// the cumulative wait including this attempt.
type BackoffObserver func(attempt int, wait, total time.Duration)

// sleeper blocks for d or until ctx is done. Swapped out in tests.
type sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
