package store

import (
	"context"
	"time"
)

// RetryPolicy retries operations that fail with a connectivity error.
// Any other error is returned immediately.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
	// OnRetry is called before each wait with the attempt that just failed.
	OnRetry func(attempt int, err error)
}

// DefaultRetry 三次尝试，每次间隔 2 秒
var DefaultRetry = RetryPolicy{Attempts: 3, Backoff: 2 * time.Second}

// NoRetry runs the operation once.
var NoRetry = RetryPolicy{Attempts: 1}

// Do runs fn until it succeeds, fails with a non-connectivity error, the
// attempts are exhausted, or ctx is done.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil || !IsUnavailable(err) || attempt == attempts {
			return err
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}

		timer := time.NewTimer(p.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}
