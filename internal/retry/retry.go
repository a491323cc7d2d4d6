package retry

import (
	"context"
	"time"
)

// Policy is a bounded-retry policy shared by the upstream call sites: a fixed
// attempt budget, a per-error delay schedule, and a predicate deciding which
// errors are worth another attempt. Zero-value helpers are filled in by Do so
// a literal Policy{MaxAttempts: 3} works.
type Policy struct {
	MaxAttempts int
	// Delay returns how long to pause before the next attempt. attempt is
	// 1-based and names the attempt that just failed.
	Delay func(err error, attempt int) time.Duration
	// Retryable reports whether err should consume another attempt. When nil,
	// every error is retryable.
	Retryable func(err error) bool
	// Sleep is swappable for tests. Defaults to a context-aware wait.
	Sleep func(ctx context.Context, d time.Duration)
}

// Do runs fn up to MaxAttempts times and returns the last error. A
// non-retryable error is returned immediately without consuming the budget.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = wait
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		if p.Delay != nil {
			if d := p.Delay(err, attempt); d > 0 {
				sleep(ctx, d)
			}
		}
	}
	return err
}

func wait(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
