package retry

import (
	"context"
	"time"

	ai "github.com/spetersoncode/tablebridge"
)

// effectiveDelay prefers the server's Retry-After when it is longer.
func effectiveDelay(configured time.Duration, err error) time.Duration {
	if server := ai.RetryAfterOf(err); server > configured {
		return server
	}
	return configured
}

// Do calls fn until it succeeds, fails with a non-transient error, or runs
// out of attempts. Backoff waits stop early when ctx is done.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	n := cfg.attempts()
	for attempt := 0; attempt < n; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return zero, err
		}
		if attempt == n-1 {
			break
		}
		if err := wait(ctx, cfg, attempt, err); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

// DoStream retries opening a stream. Chunks are never replayed.
func DoStream[T any](ctx context.Context, cfg Config, fn func() (<-chan T, error)) (<-chan T, error) {
	return Do(ctx, cfg, fn)
}

func wait(ctx context.Context, cfg Config, attempt int, cause error) error {
	delay := effectiveDelay(cfg.Delay(attempt), cause)
	if cfg.OnRetry != nil {
		cfg.OnRetry(attempt+1, delay, cause)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
