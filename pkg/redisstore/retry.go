package redisstore

import (
	"context"
	"time"
)

const retryBackoff = 50 * time.Millisecond

// retry runs fn up to attempts times with linearly growing backoff. Status
// writes ride on probe goroutines, so attempts stays small and the context
// deadline always wins.
func retry(ctx context.Context, attempts int, fn func() error) error {
	var lastErr error
	for attempt := 1; ; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt >= attempts {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
}
