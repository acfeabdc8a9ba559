package clipboard

import (
	"context"
	"errors"
	"time"
)

// Retry defaults for dialing a remote clipboard.
const (
	DefaultDialAttempts = 3
	DefaultRetryDelay   = 200 * time.Millisecond
)

// retry runs fn up to attempts times, doubling delay after each failure.
// Context errors from fn are returned immediately. It returns the last
// error if every attempt fails, or ctx.Err() if ctx ends while waiting.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
