package storage

import (
	"context"
	"errors"
	"time"
)

// Connection checks against network backends are retried with exponential
// backoff so a server that is still starting up does not fail the editor.
var (
	pingAttempts = 3
	pingDelay    = 250 * time.Millisecond
)

// transientError marks a failure worth another attempt.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// transient wraps err so that retry attempts the operation again.
func transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// retry runs fn up to attempts times, doubling delay after each failure.
// Only errors wrapped with transient are retried; others are returned
// immediately. The last error is returned unwrapped, or ctx.Err() if ctx is
// cancelled while waiting.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		var t *transientError
		if !errors.As(err, &t) {
			return err
		}
		lastErr = t.err

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

// ping checks a backend with the package retry policy.
func ping(ctx context.Context, fn func(context.Context) error) error {
	return retry(ctx, pingAttempts, pingDelay, func() error {
		return transient(fn(ctx))
	})
}
