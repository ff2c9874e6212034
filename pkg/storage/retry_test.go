package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return transient(errors.New("connection refused"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retry() error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("bad credentials")
	calls := 0
	err := retry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("err = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryReturnsLastErrorUnwrapped(t *testing.T) {
	last := errors.New("timeout")
	err := retry(context.Background(), 2, time.Millisecond, func() error {
		return transient(last)
	})
	if err != last {
		t.Errorf("err = %#v, want the cause itself", err)
	}
}

func TestRetryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retry(ctx, 3, time.Hour, func() error {
		return transient(errors.New("down"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestPingUsesPolicy(t *testing.T) {
	oldAttempts, oldDelay := pingAttempts, pingDelay
	pingAttempts, pingDelay = 2, time.Millisecond
	defer func() { pingAttempts, pingDelay = oldAttempts, oldDelay }()

	calls := 0
	err := ping(context.Background(), func(context.Context) error {
		calls++
		return errors.New("down")
	})
	if err == nil || calls != 2 {
		t.Errorf("ping() = %v after %d calls, want an error after 2", err, calls)
	}
}
