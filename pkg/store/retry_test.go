package store

import (
	"errors"
	"testing"
	"time"
)

var fastRetry = retryConfig{maxRetries: 3, baseDelay: time.Millisecond, maxDelay: 2 * time.Millisecond}

func TestRetryOp_RecoversFromTransientError(t *testing.T) {
	calls := 0
	err := retryOp(fastRetry, func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryOp_GivesUp(t *testing.T) {
	calls := 0
	err := retryOp(fastRetry, func() error {
		calls++
		return errors.New("SQLITE_LOCKED")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != fastRetry.maxRetries+1 {
		t.Fatalf("expected %d calls, got %d", fastRetry.maxRetries+1, calls)
	}
}

func TestRetryOp_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	err := retryOp(fastRetry, func() error {
		calls++
		return errors.New("constraint failed")
	})
	if err == nil || calls != 1 {
		t.Fatalf("expected one failing call, got %d calls and err=%v", calls, err)
	}
}
