package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRetryPolicyRetriesUnavailable(t *testing.T) {
	calls := 0
	retried := []int{}
	policy := RetryPolicy{
		Attempts: 3,
		Backoff:  time.Millisecond,
		OnRetry:  func(attempt int, _ error) { retried = append(retried, attempt) },
	}

	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("get: %w", ErrUnavailable)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(retried) != 2 {
		t.Fatalf("expected 2 retry callbacks, got %v", retried)
	}
}

func TestRetryPolicyGivesUpAfterAttempts(t *testing.T) {
	calls := 0
	err := RetryPolicy{Attempts: 3, Backoff: time.Millisecond}.Do(context.Background(), func(context.Context) error {
		calls++
		return ErrUnavailable
	})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryPolicySkipsOtherErrors(t *testing.T) {
	for _, target := range []error{ErrNotFound, ErrPermission, errors.New("boom")} {
		calls := 0
		err := DefaultRetry.Do(context.Background(), func(context.Context) error {
			calls++
			return target
		})
		if !errors.Is(err, target) {
			t.Fatalf("expected %v, got %v", target, err)
		}
		if calls != 1 {
			t.Fatalf("%v should not be retried, got %d calls", target, calls)
		}
	}
}

func TestRetryPolicyStopsOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryPolicy{Attempts: 3, Backoff: time.Hour}.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return ErrUnavailable
	})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call before cancellation, got %d", calls)
	}
}
