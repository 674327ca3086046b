package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestDo_TransientRetriedUntilSuccess(t *testing.T) {
	p := Policy{MaxAttempts: 3}

	calls := 0
	err := p.Do(context.Background(), "write", func() error {
		calls++
		if calls < 3 {
			return Transient(errors.New("rate limited"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ExhaustionReturnsLastError(t *testing.T) {
	p := Policy{MaxAttempts: 3}

	calls := 0
	err := p.Do(context.Background(), "write", func() error {
		calls++
		return Transient(fmt.Errorf("unavailable %d", calls))
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if !IsTransient(err) {
		t.Error("exhaustion error should still unwrap to the transient cause")
	}
}

func TestDo_PermanentFailsFast(t *testing.T) {
	p := Policy{MaxAttempts: 5}

	calls := 0
	err := p.Do(context.Background(), "write", func() error {
		calls++
		return errors.New("bad credentials")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("permanent error retried: %d calls", calls)
	}
}

func TestDo_CancelledContextStopsRetries(t *testing.T) {
	p := Policy{MaxAttempts: 10}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := p.Do(ctx, "write", func() error {
		calls++
		return Transient(errors.New("unavailable"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestDo_OnRetryObservesAttempts(t *testing.T) {
	var seen []int
	p := Policy{
		MaxAttempts: 3,
		OnRetry:     func(attempt int, err error) { seen = append(seen, attempt) },
	}

	_ = p.Do(context.Background(), "fetch", func() error {
		return Transient(errors.New("flaky"))
	})
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", seen)
	}
}

func TestTransient_NilPassthrough(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) should stay nil")
	}
	if IsTransient(errors.New("plain")) {
		t.Error("plain error classified transient")
	}
	if !IsTransient(fmt.Errorf("wrapped: %w", Transient(errors.New("x")))) {
		t.Error("wrapped transient not detected")
	}
}
