package logger

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestInit(t *testing.T) {
	logger := Init("test-service", slog.LevelInfo)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestRunID_RoundTrip(t *testing.T) {
	ctx := context.Background()

	// No run ID set
	if id := RunID(ctx); id != "" {
		t.Errorf("expected empty run id, got %q", id)
	}

	// Set and retrieve
	ctx = WithRunID(ctx, "dev-123")
	if id := RunID(ctx); id != "dev-123" {
		t.Errorf("expected 'dev-123', got %q", id)
	}
}

func TestNewRunID(t *testing.T) {
	ts := time.Date(2026, 3, 2, 10, 30, 0, 123456789, time.UTC)
	id := NewRunID("prod", ts)

	if id == "" {
		t.Fatal("expected non-empty run id")
	}
	if !strings.HasPrefix(id, "prod-") {
		t.Errorf("expected run id to start with 'prod-', got %s", id)
	}
	if !strings.Contains(id, "123456789") {
		t.Errorf("expected run id to contain nanoseconds, got %s", id)
	}
}

func TestWithRun(t *testing.T) {
	ctx := context.Background()

	// No run ID
	attrs := WithRun(ctx)
	if attrs != nil {
		t.Errorf("expected nil attrs when no run id, got %v", attrs)
	}

	ctx = WithRunID(ctx, "abc-123")
	attrs = WithRun(ctx)
	if len(attrs) == 0 {
		t.Fatal("expected non-empty attrs with run id set")
	}
}
