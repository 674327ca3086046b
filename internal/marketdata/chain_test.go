package marketdata

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"tw-screener/internal/model"
	"tw-screener/internal/retry"
)

type stubProvider struct {
	name   string
	series model.Series
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) DailyBars(ctx context.Context, symbol string, start, end time.Time) (model.Series, error) {
	s.calls++
	return s.series, s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func someBars(symbol string, n int) model.Series {
	base := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	s := make(model.Series, 0, n)
	for i := 0; i < n; i++ {
		s = append(s, model.Bar{Symbol: symbol, Date: base.AddDate(0, 0, i), Close: 100, Volume: 1})
	}
	return s
}

func TestChain_FirstProviderWins(t *testing.T) {
	primary := &stubProvider{name: "a", series: someBars("X", 3)}
	backup := &stubProvider{name: "b", series: someBars("X", 9)}
	chain := NewChain(quietLogger(), retry.Policy{MaxAttempts: 1}, primary, backup)

	series, err := chain.DailyBars(context.Background(), "X", testStart, testEnd)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 3 {
		t.Errorf("expected primary's 3 bars, got %d", len(series))
	}
	if backup.calls != 0 {
		t.Error("backup consulted although primary succeeded")
	}
}

func TestChain_FallsBackOnFailure(t *testing.T) {
	primary := &stubProvider{name: "a", err: retry.Transient(errors.New("down"))}
	backup := &stubProvider{name: "b", series: someBars("X", 2)}
	chain := NewChain(quietLogger(), retry.Policy{MaxAttempts: 2}, primary, backup)

	series, err := chain.DailyBars(context.Background(), "X", testStart, testEnd)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 2 {
		t.Errorf("expected backup bars, got %d", len(series))
	}
	// Transient primary failure was retried before falling back.
	if primary.calls != 2 {
		t.Errorf("primary calls = %d, want 2", primary.calls)
	}
}

func TestChain_FallsBackOnNoData(t *testing.T) {
	primary := &stubProvider{name: "a", series: model.Series{}}
	backup := &stubProvider{name: "b", series: someBars("X", 1)}
	chain := NewChain(quietLogger(), retry.Policy{MaxAttempts: 1}, primary, backup)

	series, err := chain.DailyBars(context.Background(), "X", testStart, testEnd)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 1 {
		t.Errorf("expected backup bars when primary is empty, got %d", len(series))
	}
}

func TestChain_AllEmptyMeansNoData(t *testing.T) {
	chain := NewChain(quietLogger(), retry.Policy{MaxAttempts: 1},
		&stubProvider{name: "a", series: model.Series{}},
		&stubProvider{name: "b", series: model.Series{}},
	)

	series, err := chain.DailyBars(context.Background(), "X", testStart, testEnd)
	if err != nil {
		t.Fatalf("all-empty must not be an error: %v", err)
	}
	if len(series) != 0 {
		t.Errorf("expected no data, got %d bars", len(series))
	}
}

func TestChain_AllFailedReturnsLastError(t *testing.T) {
	chain := NewChain(quietLogger(), retry.Policy{MaxAttempts: 1},
		&stubProvider{name: "a", err: retry.Transient(errors.New("down"))},
		&stubProvider{name: "b", err: errors.New("bad key")},
	)

	if _, err := chain.DailyBars(context.Background(), "X", testStart, testEnd); err == nil {
		t.Fatal("expected error when every provider fails")
	}
}
