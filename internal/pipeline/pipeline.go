// Package pipeline runs one screener pass: fetch bars per symbol,
// derive indicators and signals, rank watchlists, and replace every
// destination table. Each run is a clean recomputation — no state
// survives between runs, and a run either refreshes all destinations
// with a fresh timestamp or leaves them untouched.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tw-screener/internal/indicator"
	"tw-screener/internal/logger"
	"tw-screener/internal/marketdata"
	"tw-screener/internal/markethours"
	"tw-screener/internal/metrics"
	"tw-screener/internal/model"
	"tw-screener/internal/notification"
	"tw-screener/internal/rank"
	"tw-screener/internal/refdata"
	"tw-screener/internal/signal"
	"tw-screener/internal/sink"
)

// Watchlist names one ranked destination table and its size.
type Watchlist struct {
	Destination string
	Size        int
}

// Destinations maps the run's outputs to named destination tables.
type Destinations struct {
	Universe   string
	Watchlists []Watchlist
}

// Runner wires the screener components for one run.
type Runner struct {
	Symbols []string
	Source  marketdata.Provider
	Engine  *indicator.Engine
	Signals signal.Config
	Ranking rank.Config

	Sinks []sink.Sink
	Dest  Destinations
	Ref   refdata.Lookup

	Notifier notification.Notifier
	Metrics  *metrics.Metrics
	Health   *metrics.HealthStatus
	Log      *slog.Logger

	// Fetch window for daily bars.
	Start time.Time
	End   time.Time

	// Politeness is the pause between per-symbol fetches, purely to
	// stay under upstream rate limits.
	Politeness time.Duration

	// Clock is injectable for tests; defaults to time.Now.
	Clock func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Clock != nil {
		return r.Clock()
	}
	return time.Now()
}

// Run executes one full screener pass. On success every destination
// carries the new tables and a shared freshness marker; on failure no
// destination is reported as refreshed.
func (r *Runner) Run(ctx context.Context) error {
	started := r.now()
	if logger.RunID(ctx) == "" {
		ctx = logger.WithRunID(ctx, logger.NewRunID("run", started))
	}

	err := r.run(ctx)

	if r.Metrics != nil {
		r.Metrics.RunDur.Observe(r.now().Sub(started).Seconds())
		r.Metrics.LastRunUnix.Set(float64(r.now().Unix()))
		if err == nil {
			r.Metrics.LastRunOK.Set(1)
		} else {
			r.Metrics.LastRunOK.Set(0)
		}
	}
	if r.Health != nil {
		r.Health.RecordRun(r.now(), len(r.Symbols), err)
	}
	if r.Notifier != nil && err != nil {
		r.Notifier.Send(ctx, notification.RunFailed(err))
	}
	return err
}

func (r *Runner) run(ctx context.Context) error {
	if len(r.Symbols) == 0 {
		return fmt.Errorf("pipeline: empty symbol list")
	}

	universe, fetched := r.accumulate(ctx)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if fetched == 0 {
		return fmt.Errorf("pipeline: no usable symbols out of %d", len(r.Symbols))
	}

	freshness := markethours.Stamp(r.now())
	if err := r.publish(ctx, universe, freshness); err != nil {
		return err
	}

	if r.Notifier != nil {
		r.Notifier.Send(ctx, notification.RunSucceeded(fetched, len(universe), freshness))
	}
	r.Log.Info("run completed", append(logger.WithRun(ctx),
		slog.Int("symbols", fetched),
		slog.Int("universe_rows", len(universe)))...)
	return nil
}

// accumulate fetches and classifies each symbol sequentially. Failures
// are isolated: a bad symbol is logged and skipped, the run continues.
func (r *Runner) accumulate(ctx context.Context) ([]model.SignalRow, int) {
	universe := make([]model.SignalRow, 0, len(r.Symbols)*64)
	fetched := 0

	for i, symbol := range r.Symbols {
		if ctx.Err() != nil {
			return universe, fetched
		}
		if i > 0 && r.Politeness > 0 {
			select {
			case <-ctx.Done():
				return universe, fetched
			case <-time.After(r.Politeness):
			}
		}

		rows, ok := r.processSymbol(ctx, symbol)
		if !ok {
			continue
		}
		universe = append(universe, rows...)
		fetched++
	}
	return universe, fetched
}

func (r *Runner) processSymbol(ctx context.Context, symbol string) ([]model.SignalRow, bool) {
	fetchStart := r.now()
	series, err := r.Source.DailyBars(ctx, symbol, r.Start, r.End)
	if r.Metrics != nil {
		r.Metrics.FetchDur.Observe(r.now().Sub(fetchStart).Seconds())
	}
	if err != nil {
		r.skip(ctx, symbol, "fetch_failed", err)
		return nil, false
	}
	if len(series) == 0 {
		r.skip(ctx, symbol, "no_data", nil)
		return nil, false
	}

	computeStart := r.now()
	indicatorRows, err := r.Engine.Compute(series)
	if err != nil {
		// Precondition violation — fatal for this symbol only.
		r.skip(ctx, symbol, "bad_series", err)
		return nil, false
	}

	name, category := "", ""
	if r.Ref != nil {
		name, category = r.Ref.Name(symbol), r.Ref.Category(symbol)
	}

	rows := make([]model.SignalRow, 0, len(indicatorRows))
	for _, row := range indicatorRows {
		s := signal.Classify(row, r.Signals)
		s.Name = name
		s.Category = category
		rows = append(rows, s)
	}

	if r.Metrics != nil {
		r.Metrics.ComputeDur.Observe(r.now().Sub(computeStart).Seconds())
		r.Metrics.SymbolsFetched.Inc()
		r.Metrics.BarsFetched.Add(float64(len(series)))
		r.Metrics.SignalRows.Add(float64(len(rows)))
	}
	r.Log.Info("symbol processed", append(logger.WithRun(ctx),
		slog.String("symbol", symbol),
		slog.Int("bars", len(series)))...)
	return rows, true
}

func (r *Runner) skip(ctx context.Context, symbol, reason string, err error) {
	attrs := append(logger.WithRun(ctx),
		slog.String("symbol", symbol),
		slog.String("reason", reason))
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	r.Log.Warn("symbol skipped", attrs...)
	if r.Metrics != nil {
		r.Metrics.SymbolsSkipped.WithLabelValues(reason).Inc()
	}
}

// publish replaces every destination on every sink. The first failure
// aborts: remaining destinations keep their previous content and the
// run does not count as refreshed.
func (r *Runner) publish(ctx context.Context, universe []model.SignalRow, freshness string) error {
	type out struct {
		dest  string
		table sink.Table
		size  int
	}

	outs := []out{{dest: r.Dest.Universe, table: UniverseTable(universe, r.Engine.Config())}}
	for _, wl := range r.Dest.Watchlists {
		entries := rank.Select(universe, wl.Size, r.Ranking)
		outs = append(outs, out{dest: wl.Destination, table: WatchlistTable(entries, r.Engine.Config()), size: len(entries)})
		if r.Metrics != nil {
			r.Metrics.WatchlistSize.WithLabelValues(wl.Destination).Set(float64(len(entries)))
		}
	}

	for _, s := range r.Sinks {
		for _, o := range outs {
			writeStart := r.now()
			err := s.ReplaceTable(ctx, o.dest, o.table, freshness)
			if r.Metrics != nil {
				r.Metrics.SinkWriteDur.WithLabelValues(o.dest).Observe(r.now().Sub(writeStart).Seconds())
			}
			if err != nil {
				return fmt.Errorf("pipeline: %w", err)
			}
			r.Log.Info("destination refreshed", append(logger.WithRun(ctx),
				slog.String("destination", o.dest),
				slog.Int("rows", len(o.table.Rows)))...)
		}
	}
	return nil
}
