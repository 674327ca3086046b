package marketdata

import (
	"context"
	"log/slog"
	"time"

	"tw-screener/internal/model"
	"tw-screener/internal/retry"
)

// Chain tries providers in order until one yields bars. Each provider
// gets the bounded retry policy for transient failures; a provider
// with no data for the symbol (empty result) falls through to the next.
type Chain struct {
	providers []Provider
	policy    retry.Policy
	log       *slog.Logger
}

// NewChain builds a fallback chain over the given providers.
func NewChain(log *slog.Logger, policy retry.Policy, providers ...Provider) *Chain {
	return &Chain{providers: providers, policy: policy, log: log}
}

func (c *Chain) Name() string { return "chain" }

// DailyBars returns the first non-empty result. All providers failing
// returns the last error; all providers empty returns an empty series
// (the symbol genuinely has no data anywhere).
func (c *Chain) DailyBars(ctx context.Context, symbol string, start, end time.Time) (model.Series, error) {
	var lastErr error
	for _, p := range c.providers {
		var series model.Series
		err := c.policy.Do(ctx, p.Name()+" "+symbol, func() error {
			var fetchErr error
			series, fetchErr = p.DailyBars(ctx, symbol, start, end)
			return fetchErr
		})
		if err != nil {
			c.log.Warn("provider failed, falling back",
				slog.String("provider", p.Name()),
				slog.String("symbol", symbol),
				slog.String("error", err.Error()))
			lastErr = err
			continue
		}
		if len(series) == 0 {
			c.log.Debug("provider has no data",
				slog.String("provider", p.Name()),
				slog.String("symbol", symbol))
			continue
		}
		return series, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return model.Series{}, nil
}
