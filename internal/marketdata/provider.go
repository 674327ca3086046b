// Package marketdata fetches daily OHLCV bars from external providers.
//
// Providers return bars in ascending date order and signal "no data"
// with an empty result — an unlisted or delisted symbol is not an
// error. Transient HTTP failures are marked via retry.Transient so the
// fallback chain can retry them.
package marketdata

import (
	"context"
	"time"

	"tw-screener/internal/model"
)

// Provider is one upstream source of daily bars.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string

	// DailyBars returns the symbol's daily bars within [start, end],
	// oldest first. An empty slice means the provider has no data for
	// the symbol.
	DailyBars(ctx context.Context, symbol string, start, end time.Time) (model.Series, error)
}
