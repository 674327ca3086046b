// Package signal classifies the latest indicator row of a symbol into
// trend and entry/exit labels. Classification is a pure function of a
// single row — no state, no I/O, nothing remembered from prior days.
package signal

import (
	"tw-screener/internal/model"
)

// Config tunes the classification thresholds.
type Config struct {
	FastWindow int // short-trend fast SMA, e.g. 20
	SlowWindow int // short-trend slow / long-trend fast SMA, e.g. 50
	LongWindow int // long-trend slow SMA, e.g. 200

	Oversold   float64 // RSI buy threshold, e.g. 30
	Overbought float64 // RSI sell threshold, e.g. 70

	// TrendTolerance is the relative band for SMA comparisons: the fast
	// SMA must clear the slow one by this fraction before a trend is
	// called. 0 means exact compare.
	TrendTolerance float64
}

// DefaultConfig returns the standard thresholds: SMA 20/50/200 trends,
// RSI 30/70, exact trend compare.
func DefaultConfig() Config {
	return Config{
		FastWindow: 20,
		SlowWindow: 50,
		LongWindow: 200,
		Oversold:   30,
		Overbought: 70,
	}
}

// Classify maps one indicator row to its signal labels.
func Classify(row model.IndicatorRow, cfg Config) model.SignalRow {
	out := model.SignalRow{IndicatorRow: row}

	out.ShortTrend = trend(row.SMAValue(cfg.FastWindow), row.SMAValue(cfg.SlowWindow), cfg.TrendTolerance)
	out.LongTrend = trend(row.SMAValue(cfg.SlowWindow), row.SMAValue(cfg.LongWindow), cfg.TrendTolerance)

	out.EntryZone = model.Defined(row.BBLower) && row.Close <= row.BBLower
	out.ExitZone = model.Defined(row.BBUpper) && row.Close >= row.BBUpper

	out.ShortSignal, out.Reason = shortSignal(row, out.EntryZone, out.ExitZone, cfg)
	return out
}

// trend compares two SMAs. Either side undefined → Neutral: an absent
// average cannot be compared.
func trend(fast, slow, tolerance float64) model.Trend {
	if !model.Defined(fast) || !model.Defined(slow) {
		return model.TrendNeutral
	}
	switch {
	case fast > slow*(1+tolerance):
		return model.TrendUp
	case fast < slow*(1-tolerance):
		return model.TrendDown
	default:
		return model.TrendNeutral
	}
}

// shortSignal applies the buy/sell rules. Buy is checked before Sell;
// the only way both zones fire at once is a zero-width band, which is
// degenerate and reads as Hold.
func shortSignal(row model.IndicatorRow, entry, exit bool, cfg Config) (model.Action, string) {
	if entry && exit {
		return model.ActionHold, "zero-width band"
	}

	rsiDefined := model.Defined(row.RSI)
	switch {
	case (rsiDefined && row.RSI < cfg.Oversold) || entry:
		return model.ActionBuy, "RSI oversold or close at lower band"
	case (rsiDefined && row.RSI > cfg.Overbought) || exit:
		return model.ActionSell, "RSI overbought or close at upper band"
	default:
		return model.ActionHold, "range-bound"
	}
}
