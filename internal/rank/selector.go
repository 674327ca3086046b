// Package rank selects a bounded, ordered watchlist from the universe
// of signal rows. Lower RSI ranks first ("more oversold, better entry").
package rank

import (
	"math"
	"sort"

	"tw-screener/internal/model"
)

// Range is an order-normalized numeric interval: Low <= High whenever
// both bounds are defined.
type Range struct {
	Low  float64
	High float64
}

// Entry is one watchlist row: the symbol's latest signal row plus
// suggested entry and exit price ranges.
type Entry struct {
	model.SignalRow

	EntryRange Range // [bb_lower, sma_fast]
	ExitRange  Range // [sma_long or bb_basis, bb_upper]
}

// Config names the SMA windows used for the suggested ranges.
type Config struct {
	FastWindow int // e.g. 20
	LongWindow int // e.g. 200
}

// DefaultConfig matches the default classifier windows.
func DefaultConfig() Config { return Config{FastWindow: 20, LongWindow: 200} }

// Select reduces the universe to the latest row per symbol, keeps rows
// with ShortSignal == Buy (falling back to the full latest set when no
// symbol is a Buy), sorts by RSI ascending with volume descending as
// tie-break, and returns the first n entries. Fully deterministic for
// identical input.
func Select(universe []model.SignalRow, n int, cfg Config) []Entry {
	latest := latestPerSymbol(universe)

	picks := make([]model.SignalRow, 0, len(latest))
	for _, row := range latest {
		if row.ShortSignal == model.ActionBuy {
			picks = append(picks, row)
		}
	}
	if len(picks) == 0 {
		// Guarantee a non-empty watchlist when the caller expects rows.
		picks = latest
	}

	sort.SliceStable(picks, func(i, j int) bool {
		ri, rj := picks[i].RSI, picks[j].RSI
		if rsiLess(ri, rj) {
			return true
		}
		if rsiLess(rj, ri) {
			return false
		}
		if picks[i].Volume != picks[j].Volume {
			return picks[i].Volume > picks[j].Volume
		}
		return picks[i].Symbol < picks[j].Symbol
	})

	if n > len(picks) {
		n = len(picks)
	}
	out := make([]Entry, 0, n)
	for _, row := range picks[:n] {
		out = append(out, Entry{
			SignalRow:  row,
			EntryRange: normalize(row.BBLower, row.SMAValue(cfg.FastWindow)),
			ExitRange:  normalize(exitAnchor(row, cfg), row.BBUpper),
		})
	}
	return out
}

// latestPerSymbol reduces to one row per symbol, keeping the maximum
// date. Returns symbols in sorted order so the pre-sort input is
// deterministic regardless of universe accumulation order.
func latestPerSymbol(universe []model.SignalRow) []model.SignalRow {
	byScrip := make(map[string]model.SignalRow, 64)
	for _, row := range universe {
		cur, ok := byScrip[row.Symbol]
		if !ok || row.Date.After(cur.Date) {
			byScrip[row.Symbol] = row
		}
	}

	symbols := make([]string, 0, len(byScrip))
	for sym := range byScrip {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	out := make([]model.SignalRow, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, byScrip[sym])
	}
	return out
}

// rsiLess orders RSI ascending with NaN last.
func rsiLess(a, b float64) bool {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	if aNaN || bNaN {
		return !aNaN && bNaN
	}
	return a < b
}

// exitAnchor is the long SMA when available, the band basis otherwise.
func exitAnchor(row model.SignalRow, cfg Config) float64 {
	if v := row.SMAValue(cfg.LongWindow); model.Defined(v) {
		return v
	}
	return row.BBBasis
}

// normalize orders the interval so Low <= High regardless of which
// bound is numerically larger. NaN bounds pass through.
func normalize(a, b float64) Range {
	if model.Defined(a) && model.Defined(b) && a > b {
		a, b = b, a
	}
	return Range{Low: a, High: b}
}
