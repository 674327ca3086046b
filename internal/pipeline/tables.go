package pipeline

import (
	"fmt"
	"sort"
	"strconv"

	"tw-screener/internal/indicator"
	"tw-screener/internal/model"
	"tw-screener/internal/rank"
	"tw-screener/internal/sink"
)

// Cell rendering: NaN means "not enough history" and becomes an empty
// cell, never 0. Floats keep four decimals, matching what chart apps
// display for TWSE prices.

func cellFloat(v float64) string {
	if !model.Defined(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func cellBool(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

// UniverseTable renders every signal row, ordered by symbol then date,
// so a rerun over the same inputs produces a byte-identical table.
func UniverseTable(rows []model.SignalRow, cfg indicator.Config) sink.Table {
	sorted := make([]model.SignalRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Symbol != sorted[j].Symbol {
			return sorted[i].Symbol < sorted[j].Symbol
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	header := []string{"Date", "Ticker", "Name", "Category", "Open", "High", "Low", "Close", "Volume",
		fmt.Sprintf("RSI_%d", cfg.RSILength)}
	for _, w := range cfg.SMAWindows {
		header = append(header, fmt.Sprintf("SMA_%d", w))
	}
	header = append(header, "BB_Basis", "BB_Upper", "BB_Lower", "BB_Width",
		"ShortTrend", "LongTrend", "EntryZone", "ExitZone", "ShortSignal", "Reason")

	out := make([][]string, 0, len(sorted))
	for _, r := range sorted {
		row := []string{
			r.Date.Format("2006-01-02"),
			r.Symbol,
			r.Name,
			r.Category,
			cellFloat(r.Open),
			cellFloat(r.High),
			cellFloat(r.Low),
			cellFloat(r.Close),
			strconv.FormatInt(r.Volume, 10),
			cellFloat(r.RSI),
		}
		for _, w := range cfg.SMAWindows {
			row = append(row, cellFloat(r.SMAValue(w)))
		}
		row = append(row,
			cellFloat(r.BBBasis),
			cellFloat(r.BBUpper),
			cellFloat(r.BBLower),
			cellFloat(r.BBWidth),
			string(r.ShortTrend),
			string(r.LongTrend),
			cellBool(r.EntryZone),
			cellBool(r.ExitZone),
			string(r.ShortSignal),
			r.Reason,
		)
		out = append(out, row)
	}
	return sink.Table{Header: header, Rows: out}
}

// WatchlistTable renders ranked entries in selection order, one row per
// symbol, with the suggested entry and exit price ranges.
func WatchlistTable(entries []rank.Entry, cfg indicator.Config) sink.Table {
	header := []string{"Date", "Ticker", "Name", "Close", "Volume",
		fmt.Sprintf("RSI_%d", cfg.RSILength)}
	for _, w := range cfg.SMAWindows {
		header = append(header, fmt.Sprintf("SMA_%d", w))
	}
	header = append(header, "ShortSignal", "Reason", "EntryLow", "EntryHigh", "ExitLow", "ExitHigh")

	out := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := []string{
			e.Date.Format("2006-01-02"),
			e.Symbol,
			e.Name,
			cellFloat(e.Close),
			strconv.FormatInt(e.Volume, 10),
			cellFloat(e.RSI),
		}
		for _, w := range cfg.SMAWindows {
			row = append(row, cellFloat(e.SMAValue(w)))
		}
		row = append(row,
			string(e.ShortSignal),
			e.Reason,
			cellFloat(e.EntryRange.Low),
			cellFloat(e.EntryRange.High),
			cellFloat(e.ExitRange.Low),
			cellFloat(e.ExitRange.High),
		)
		out = append(out, row)
	}
	return sink.Table{Header: header, Rows: out}
}
