// Package model defines the data types flowing through the screener
// pipeline: daily bars, per-symbol series, and derived indicator and
// signal rows. All derived numeric fields use NaN for "not enough
// history yet" — never zero.
package model

import (
	"fmt"
	"math"
	"time"
)

// Bar represents one trading day of OHLCV data for a single symbol.
type Bar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"` // trading day, midnight UTC
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Series is an ordered sequence of daily bars for one symbol.
type Series []Bar

// Validate checks the series invariant: strictly ascending dates, no
// duplicates. A violation is fatal for the symbol, not the run.
func (s Series) Validate() error {
	for i := 1; i < len(s); i++ {
		prev, cur := s[i-1].Date, s[i].Date
		if cur.Equal(prev) {
			return fmt.Errorf("series: duplicate date %s at index %d", cur.Format("2006-01-02"), i)
		}
		if cur.Before(prev) {
			return fmt.Errorf("series: dates out of order at index %d (%s after %s)",
				i, cur.Format("2006-01-02"), prev.Format("2006-01-02"))
		}
	}
	return nil
}

// IndicatorRow is a bar plus its derived indicator columns. A field is
// NaN until enough preceding bars exist to fill its window.
type IndicatorRow struct {
	Bar

	SMA map[int]float64 // window → trailing mean of close
	RSI float64

	BBBasis float64
	BBUpper float64
	BBLower float64
	BBWidth float64
}

// SMAValue returns the SMA for the given window, or NaN if that window
// was not configured.
func (r IndicatorRow) SMAValue(window int) float64 {
	if v, ok := r.SMA[window]; ok {
		return v
	}
	return math.NaN()
}

// Trend is a coarse direction label derived from SMA comparisons.
type Trend string

const (
	TrendUp      Trend = "Up"
	TrendDown    Trend = "Down"
	TrendNeutral Trend = "Neutral"
)

// Action is the short-horizon signal for a row.
type Action string

const (
	ActionBuy  Action = "Buy"
	ActionSell Action = "Sell"
	ActionHold Action = "Hold"
)

// SignalRow is an indicator row plus its classified labels. Labels are
// a pure function of the row — nothing carries over from prior days.
type SignalRow struct {
	IndicatorRow

	Name     string // display name from reference data, "" if unmapped
	Category string

	ShortTrend Trend
	LongTrend  Trend
	EntryZone  bool
	ExitZone   bool

	ShortSignal Action
	Reason      string
}

// Defined reports whether v carries a real value (not NaN).
func Defined(v float64) bool { return !math.IsNaN(v) }
