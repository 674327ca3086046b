package indicator

import (
	"fmt"
	"sort"

	"tw-screener/internal/model"
)

// Config specifies which indicators the engine computes per series.
type Config struct {
	SMAWindows []int   // e.g. 20, 50, 200
	RSILength  int     // e.g. 14
	BBLength   int     // e.g. 20
	BBStdDev   float64 // band multiplier, e.g. 2.0
}

// DefaultConfig returns the standard screener indicator set:
// SMA 20/50/200, RSI 14, Bollinger(20, 2.0).
func DefaultConfig() Config {
	return Config{
		SMAWindows: []int{20, 50, 200},
		RSILength:  14,
		BBLength:   20,
		BBStdDev:   2.0,
	}
}

// Engine turns a symbol's bar series into an equal-length sequence of
// indicator rows. Each series gets fresh updater instances — nothing
// leaks across symbols or runs.
type Engine struct {
	cfg Config
}

// NewEngine creates an indicator engine with the given config.
func NewEngine(cfg Config) *Engine {
	windows := make([]int, len(cfg.SMAWindows))
	copy(windows, cfg.SMAWindows)
	sort.Ints(windows)
	cfg.SMAWindows = windows
	return &Engine{cfg: cfg}
}

// Config returns the engine's indicator configuration.
func (e *Engine) Config() Config { return e.cfg }

// Compute validates the series and runs one forward scan, feeding every
// updater each close in date order. Rows with insufficient history carry
// NaN fields; only an unsorted or duplicate-date series is an error.
func (e *Engine) Compute(series model.Series) ([]model.IndicatorRow, error) {
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("indicator: %w", err)
	}

	smas := make(map[int]*SMA, len(e.cfg.SMAWindows))
	for _, w := range e.cfg.SMAWindows {
		smas[w] = NewSMA(w)
	}
	rsi := NewRSI(e.cfg.RSILength)
	bb := NewBollinger(e.cfg.BBLength, e.cfg.BBStdDev)

	rows := make([]model.IndicatorRow, 0, len(series))
	for _, bar := range series {
		for _, w := range e.cfg.SMAWindows {
			smas[w].Update(bar.Close)
		}
		rsi.Update(bar.Close)
		bb.Update(bar.Close)

		row := model.IndicatorRow{
			Bar: bar,
			SMA: make(map[int]float64, len(e.cfg.SMAWindows)),
			RSI: rsi.Value(),
		}
		for _, w := range e.cfg.SMAWindows {
			row.SMA[w] = smas[w].Value()
		}
		row.BBBasis, row.BBUpper, row.BBLower, row.BBWidth = bb.Bands()

		rows = append(rows, row)
	}

	return rows, nil
}
