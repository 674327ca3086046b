package indicator

import (
	"math"
	"testing"
	"time"

	"tw-screener/internal/model"
)

func makeSeries(symbol string, closes []float64) model.Series {
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	s := make(model.Series, 0, len(closes))
	for i, c := range closes {
		s = append(s, model.Bar{
			Symbol: symbol,
			Date:   base.AddDate(0, 0, i),
			Open:   c, High: c + 1, Low: c - 1, Close: c,
			Volume: 1000,
		})
	}
	return s
}

func TestEngine_EqualLengthOutput(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	series := makeSeries("2330", make([]float64, 30))
	for i := range series {
		series[i].Close = 500 + float64(i)
	}

	rows, err := eng.Compute(series)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(rows) != len(series) {
		t.Fatalf("expected %d rows, got %d", len(series), len(rows))
	}
}

func TestEngine_ShortHistoryAllNaN(t *testing.T) {
	// 10 bars against SMA(20): sma_20 undefined at every position.
	eng := NewEngine(Config{SMAWindows: []int{20}, RSILength: 14, BBLength: 20, BBStdDev: 2.0})
	closes := []float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109}

	rows, err := eng.Compute(makeSeries("2317", closes))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for i, row := range rows {
		if !math.IsNaN(row.SMAValue(20)) {
			t.Errorf("row %d: SMA(20) defined with only 10 bars: %.4f", i, row.SMAValue(20))
		}
		if !math.IsNaN(row.BBBasis) {
			t.Errorf("row %d: BB basis defined with only 10 bars", i)
		}
	}
}

func TestEngine_WindowBoundaries(t *testing.T) {
	cfg := Config{SMAWindows: []int{5, 10}, RSILength: 14, BBLength: 5, BBStdDev: 2.0}
	eng := NewEngine(cfg)
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	rows, err := eng.Compute(makeSeries("2454", closes))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// SMA(5) defined from row 4, SMA(10) from row 9, RSI(14) from row 14.
	if !math.IsNaN(rows[3].SMAValue(5)) || math.IsNaN(rows[4].SMAValue(5)) {
		t.Error("SMA(5) boundary wrong")
	}
	if !math.IsNaN(rows[8].SMAValue(10)) || math.IsNaN(rows[9].SMAValue(10)) {
		t.Error("SMA(10) boundary wrong")
	}
	if !math.IsNaN(rows[13].RSI) || math.IsNaN(rows[14].RSI) {
		t.Error("RSI(14) boundary wrong")
	}

	// Linear ramp: SMA(5) at row 4 = (100+101+102+103+104)/5 = 102
	assertClose(t, "SMA(5) row 4", rows[4].SMAValue(5), 102.0, 0.0001)
}

func TestEngine_RejectsUnsortedSeries(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	series := makeSeries("2882", []float64{100, 101, 102})
	series[1].Date, series[2].Date = series[2].Date, series[1].Date

	if _, err := eng.Compute(series); err == nil {
		t.Fatal("expected error for out-of-order series")
	}
}

func TestEngine_RejectsDuplicateDates(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	series := makeSeries("2881", []float64{100, 101, 102})
	series[2].Date = series[1].Date

	if _, err := eng.Compute(series); err == nil {
		t.Fatal("expected error for duplicate dates")
	}
}

func TestEngine_NoCrossSeriesLeakage(t *testing.T) {
	// Two computes on the same engine must be independent — indicator
	// state is created per series, never shared across symbols.
	eng := NewEngine(Config{SMAWindows: []int{3}, RSILength: 3, BBLength: 3, BBStdDev: 2.0})

	a := makeSeries("A", []float64{10, 20, 30, 40})
	rowsA1, err := eng.Compute(a)
	if err != nil {
		t.Fatalf("Compute A: %v", err)
	}
	if _, err := eng.Compute(makeSeries("B", []float64{999, 998, 997, 996})); err != nil {
		t.Fatalf("Compute B: %v", err)
	}
	rowsA2, err := eng.Compute(a)
	if err != nil {
		t.Fatalf("Compute A again: %v", err)
	}

	for i := range rowsA1 {
		v1, v2 := rowsA1[i].SMAValue(3), rowsA2[i].SMAValue(3)
		if math.IsNaN(v1) != math.IsNaN(v2) || (!math.IsNaN(v1) && math.Abs(v1-v2) > 1e-9) {
			t.Errorf("row %d: SMA leaked across series: %.4f vs %.4f", i, v1, v2)
		}
	}
}
