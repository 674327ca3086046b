// Package indicator computes technical indicators over daily bar series.
//
// Each indicator is an incremental updater fed closes in date order:
// O(1) per bar, no history scans. Values are NaN until the indicator's
// window is full — short history degrades, it never errors.
package indicator

// Updater is the interface shared by all incremental indicators.
type Updater interface {
	// Update feeds the next close price (bars must arrive in ascending
	// date order).
	Update(close float64)

	// Value returns the current value, or NaN when not enough data has
	// been accumulated.
	Value() float64

	// Ready returns true once the warm-up window is full.
	Ready() bool
}
