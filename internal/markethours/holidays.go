package markethours

import (
	"fmt"
	"time"
)

// TWSE market holidays for 2026.
// Source: TWSE official trading calendar.
// Format: month, day pairs.
var twseHolidays2026 = []struct {
	month time.Month
	day   int
}{
	{time.January, 1},    // New Year's Day
	{time.February, 13},  // Lunar New Year's Eve eve (market closed)
	{time.February, 16},  // Lunar New Year's Eve
	{time.February, 17},  // Lunar New Year
	{time.February, 18},  // Lunar New Year
	{time.February, 19},  // Lunar New Year
	{time.February, 20},  // Lunar New Year (adjusted)
	{time.April, 3},      // Children's Day (adjusted)
	{time.April, 6},      // Tomb Sweeping Day (adjusted)
	{time.May, 1},        // Labor Day
	{time.June, 19},      // Dragon Boat Festival
	{time.September, 25}, // Mid-Autumn Festival
	{time.September, 28}, // Teachers' Day
	{time.October, 9},    // National Day (adjusted)
	{time.October, 26},   // Taiwan Retrocession Day (adjusted)
	{time.December, 25},  // Constitution Day
}

// pre-compute for fast lookup
var holidaySet map[string]bool

func init() {
	holidaySet = make(map[string]bool, len(twseHolidays2026))
	for _, h := range twseHolidays2026 {
		holidaySet[holidayKey(2026, h.month, h.day)] = true
	}
}

func holidayKey(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// IsHoliday returns true if t (in Taipei) is a TWSE market holiday.
// Years without a loaded table report false — weekends are handled
// separately by IsTradingDay.
func IsHoliday(t time.Time) bool {
	local := t.In(Taipei)
	return holidaySet[holidayKey(local.Year(), local.Month(), local.Day())]
}
