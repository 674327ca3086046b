package markethours

import (
	"testing"
	"time"
)

func taipei(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, Taipei)
}

func TestIsMarketOpen(t *testing.T) {
	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"monday mid-session", taipei(2026, 3, 2, 10, 30), true},
		{"before open", taipei(2026, 3, 2, 8, 59), false},
		{"after close", taipei(2026, 3, 2, 13, 30), false},
		{"saturday", taipei(2026, 3, 7, 10, 0), false},
		{"lunar new year", taipei(2026, 2, 17, 10, 0), false},
	}
	for _, tc := range cases {
		if got := IsMarketOpen(tc.t); got != tc.want {
			t.Errorf("%s: IsMarketOpen=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsTradingDay(t *testing.T) {
	if IsTradingDay(taipei(2026, 1, 1, 12, 0)) {
		t.Error("New Year's Day should not be a trading day")
	}
	if !IsTradingDay(taipei(2026, 3, 3, 12, 0)) {
		t.Error("regular Tuesday should be a trading day")
	}
}

func TestStamp(t *testing.T) {
	// 02:00 UTC is 10:00 Taipei.
	ts := time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC)
	got := Stamp(ts)
	want := "Last Update (Asia/Taipei): 2026-03-02 10:00:00"
	if got != want {
		t.Errorf("Stamp = %q, want %q", got, want)
	}
}

func TestPrevTradingDay_SkipsWeekend(t *testing.T) {
	// Monday 2026-03-02 → previous trading day Friday 2026-02-27.
	got := PrevTradingDay(taipei(2026, 3, 2, 9, 0))
	want := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("PrevTradingDay = %s, want %s", got, want)
	}
}
