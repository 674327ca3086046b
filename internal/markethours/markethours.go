// Package markethours knows the TWSE trading calendar and renders the
// freshness timestamps consumers read alongside published tables.
package markethours

import "time"

// Taipei is the Taiwan time zone (UTC+8, no DST).
var Taipei = time.FixedZone("Asia/Taipei", 8*3600)

// TWSE continuous trading hours.
const (
	OpenHour    = 9
	OpenMinute  = 0
	CloseHour   = 13
	CloseMinute = 30
)

// IsMarketOpen returns true if t falls within TWSE trading hours
// (9:00 AM – 1:30 PM Taipei, Mon–Fri, excluding holidays).
func IsMarketOpen(t time.Time) bool {
	local := t.In(Taipei)
	if !IsTradingDay(local) {
		return false
	}
	hm := local.Hour()*60 + local.Minute()
	return hm >= OpenHour*60+OpenMinute && hm < CloseHour*60+CloseMinute
}

// IsWeekday returns true if t is Mon–Fri in Taipei.
func IsWeekday(t time.Time) bool {
	wd := t.In(Taipei).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsTradingDay returns true if t is a weekday and not a market holiday.
func IsTradingDay(t time.Time) bool {
	local := t.In(Taipei)
	return IsWeekday(local) && !IsHoliday(local)
}

// Stamp renders the human-readable freshness marker written next to
// every published table.
func Stamp(t time.Time) string {
	return "Last Update (Asia/Taipei): " + t.In(Taipei).Format("2006-01-02 15:04:05")
}

// PrevTradingDay returns the trading day strictly before t, useful for
// anchoring the fetch window's end on non-trading days.
func PrevTradingDay(t time.Time) time.Time {
	d := t.In(Taipei).AddDate(0, 0, -1)
	for i := 0; i < 15; i++ { // long holiday runs (Lunar New Year) stay bounded
		if IsTradingDay(d) {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		}
		d = d.AddDate(0, 0, -1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
