package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "screener.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScreenerDefaults(t *testing.T) {
	path := writeProfile(t, `{
		"tickers": ["2330", "2317"],
		"destinations": {"dev": {"universe": "U", "top10": "T10", "top5": "T5"}}
	}`)

	s, err := LoadScreener(path)
	if err != nil {
		t.Fatalf("LoadScreener: %v", err)
	}
	if s.Mode != "dev" {
		t.Errorf("Mode = %s, want dev", s.Mode)
	}
	if s.RSILength != 14 || s.BBLength != 20 || s.BBStdDev != 2.0 {
		t.Errorf("indicator defaults = %d %d %.1f", s.RSILength, s.BBLength, s.BBStdDev)
	}
	if len(s.SMAWindows) != 3 || s.SMAWindows[2] != 200 {
		t.Errorf("SMAWindows = %v", s.SMAWindows)
	}
	if s.Oversold != 30 || s.Overbought != 70 {
		t.Errorf("thresholds = %.0f %.0f", s.Oversold, s.Overbought)
	}
	if s.LookbackDays != 365 {
		t.Errorf("LookbackDays = %d", s.LookbackDays)
	}
}

func TestLoadScreenerModeDestinations(t *testing.T) {
	path := writeProfile(t, `{
		"mode": "prod",
		"tickers": ["2330"],
		"politeness_ms": 250,
		"destinations": {
			"dev":  {"universe": "DevU", "top10": "DevT10", "top5": "DevT5"},
			"prod": {"universe": "Universe", "top10": "Top10", "top5": "Top5"}
		}
	}`)

	s, err := LoadScreener(path)
	if err != nil {
		t.Fatalf("LoadScreener: %v", err)
	}
	if d := s.Dest(); d.Universe != "Universe" || d.Top10 != "Top10" || d.Top5 != "Top5" {
		t.Errorf("Dest() = %+v, want prod tables", d)
	}
	if s.Politeness() != 250*time.Millisecond {
		t.Errorf("Politeness = %v", s.Politeness())
	}
}

func TestLoadScreenerRejectsBadProfiles(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"unknown mode", `{"mode": "staging", "tickers": ["2330"], "destinations": {"staging": {}}}`, "unknown mode"},
		{"no tickers", `{"tickers": [], "destinations": {"dev": {}}}`, "tickers list is empty"},
		{"inverted thresholds", `{"tickers": ["2330"], "oversold": 80, "overbought": 70, "destinations": {"dev": {}}}`, "must be below"},
		{"missing mode destinations", `{"mode": "prod", "tickers": ["2330"], "destinations": {"dev": {}}}`, "no destinations"},
		{"bad json", `{"tickers": [`, "parse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScreener(writeProfile(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestLoadScreenerMissingFile(t *testing.T) {
	if _, err := LoadScreener(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBrokerAndSheetsEnabled(t *testing.T) {
	c := &Config{}
	if c.BrokerEnabled() || c.SheetsEnabled() {
		t.Error("empty config should disable optional components")
	}
	c.BrokerBaseURL = "https://broker.example"
	c.BrokerClientCode = "C123"
	c.BrokerPassword = "pw"
	if c.BrokerEnabled() {
		t.Error("broker needs the TOTP secret too")
	}
	c.BrokerTOTPSecret = "JBSWY3DPEHPK3PXP"
	if !c.BrokerEnabled() {
		t.Error("broker should be enabled with all four values")
	}
	c.SheetsSpreadsheetID = "sheet-id"
	c.SheetsToken = "token"
	if !c.SheetsEnabled() {
		t.Error("sheets should be enabled")
	}
}
