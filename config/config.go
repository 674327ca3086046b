// Package config loads screener configuration from two places:
// credentials and infrastructure endpoints from environment variables,
// and the run profile (tickers, windows, destinations) from a JSON
// file checked in next to the binary.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

// Config holds environment-sourced configuration: secrets and endpoints
// that must never live in the checked-in profile file.
type Config struct {
	// Chart data source
	ChartBaseURL string
	ChartAPIKey  string

	// Broker data source (optional fallback; enabled when all four are set)
	BrokerBaseURL    string
	BrokerClientCode string
	BrokerPassword   string
	BrokerTOTPSecret string

	// Google Sheets sink (enabled when both are set)
	SheetsSpreadsheetID string
	SheetsToken         string

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	MetricsAddr   string
	WebhookURL    string

	// Path to the JSON run profile
	ScreenerFile string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		ChartBaseURL: mustEnv("CHART_BASE_URL"),
		ChartAPIKey:  getEnv("CHART_API_KEY", ""),

		BrokerBaseURL:    getEnv("BROKER_BASE_URL", ""),
		BrokerClientCode: getEnv("BROKER_CLIENT_CODE", ""),
		BrokerPassword:   getEnv("BROKER_PASSWORD", ""),
		BrokerTOTPSecret: getEnv("BROKER_TOTP_SECRET", ""),

		SheetsSpreadsheetID: getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsToken:         getEnv("SHEETS_TOKEN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", ""),
		MetricsAddr:   getEnv("METRICS_ADDR", ""),
		WebhookURL:    getEnv("ALERT_WEBHOOK_URL", ""),

		ScreenerFile: getEnv("SCREENER_CONFIG", "screener.json"),
	}
}

// BrokerEnabled reports whether the broker fallback source is fully
// configured.
func (c *Config) BrokerEnabled() bool {
	return c.BrokerBaseURL != "" && c.BrokerClientCode != "" &&
		c.BrokerPassword != "" && c.BrokerTOTPSecret != ""
}

// SheetsEnabled reports whether the Sheets sink is fully configured.
func (c *Config) SheetsEnabled() bool {
	return c.SheetsSpreadsheetID != "" && c.SheetsToken != ""
}

// Destinations names the output tables for one mode.
type Destinations struct {
	Universe string `json:"universe"`
	Top10    string `json:"top10"`
	Top5     string `json:"top5"`
}

// Screener is the JSON run profile. Dev and prod write to different
// destination tables so a dev run can never clobber the prod sheets.
type Screener struct {
	Mode         string   `json:"mode"` // "dev" or "prod"
	Tickers      []string `json:"tickers"`
	LookbackDays int      `json:"lookback_days"`

	SMAWindows []int   `json:"sma_windows"`
	RSILength  int     `json:"rsi_length"`
	BBLength   int     `json:"bb_length"`
	BBStdDev   float64 `json:"bb_stddev"`

	Oversold       float64 `json:"oversold"`
	Overbought     float64 `json:"overbought"`
	TrendTolerance float64 `json:"trend_tolerance"`

	PolitenessMS int    `json:"politeness_ms"`
	RefDataPath  string `json:"refdata_path"`

	Destinations map[string]Destinations `json:"destinations"`
}

// LoadScreener reads and validates the JSON run profile.
func LoadScreener(path string) (*Screener, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var s Screener
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	s.applyDefaults()
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &s, nil
}

func (s *Screener) applyDefaults() {
	if s.Mode == "" {
		s.Mode = "dev"
	}
	if s.LookbackDays == 0 {
		s.LookbackDays = 365
	}
	if len(s.SMAWindows) == 0 {
		s.SMAWindows = []int{20, 50, 200}
	}
	if s.RSILength == 0 {
		s.RSILength = 14
	}
	if s.BBLength == 0 {
		s.BBLength = 20
	}
	if s.BBStdDev == 0 {
		s.BBStdDev = 2.0
	}
	if s.Oversold == 0 {
		s.Oversold = 30
	}
	if s.Overbought == 0 {
		s.Overbought = 70
	}
}

func (s *Screener) validate() error {
	if s.Mode != "dev" && s.Mode != "prod" {
		return fmt.Errorf("unknown mode %q", s.Mode)
	}
	if len(s.Tickers) == 0 {
		return fmt.Errorf("tickers list is empty")
	}
	if s.Oversold >= s.Overbought {
		return fmt.Errorf("oversold %.1f must be below overbought %.1f", s.Oversold, s.Overbought)
	}
	if _, ok := s.Destinations[s.Mode]; !ok {
		return fmt.Errorf("no destinations configured for mode %q", s.Mode)
	}
	return nil
}

// Dest returns the destination tables for the configured mode.
func (s *Screener) Dest() Destinations {
	return s.Destinations[s.Mode]
}

// Politeness returns the per-symbol fetch delay.
func (s *Screener) Politeness() time.Duration {
	return time.Duration(s.PolitenessMS) * time.Millisecond
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("[config] required env var %s not set", key)
	}
	return v
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
