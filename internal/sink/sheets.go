package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"tw-screener/internal/retry"
)

const defaultSheetsBaseURL = "https://sheets.googleapis.com"

// SheetsConfig configures the Google Sheets sink.
type SheetsConfig struct {
	SpreadsheetID string
	Token         string        // OAuth bearer token for the service account
	BaseURL       string        // override for tests; default Sheets API
	Timeout       time.Duration // default 15s
}

// Sheets writes tables to worksheet tabs of one spreadsheet through the
// values API: clear the tab, then write the freshness marker in A1, the
// header in row 2, and data below — the layout consumers already read.
type Sheets struct {
	cfg    SheetsConfig
	client *http.Client
}

// NewSheets creates a Google Sheets sink.
func NewSheets(cfg SheetsConfig) (*Sheets, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id not set")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("sheets: token not set")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultSheetsBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Sheets{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ReplaceTable clears the destination tab and writes the full table.
// Clear-then-write is what makes the replace idempotent and keeps a
// shrinking result set from leaving stale rows behind.
func (s *Sheets) ReplaceTable(ctx context.Context, destinationID string, table Table, freshnessMarker string) error {
	if err := s.clear(ctx, destinationID); err != nil {
		return fmt.Errorf("sheets: clear %q: %w", destinationID, err)
	}

	values := make([][]string, 0, len(table.Rows)+2)
	values = append(values, []string{freshnessMarker})
	values = append(values, table.Header)
	values = append(values, table.Rows...)

	if err := s.update(ctx, destinationID, values); err != nil {
		return fmt.Errorf("sheets: update %q: %w", destinationID, err)
	}
	return nil
}

func (s *Sheets) clear(ctx context.Context, sheetName string) error {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:clear",
		s.cfg.BaseURL, s.cfg.SpreadsheetID, url.PathEscape(sheetName))
	return s.call(ctx, http.MethodPost, u, []byte("{}"))
}

func (s *Sheets) update(ctx context.Context, sheetName string, values [][]string) error {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?valueInputOption=RAW",
		s.cfg.BaseURL, s.cfg.SpreadsheetID, url.PathEscape(sheetName+"!A1"))

	body, err := json.Marshal(map[string]any{
		"range":          sheetName + "!A1",
		"majorDimension": "ROWS",
		"values":         values,
	})
	if err != nil {
		return err
	}
	return s.call(ctx, http.MethodPut, u, body)
}

func (s *Sheets) call(ctx context.Context, method, u string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		// Network-level failures read as momentary unavailability.
		return retry.Transient(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err = fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= 500:
		return retry.Transient(err)
	case resp.StatusCode == http.StatusNotFound:
		// A just-created tab can lag behind the API's view briefly.
		return retry.Transient(err)
	default:
		// 400/401/403: malformed destination or bad credentials — no retry.
		return err
	}
}
