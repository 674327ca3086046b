package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"tw-screener/internal/model"
	"tw-screener/internal/retry"
)

// ChartConfig configures the chart-API provider.
type ChartConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration // default 10s
}

// Chart fetches daily bars from a JSON chart API:
// GET {base}/v1/daily?symbol=...&start=...&end=...
type Chart struct {
	cfg    ChartConfig
	client *http.Client
}

// NewChart creates the chart-API provider.
func NewChart(cfg ChartConfig) *Chart {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Chart{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Chart) Name() string { return "chart" }

type chartBar struct {
	Date   string  `json:"date"` // "2026-03-02"
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

type chartResponse struct {
	Symbol string     `json:"symbol"`
	Bars   []chartBar `json:"bars"`
}

func (c *Chart) DailyBars(ctx context.Context, symbol string, start, end time.Time) (model.Series, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("start", start.Format("2006-01-02"))
	q.Set("end", end.Format("2006-01-02"))
	if c.cfg.APIKey != "" {
		q.Set("apikey", c.cfg.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v1/daily?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("chart: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("chart: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// Unknown symbol: explicit "no data", not a failure.
		return model.Series{}, nil
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return nil, retry.Transient(fmt.Errorf("chart: %s: status %d", symbol, resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("chart: %s: status %d", symbol, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("chart: read body: %w", err))
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("chart: %s: decode: %w", symbol, err)
	}

	return toSeries(symbol, parsed.Bars)
}

func toSeries(symbol string, bars []chartBar) (model.Series, error) {
	series := make(model.Series, 0, len(bars))
	for _, b := range bars {
		date, err := time.ParseInLocation("2006-01-02", b.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("bad bar date %q for %s: %w", b.Date, symbol, err)
		}
		series = append(series, model.Bar{
			Symbol: symbol,
			Date:   date,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	return series, nil
}
