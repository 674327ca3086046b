package marketdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"

	"tw-screener/internal/model"
	"tw-screener/internal/retry"
)

// BrokerConfig configures the broker history provider.
type BrokerConfig struct {
	BaseURL    string
	ClientCode string
	Password   string
	TOTPSecret string        // shared secret for the login OTP
	Timeout    time.Duration // default 10s
}

// Broker fetches daily bars from a brokerage history API that requires
// a TOTP-authenticated session: login once per run, then request bars
// with the session token. Used as the fallback source when the chart
// API is down or missing a symbol.
type Broker struct {
	cfg    BrokerConfig
	client *http.Client

	mu    sync.Mutex
	token string
}

// NewBroker creates the broker provider. The session is established
// lazily on the first fetch.
func NewBroker(cfg BrokerConfig) *Broker {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Broker{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (b *Broker) Name() string { return "broker" }

func (b *Broker) DailyBars(ctx context.Context, symbol string, start, end time.Time) (model.Series, error) {
	token, err := b.session(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", "1d")
	q.Set("from", start.Format("2006-01-02"))
	q.Set("to", end.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.cfg.BaseURL+"/history?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("broker: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("broker: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return model.Series{}, nil
	case resp.StatusCode == http.StatusUnauthorized:
		// Session expired mid-run: drop it so the next attempt re-logs in.
		b.mu.Lock()
		b.token = ""
		b.mu.Unlock()
		return nil, retry.Transient(fmt.Errorf("broker: %s: session expired", symbol))
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return nil, retry.Transient(fmt.Errorf("broker: %s: status %d", symbol, resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("broker: %s: status %d", symbol, resp.StatusCode)
	}

	var parsed chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("broker: %s: decode: %w", symbol, err)
	}
	return toSeries(symbol, parsed.Bars)
}

// session returns the current session token, logging in with a fresh
// TOTP code when there is none.
func (b *Broker) session(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.token != "" {
		return b.token, nil
	}

	code, err := totp.GenerateCode(b.cfg.TOTPSecret, time.Now())
	if err != nil {
		return "", fmt.Errorf("broker: generate totp: %w", err)
	}

	body, _ := json.Marshal(map[string]string{
		"client_code": b.cfg.ClientCode,
		"password":    b.cfg.Password,
		"totp":        code,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.BaseURL+"/session/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("broker: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", retry.Transient(fmt.Errorf("broker: login: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		err := fmt.Errorf("broker: login: status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", retry.Transient(err)
		}
		// Bad credentials fail fast — retrying a wrong password only
		// locks the account.
		return "", err
	}

	var parsed struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("broker: login: decode: %w", err)
	}
	if parsed.Token == "" {
		return "", fmt.Errorf("broker: login: empty token")
	}

	b.token = parsed.Token
	return b.token, nil
}
