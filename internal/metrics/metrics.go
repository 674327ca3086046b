// Package metrics exposes Prometheus metrics and a health endpoint for
// screener runs.
package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the screener.
type Metrics struct {
	SymbolsFetched prometheus.Counter
	SymbolsSkipped *prometheus.CounterVec // labels: reason
	BarsFetched    prometheus.Counter
	SignalRows     prometheus.Counter

	FetchDur   prometheus.Histogram
	ComputeDur prometheus.Histogram

	SinkWriteDur  *prometheus.HistogramVec // labels: destination
	SinkRetries   prometheus.Counter
	WatchlistSize *prometheus.GaugeVec // labels: destination

	RunDur      prometheus.Histogram
	LastRunUnix prometheus.Gauge
	LastRunOK   prometheus.Gauge // 1=success, 0=failure
}

// NewMetrics registers and returns all screener metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		SymbolsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_symbols_fetched_total",
			Help: "Symbols whose bars were fetched and classified",
		}),
		SymbolsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_symbols_skipped_total",
			Help: "Symbols skipped (by reason: fetch_failed, no_data, bad_series)",
		}, []string{"reason"}),
		BarsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_bars_fetched_total",
			Help: "Daily bars fetched across all symbols",
		}),
		SignalRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_signal_rows_total",
			Help: "Signal rows accumulated into the universe",
		}),
		FetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_fetch_duration_seconds",
			Help:    "Per-symbol bar fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		ComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_compute_duration_seconds",
			Help:    "Per-symbol indicator + signal compute latency",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		SinkWriteDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "screener_sink_write_duration_seconds",
			Help:    "Destination full-replace latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"destination"}),
		SinkRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_sink_retries_total",
			Help: "Transient sink failures that were retried",
		}),
		WatchlistSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "screener_watchlist_size",
			Help: "Rows selected into each watchlist destination",
		}, []string{"destination"}),
		RunDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_run_duration_seconds",
			Help:    "Whole pipeline run duration",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		LastRunUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "screener_last_run_timestamp_seconds",
			Help: "Unix time of the last completed run",
		}),
		LastRunOK: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "screener_last_run_success",
			Help: "Whether the last run refreshed every destination (1=yes)",
		}),
	}

	prometheus.MustRegister(
		m.SymbolsFetched,
		m.SymbolsSkipped,
		m.BarsFetched,
		m.SignalRows,
		m.FetchDur,
		m.ComputeDur,
		m.SinkWriteDur,
		m.SinkRetries,
		m.WatchlistSize,
		m.RunDur,
		m.LastRunUnix,
		m.LastRunOK,
	)

	return m
}

// HealthStatus represents the screener's run state for /healthz.
type HealthStatus struct {
	mu sync.RWMutex

	StartedAt   time.Time `json:"started_at"`
	LastRunAt   time.Time `json:"last_run_at"`
	LastRunOK   bool      `json:"last_run_ok"`
	LastError   string    `json:"last_error,omitempty"`
	SymbolCount int       `json:"symbol_count"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

// RecordRun stores the outcome of a completed run.
func (h *HealthStatus) RecordRun(at time.Time, symbolCount int, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastRunAt = at
	h.SymbolCount = symbolCount
	h.LastRunOK = err == nil
	if err != nil {
		h.LastError = err.Error()
	} else {
		h.LastError = ""
	}
}

// ServeHTTP renders the health status as JSON.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	if !h.LastRunOK && !h.LastRunAt.IsZero() {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(h)
}

// Server serves /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates the metrics HTTP server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
