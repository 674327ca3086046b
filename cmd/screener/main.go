package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tw-screener/config"
	"tw-screener/internal/indicator"
	"tw-screener/internal/logger"
	"tw-screener/internal/marketdata"
	"tw-screener/internal/markethours"
	"tw-screener/internal/metrics"
	"tw-screener/internal/notification"
	"tw-screener/internal/pipeline"
	"tw-screener/internal/rank"
	"tw-screener/internal/refdata"
	"tw-screener/internal/retry"
	sig "tw-screener/internal/signal"
	"tw-screener/internal/sink"
)

func main() {
	os.Exit(run())
}

func run() int {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	log := logger.Init("screener", slog.LevelInfo)

	cfg := config.Load()
	profile, err := config.LoadScreener(cfg.ScreenerFile)
	if err != nil {
		log.Error("profile load failed", slog.String("error", err.Error()))
		return 1
	}
	log.Info("profile loaded",
		slog.String("mode", profile.Mode),
		slog.Int("tickers", len(profile.Tickers)))

	// ---- Graceful shutdown ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		log.Warn("shutdown signal received", slog.String("signal", s.String()))
		cancel()
	}()

	// ---- Metrics & health (optional) ----
	var prom *metrics.Metrics
	var health *metrics.HealthStatus
	if cfg.MetricsAddr != "" {
		prom = metrics.NewMetrics()
		health = metrics.NewHealthStatus()
		srv := metrics.NewServer(cfg.MetricsAddr, health)
		srv.Start()
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			srv.Stop(stopCtx)
		}()
	}

	// ---- Retry policy shared by sources and sinks ----
	policy := retry.DefaultPolicy()
	policy.OnRetry = func(attempt int, err error) {
		log.Warn("retrying", slog.Int("attempt", attempt), slog.String("error", err.Error()))
		if prom != nil {
			prom.SinkRetries.Inc()
		}
	}

	// ---- Data sources: chart API first, broker as fallback ----
	providers := []marketdata.Provider{
		marketdata.NewChart(marketdata.ChartConfig{
			BaseURL: cfg.ChartBaseURL,
			APIKey:  cfg.ChartAPIKey,
		}),
	}
	if cfg.BrokerEnabled() {
		providers = append(providers, marketdata.NewBroker(marketdata.BrokerConfig{
			BaseURL:    cfg.BrokerBaseURL,
			ClientCode: cfg.BrokerClientCode,
			Password:   cfg.BrokerPassword,
			TOTPSecret: cfg.BrokerTOTPSecret,
		}))
		log.Info("broker fallback enabled")
	}
	source := marketdata.NewChain(log, policy, providers...)

	// ---- Sinks ----
	var sinks []sink.Sink
	if cfg.SheetsEnabled() {
		sheets, err := sink.NewSheets(sink.SheetsConfig{
			SpreadsheetID: cfg.SheetsSpreadsheetID,
			Token:         cfg.SheetsToken,
		})
		if err != nil {
			log.Error("sheets init failed", slog.String("error", err.Error()))
			return 1
		}
		sinks = append(sinks, sink.WithRetry(sheets, policy))
		log.Info("sheets sink ready", slog.String("spreadsheet", cfg.SheetsSpreadsheetID))
	}
	if cfg.SQLitePath != "" {
		db, err := sink.NewSQLite(cfg.SQLitePath)
		if err != nil {
			log.Error("sqlite init failed", slog.String("error", err.Error()))
			return 1
		}
		defer db.Close()
		sinks = append(sinks, sink.WithRetry(db, policy))
		log.Info("sqlite sink ready", slog.String("path", cfg.SQLitePath))
	}
	if cfg.RedisAddr != "" {
		rds, err := sink.NewRedis(sink.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			// Redis is a cache mirror, not the system of record.
			log.Warn("redis init failed, continuing without it", slog.String("error", err.Error()))
		} else {
			sinks = append(sinks, sink.WithRetry(rds, policy))
			log.Info("redis sink ready", slog.String("addr", cfg.RedisAddr))
		}
	}
	if len(sinks) == 0 {
		log.Error("no sink configured; set SHEETS_*, SQLITE_PATH, or REDIS_ADDR")
		return 1
	}

	// ---- Reference data ----
	var ref refdata.Lookup = refdata.NewStatic(nil)
	if profile.RefDataPath != "" {
		loaded, err := refdata.LoadStatic(profile.RefDataPath)
		if err != nil {
			log.Error("refdata load failed", slog.String("error", err.Error()))
			return 1
		}
		ref = loaded
	}

	// ---- Notifications ----
	backends := []notification.Notifier{notification.NewLogNotifier()}
	if cfg.WebhookURL != "" {
		backends = append(backends, notification.NewWebhookNotifier(cfg.WebhookURL))
	}

	// ---- Assemble and run once ----
	dest := profile.Dest()
	end := time.Now()
	if !markethours.IsTradingDay(end) {
		log.Warn("not a trading day; latest bars date from",
			slog.String("prev_trading_day", markethours.PrevTradingDay(end).Format("2006-01-02")))
	}
	runner := &pipeline.Runner{
		Symbols: profile.Tickers,
		Source:  source,
		Engine: indicator.NewEngine(indicator.Config{
			SMAWindows: profile.SMAWindows,
			RSILength:  profile.RSILength,
			BBLength:   profile.BBLength,
			BBStdDev:   profile.BBStdDev,
		}),
		Signals: sig.Config{
			FastWindow:     profile.SMAWindows[0],
			SlowWindow:     profile.SMAWindows[len(profile.SMAWindows)/2],
			LongWindow:     profile.SMAWindows[len(profile.SMAWindows)-1],
			Oversold:       profile.Oversold,
			Overbought:     profile.Overbought,
			TrendTolerance: profile.TrendTolerance,
		},
		Ranking: rank.Config{
			FastWindow: profile.SMAWindows[0],
			LongWindow: profile.SMAWindows[len(profile.SMAWindows)-1],
		},
		Sinks: sinks,
		Dest: pipeline.Destinations{
			Universe: dest.Universe,
			Watchlists: []pipeline.Watchlist{
				{Destination: dest.Top10, Size: 10},
				{Destination: dest.Top5, Size: 5},
			},
		},
		Ref:        ref,
		Notifier:   notification.NewMulti(backends...),
		Metrics:    prom,
		Health:     health,
		Log:        log,
		Start:      end.AddDate(0, 0, -profile.LookbackDays),
		End:        end,
		Politeness: profile.Politeness(),
	}

	runID := logger.NewRunID(profile.Mode, end)
	if err := runner.Run(logger.WithRunID(ctx, runID)); err != nil {
		log.Error("run failed", slog.String("run_id", runID), slog.String("error", err.Error()))
		return 1
	}
	return 0
}
