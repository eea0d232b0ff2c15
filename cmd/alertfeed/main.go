package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stockpulse/alertfeed/internal/api"
	"github.com/stockpulse/alertfeed/internal/config"
	"github.com/stockpulse/alertfeed/internal/connection"
	"github.com/stockpulse/alertfeed/internal/service"
	"github.com/stockpulse/alertfeed/internal/store"
	"github.com/stockpulse/alertfeed/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/alertfeed.yaml", "path to config file")
	healthAddr := flag.String("health", ":8080", "health endpoint listen address")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting alertfeed",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"stream_url", cfg.Stream.URL,
		"rest_url", cfg.REST.URL,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cache, err := store.Open(cfg.Cache.Path, logger)
	if err != nil {
		logger.Error("failed to open blob cache", "path", cfg.Cache.Path, "error", err)
		os.Exit(1)
	}
	defer cache.Close()

	janitor := store.NewJanitor(store.DefaultJanitorConfig(), cache, logger)
	if err := janitor.Start(ctx); err != nil {
		logger.Error("failed to start cache janitor", "error", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		janitor.Stop(stopCtx)
	}()

	restClient := api.NewClient(
		cfg.REST.URL,
		cfg.REST.Token,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Fetch.Timeout),
		api.WithRetries(cfg.Fetch.FreeRetries, cfg.Reconnect.BaseDelay),
	)

	manager := connection.NewManager(connection.ManagerConfig{
		URL:                  cfg.Stream.URL,
		Token:                cfg.Stream.Token,
		HeartbeatInterval:    cfg.Heartbeat.Interval,
		PongTimeout:          cfg.Heartbeat.PongTimeout,
		StaleAfter:           cfg.Heartbeat.StaleAfter,
		ReconnectBaseDelay:   cfg.Reconnect.BaseDelay,
		ReconnectMaxDelay:    cfg.Reconnect.MaxDelay,
		MaxReconnectAttempts: cfg.Reconnect.MaxAttempts,
	}, logger)

	svc := service.New(service.Config{
		AlertReplay:  cfg.Replay.Alerts,
		TickerReplay: cfg.Replay.Ticker,
	}, manager, restClient, cache, logger)
	defer svc.Close()

	// Health endpoint with connection state and counters
	healthServer := &http.Server{
		Addr:    *healthAddr,
		Handler: healthHandler(svc),
	}
	go func() {
		logger.Info("starting health server", "addr", *healthAddr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", "error", err)
		}
	}()
	defer healthServer.Close()

	if err := svc.Connect(ctx); err != nil {
		logger.Warn("initial connect failed, will retry", "error", err)
	}
	defer svc.Disconnect()

	alerts := svc.SubscribeAlerts()
	defer alerts.Cancel()
	ticker := svc.SubscribeTicker()
	defer ticker.Cancel()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case a, ok := <-alerts.C():
			if !ok {
				return
			}
			logger.Info("alert",
				"id", a.ID,
				"symbol", a.Symbol,
				"trade_type", a.TradeType,
				"ltp", a.LastTradedPrice,
				"percent_change", a.PercentChange,
			)
		case t, ok := <-ticker.C():
			if !ok {
				return
			}
			logger.Info("ticker",
				"title", t.Title,
				"last_price", t.LastPrice,
				"change_percent", t.ChangePercent,
			)
		}
	}
}

func healthHandler(svc *service.Service) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := svc.Status()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"state":              status.State.String(),
			"reconnect_attempts": status.ReconnectAttempts,
			"subscribers":        status.ActiveSubscribers,
			"terminal":           status.Terminal,
			"version":            version.String(),
		})
	})
	return mux
}
