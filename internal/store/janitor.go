package store

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// JanitorConfig holds sweep settings.
type JanitorConfig struct {
	Interval time.Duration // Sweep interval (default: 5m)
	Timeout  time.Duration // Per-sweep timeout (default: 10s)
}

// DefaultJanitorConfig returns sensible defaults.
func DefaultJanitorConfig() JanitorConfig {
	return JanitorConfig{
		Interval: 5 * time.Minute,
		Timeout:  10 * time.Second,
	}
}

// Janitor periodically purges expired entries from a Store.
type Janitor struct {
	cfg    JanitorConfig
	store  *Store
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewJanitor creates a Janitor. It does not sweep until Start is called.
func NewJanitor(cfg JanitorConfig, store *Store, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultJanitorConfig().Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultJanitorConfig().Timeout
	}
	return &Janitor{
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
}

// Start begins the sweep loop.
func (j *Janitor) Start(ctx context.Context) error {
	j.ctx, j.cancel = context.WithCancel(ctx)

	j.wg.Add(1)
	go j.run()

	j.logger.Info("cache janitor started", "interval", j.cfg.Interval)
	return nil
}

// Stop gracefully shuts down the janitor.
func (j *Janitor) Stop(ctx context.Context) error {
	if j.cancel != nil {
		j.cancel()
	}

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		j.logger.Info("cache janitor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main sweep loop.
func (j *Janitor) run() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.cfg.Interval)
	defer ticker.Stop()

	// Sweep immediately on start.
	j.sweep()

	for {
		select {
		case <-j.ctx.Done():
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

// sweep purges expired entries once.
func (j *Janitor) sweep() {
	start := time.Now()

	ctx, cancel := context.WithTimeout(j.ctx, j.cfg.Timeout)
	defer cancel()

	purged, err := j.store.PurgeExpired(ctx)
	if err != nil {
		j.logger.Warn("cache sweep failed", "error", err)
		return
	}

	if purged > 0 {
		j.logger.Info("cache sweep complete",
			"purged", purged,
			"duration", time.Since(start),
		)
	}
}
