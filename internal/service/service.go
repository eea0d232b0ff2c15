// Package service composes the connection manager, classifier pipeline,
// broadcasters and REST client into the alert stream surface the
// presentation layer consumes.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/stockpulse/alertfeed/internal/api"
	"github.com/stockpulse/alertfeed/internal/broadcast"
	"github.com/stockpulse/alertfeed/internal/classify"
	"github.com/stockpulse/alertfeed/internal/connection"
	"github.com/stockpulse/alertfeed/internal/model"
	"github.com/stockpulse/alertfeed/internal/store"
)

// Config holds stream service settings.
type Config struct {
	AlertReplay  int // Replay buffer for late alert subscribers
	TickerReplay int // Replay buffer for late ticker subscribers
}

// DefaultConfig returns the documented replay sizes.
func DefaultConfig() Config {
	return Config{
		AlertReplay:  50,
		TickerReplay: 10,
	}
}

// Service is the alert stream service. One instance owns the process-wide
// shared connection.
type Service struct {
	cfg     Config
	logger  *slog.Logger
	manager *connection.Manager
	client  *api.Client
	cache   *store.Store // nil disables caching

	alerts *broadcast.Broadcaster[model.Alert]
	ticker *broadcast.Broadcaster[model.TickerSnapshot]

	stop      chan struct{}
	closeOnce sync.Once
}

// New creates the service and starts the event pump. cache may be nil.
func New(cfg Config, manager *connection.Manager, client *api.Client, cache *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AlertReplay < 1 {
		cfg.AlertReplay = DefaultConfig().AlertReplay
	}
	if cfg.TickerReplay < 1 {
		cfg.TickerReplay = DefaultConfig().TickerReplay
	}

	s := &Service{
		cfg:     cfg,
		logger:  logger,
		manager: manager,
		client:  client,
		cache:   cache,
		alerts:  broadcast.New[model.Alert](cfg.AlertReplay, logger.With("stream", "alerts")),
		ticker:  broadcast.New[model.TickerSnapshot](cfg.TickerReplay, logger.With("stream", "ticker")),
		stop:    make(chan struct{}),
	}

	go s.pump()
	return s
}

// Connect registers a logical subscriber and ensures the shared
// connection is up. Safe to call repeatedly.
func (s *Service) Connect(ctx context.Context) error {
	s.manager.AddSubscriber()
	return s.manager.Connect(ctx)
}

// Disconnect deregisters a logical subscriber; the last one out tears the
// connection down.
func (s *Service) Disconnect() {
	s.manager.RemoveSubscriber()
	if s.manager.Status().ActiveSubscribers == 0 {
		s.manager.Disconnect()
	}
}

// SubscribeAlerts attaches to the live alert broadcast. The most recent
// alerts (bounded replay) are delivered first. Cancel the subscription
// when done.
func (s *Service) SubscribeAlerts() *broadcast.Subscription[model.Alert] {
	return s.alerts.Subscribe()
}

// SubscribeTicker attaches to the live ticker broadcast.
func (s *Service) SubscribeTicker() *broadcast.Subscription[model.TickerSnapshot] {
	return s.ticker.Subscribe()
}

// FetchFreeAlerts delegates to the REST client. Never fails; outages
// degrade to an empty page.
func (s *Service) FetchFreeAlerts(ctx context.Context, page, size int) model.Page {
	return s.client.FetchFreeAlerts(ctx, page, size)
}

// FetchPaidAlerts delegates to the REST client. Errors propagate typed;
// callers react to api.IsUnauthorized by invalidating the session.
func (s *Service) FetchPaidAlerts(ctx context.Context, page, size int, sort string) (model.Page, error) {
	return s.client.FetchPaidAlerts(ctx, page, size, sort)
}

// Status exposes the connection state snapshot for health reporting.
func (s *Service) Status() connection.Status {
	return s.manager.Status()
}

// Close stops the pump, detaches all subscribers and closes the
// connection. The service is not reusable afterwards.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.manager.Disconnect()
		s.alerts.Close()
		s.ticker.Close()
	})
}

// pump moves classified events from the connection manager into the
// broadcasters, in receive order, stamping consumer-facing fields.
func (s *Service) pump() {
	for {
		select {
		case <-s.stop:
			return
		case act, ok := <-s.manager.Events():
			if !ok {
				return
			}
			s.dispatch(act)
		}
	}
}

func (s *Service) dispatch(act classify.Action) {
	switch act.Kind {
	case classify.KindAlert:
		a := act.Alert
		a.ReceivedAt = time.Now().UnixMilli()
		a.IsNew = true
		s.alerts.Publish(a)
		s.cacheAlert(a)

	case classify.KindTicker:
		s.ticker.Publish(act.Ticker)
	}
}

// cacheAlert persists alerts that carry a cache hint.
func (s *Service) cacheAlert(a model.Alert) {
	if s.cache == nil || a.CacheKey == "" {
		return
	}

	blob, err := json.Marshal(a)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.PutUntil(ctx, a.CacheKey, blob, a.CacheExpiresAt); err != nil {
		s.logger.Warn("alert cache write failed", "key", a.CacheKey, "error", err)
	}
}
