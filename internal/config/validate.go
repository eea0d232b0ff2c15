package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are sane.
func (c *Config) Validate() error {
	if c.Stream.URL == "" {
		return errors.New("stream.url is required")
	}
	if !strings.HasPrefix(c.Stream.URL, "ws://") && !strings.HasPrefix(c.Stream.URL, "wss://") {
		return fmt.Errorf("stream.url must be a ws:// or wss:// URL, got %q", c.Stream.URL)
	}
	if c.REST.URL == "" {
		return errors.New("rest.url is required")
	}

	if c.Heartbeat.Interval <= 0 {
		return errors.New("heartbeat.interval must be positive")
	}
	if c.Heartbeat.PongTimeout <= 0 {
		return errors.New("heartbeat.pong_timeout must be positive")
	}
	if c.Heartbeat.StaleAfter <= 0 {
		return errors.New("heartbeat.stale_after must be positive")
	}

	if c.Reconnect.MaxAttempts < 1 {
		return fmt.Errorf("reconnect.max_attempts must be >= 1, got %d", c.Reconnect.MaxAttempts)
	}
	if c.Reconnect.BaseDelay <= 0 {
		return errors.New("reconnect.base_delay must be positive")
	}
	if c.Reconnect.MaxDelay < c.Reconnect.BaseDelay {
		return fmt.Errorf("reconnect.max_delay (%v) cannot be below base_delay (%v)",
			c.Reconnect.MaxDelay, c.Reconnect.BaseDelay)
	}

	if c.Replay.Alerts < 1 {
		return errors.New("replay.alerts must be >= 1")
	}
	if c.Replay.Ticker < 1 {
		return errors.New("replay.ticker must be >= 1")
	}

	if c.Fetch.FreeRetries < 0 {
		return errors.New("fetch.free_retries cannot be negative")
	}

	return nil
}
