package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultHeartbeatInterval = 15 * time.Second
	DefaultPongTimeout       = 10 * time.Second
	DefaultStaleAfter        = 15 * time.Second
	DefaultReconnectBase     = 1 * time.Second
	DefaultReconnectMax      = 30 * time.Second
	DefaultMaxAttempts       = 5
	DefaultAlertReplay       = 50
	DefaultTickerReplay      = 10
	DefaultFetchTimeout      = 30 * time.Second
	DefaultFreeRetries       = 2
	DefaultCachePath         = "alertfeed.db"
)

func (c *Config) applyDefaults() {
	if c.Heartbeat.Interval == 0 {
		c.Heartbeat.Interval = DefaultHeartbeatInterval
	}
	if c.Heartbeat.PongTimeout == 0 {
		c.Heartbeat.PongTimeout = DefaultPongTimeout
	}
	if c.Heartbeat.StaleAfter == 0 {
		c.Heartbeat.StaleAfter = DefaultStaleAfter
	}

	if c.Reconnect.BaseDelay == 0 {
		c.Reconnect.BaseDelay = DefaultReconnectBase
	}
	if c.Reconnect.MaxDelay == 0 {
		c.Reconnect.MaxDelay = DefaultReconnectMax
	}
	if c.Reconnect.MaxAttempts == 0 {
		c.Reconnect.MaxAttempts = DefaultMaxAttempts
	}

	if c.Replay.Alerts == 0 {
		c.Replay.Alerts = DefaultAlertReplay
	}
	if c.Replay.Ticker == 0 {
		c.Replay.Ticker = DefaultTickerReplay
	}

	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = DefaultFetchTimeout
	}
	if c.Fetch.FreeRetries == 0 {
		c.Fetch.FreeRetries = DefaultFreeRetries
	}

	if c.Cache.Path == "" {
		c.Cache.Path = DefaultCachePath
	}
}
