// Package config loads and validates the alertfeed YAML configuration.
package config

import "time"

// Config is the root configuration for an alertfeed instance.
type Config struct {
	Stream    StreamConfig    `yaml:"stream"`
	REST      RESTConfig      `yaml:"rest"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	Reconnect ReconnectConfig `yaml:"reconnect"`
	Replay    ReplayConfig    `yaml:"replay"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Cache     CacheConfig     `yaml:"cache"`
}

// StreamConfig holds the WebSocket stream settings.
type StreamConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// RESTConfig holds the alert backend REST settings.
type RESTConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// HeartbeatConfig holds liveness probe settings.
type HeartbeatConfig struct {
	Interval    time.Duration `yaml:"interval"`
	PongTimeout time.Duration `yaml:"pong_timeout"`
	StaleAfter  time.Duration `yaml:"stale_after"`
}

// ReconnectConfig holds backoff settings.
type ReconnectConfig struct {
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// ReplayConfig holds broadcast replay buffer sizes.
type ReplayConfig struct {
	Alerts int `yaml:"alerts"`
	Ticker int `yaml:"ticker"`
}

// FetchConfig holds REST fetch settings.
type FetchConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	FreeRetries int           `yaml:"free_retries"`
}

// CacheConfig holds the blob cache settings.
type CacheConfig struct {
	Path string `yaml:"path"`
}
