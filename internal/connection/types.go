package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no pong)")
	ErrPongTimeout     = errors.New("pong timeout")
	ErrAlreadyClosed   = errors.New("already closed")
	ErrRetriesExceeded = errors.New("max reconnect attempts exceeded")
)

// State is the connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	default:
		return "disconnected"
	}
}

// TimestampedMessage wraps raw frame data with its receive timestamp.
type TimestampedMessage struct {
	Data       []byte
	ReceivedAt time.Time
}

// pingFrame is the outbound liveness probe.
type pingFrame struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// pongFrame answers a server-initiated ping, echoing its timestamp.
type pongFrame struct {
	Type       string `json:"type"`
	Timestamp  int64  `json:"timestamp"`
	ServerTime int64  `json:"serverTime"`
}

// ClientConfig configures a single WebSocket client.
type ClientConfig struct {
	URL              string        // WebSocket URL of the alert stream
	Token            string        // Bearer token, empty for anonymous
	HandshakeTimeout time.Duration // Dial handshake deadline
	WriteTimeout     time.Duration // Write deadline for sends
	BufferSize       int           // Inbound message channel buffer
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       1000,
	}
}

// ManagerConfig configures the Connection Manager.
type ManagerConfig struct {
	URL   string // WebSocket URL of the alert stream
	Token string // Bearer token, empty for anonymous

	HeartbeatInterval time.Duration // Interval between outbound pings
	PongTimeout       time.Duration // Window to receive a pong after a ping
	StaleAfter        time.Duration // Max silence since last pong before failing

	ReconnectBaseDelay   time.Duration // First backoff delay
	ReconnectMaxDelay    time.Duration // Backoff cap
	MaxReconnectAttempts int           // Attempts before going terminal

	EventBufferSize int // Buffer for the outbound event channel
}

// DefaultManagerConfig returns the documented protocol defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		HeartbeatInterval:    15 * time.Second,
		PongTimeout:          10 * time.Second,
		StaleAfter:           15 * time.Second,
		ReconnectBaseDelay:   1 * time.Second,
		ReconnectMaxDelay:    30 * time.Second,
		MaxReconnectAttempts: 5,
		EventBufferSize:      256,
	}
}

func millisToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// Status is a point-in-time snapshot of manager state and counters.
type Status struct {
	State             State
	ReconnectAttempts int
	ActiveSubscribers int
	LastPingSentAt    time.Time
	LastPongRecvAt    time.Time
	Terminal          bool // true once reconnect attempts are exhausted
}
