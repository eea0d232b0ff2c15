package connection

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/stockpulse/alertfeed/internal/classify"
)

// Manager owns the single shared connection to the alert backend. All
// logical subscribers (dashboard views, services) share it; a reference
// count decides whether a dropped connection is retried or treated as
// final teardown.
type Manager struct {
	cfg       ManagerConfig
	logger    *slog.Logger
	clock     Clock
	newClient func(ClientConfig, *slog.Logger) Client

	events chan classify.Action

	mu                sync.Mutex
	state             State
	client            Client
	connectInProgress bool
	attempts          int
	subscribers       int
	terminal          bool
	lastPingSent      int64 // ms since epoch, 0 until first ping
	lastPongRecv      int64 // ms since epoch
	heartbeatTimer    Timer
	pongTimer         Timer
	reconnectTimer    Timer

	// gen invalidates callbacks and read loops belonging to a previous
	// connection; bumped on every teardown.
	gen uint64
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock injects a Clock. Tests use a fake to drive heartbeat and
// backoff deterministically.
func WithClock(clock Clock) ManagerOption {
	return func(m *Manager) { m.clock = clock }
}

// WithClientFactory replaces the transport constructor.
func WithClientFactory(f func(ClientConfig, *slog.Logger) Client) ManagerOption {
	return func(m *Manager) { m.newClient = f }
}

// NewManager creates a Connection Manager. It does not dial until
// Connect is called.
func NewManager(cfg ManagerConfig, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.EventBufferSize < 1 {
		cfg.EventBufferSize = DefaultManagerConfig().EventBufferSize
	}

	m := &Manager{
		cfg:       cfg,
		logger:    logger,
		clock:     realClock{},
		newClient: NewClient,
		events:    make(chan classify.Action, cfg.EventBufferSize),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Events returns the channel of classified alert/ticker events, delivered
// in the order frames were received. Ping/pong frames are consumed
// internally and never appear here.
func (m *Manager) Events() <-chan classify.Action {
	return m.events
}

// Status returns a snapshot of state and counters.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		State:             m.state,
		ReconnectAttempts: m.attempts,
		ActiveSubscribers: m.subscribers,
		LastPingSentAt:    millisToTime(m.lastPingSent),
		LastPongRecvAt:    millisToTime(m.lastPongRecv),
		Terminal:          m.terminal,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// AddSubscriber registers one logical subscriber.
func (m *Manager) AddSubscriber() {
	m.mu.Lock()
	m.subscribers++
	m.mu.Unlock()
}

// RemoveSubscriber deregisters one logical subscriber.
func (m *Manager) RemoveSubscriber() {
	m.mu.Lock()
	if m.subscribers > 0 {
		m.subscribers--
	}
	m.mu.Unlock()
}

// Connect opens the shared connection. It refuses re-entrancy: while an
// attempt is in flight or an open connection exists the call is a no-op.
// Calling it after reconnect attempts were exhausted restarts the cycle.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.connectInProgress || m.state == StateConnected || m.state == StateConnecting {
		m.mu.Unlock()
		return nil
	}
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	if m.terminal {
		m.terminal = false
		m.attempts = 0
	}
	m.connectInProgress = true
	m.state = StateConnecting
	gen := m.gen
	cli := m.newClient(ClientConfig{
		URL:              m.cfg.URL,
		Token:            m.cfg.Token,
		HandshakeTimeout: DefaultClientConfig().HandshakeTimeout,
		WriteTimeout:     DefaultClientConfig().WriteTimeout,
		BufferSize:       DefaultClientConfig().BufferSize,
	}, m.logger)
	m.mu.Unlock()

	err := cli.Connect(ctx)

	m.mu.Lock()
	m.connectInProgress = false
	if m.gen != gen {
		// Torn down while dialing
		m.mu.Unlock()
		cli.Close()
		return nil
	}
	if err != nil {
		m.state = StateDisconnected
		m.mu.Unlock()
		m.logger.Warn("connect failed", "url", m.cfg.URL, "error", err)
		m.scheduleReconnect()
		return err
	}

	m.client = cli
	m.state = StateConnected
	m.attempts = 0
	m.lastPongRecv = m.clock.Now().UnixMilli()
	m.startHeartbeatLocked(gen)
	m.mu.Unlock()

	go m.readLoop(cli, gen)

	m.logger.Info("connected", "url", m.cfg.URL)
	return nil
}

// Disconnect tears the connection down: cancels heartbeat and reconnect
// timers, closes the transport, resets the attempt counter. Callable from
// any state, idempotent.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.state = StateClosing
	m.gen++
	m.stopTimersLocked()
	cli := m.client
	m.client = nil
	m.attempts = 0
	m.terminal = false
	m.state = StateDisconnected
	m.mu.Unlock()

	if cli != nil {
		cli.Close()
	}
	m.logger.Info("disconnected")
}

// readLoop consumes frames and errors from one connection generation.
func (m *Manager) readLoop(cli Client, gen uint64) {
	for {
		select {
		case err := <-cli.Errors():
			m.failConnection(gen, err)
			return

		case msg, ok := <-cli.Messages():
			if !ok {
				m.failConnection(gen, errors.New("message channel closed"))
				return
			}
			m.handleFrame(cli, gen, msg)
		}
	}
}

// handleFrame classifies one frame and acts on it. Frames are handled
// strictly in receive order; classification is synchronous and does no I/O.
func (m *Manager) handleFrame(cli Client, gen uint64, msg TimestampedMessage) {
	act := classify.Classify(msg.Data)

	switch act.Kind {
	case classify.KindPing:
		// Server-initiated heartbeat: answer immediately, echoing the
		// received timestamp. A live server counts for staleness too.
		m.recordPong(gen)
		reply, _ := json.Marshal(pongFrame{
			Type:       "pong",
			Timestamp:  act.Timestamp,
			ServerTime: m.clock.Now().UnixMilli(),
		})
		if err := cli.Send(reply); err != nil {
			m.logger.Debug("pong reply failed", "error", err)
		}

	case classify.KindPong:
		m.recordPong(gen)

	case classify.KindAlert, classify.KindTicker:
		select {
		case m.events <- act:
		default:
			m.logger.Warn("event buffer full, dropping", "kind", act.Kind.String())
		}

	default:
		m.logger.Debug("dropping unclassified frame", "size", len(msg.Data))
	}
}

// recordPong refreshes liveness and clears the pending pong timeout.
func (m *Manager) recordPong(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return
	}
	m.lastPongRecv = m.clock.Now().UnixMilli()
	if m.pongTimer != nil {
		m.pongTimer.Stop()
		m.pongTimer = nil
	}
}

// startHeartbeatLocked arms the first heartbeat tick. Caller holds mu.
func (m *Manager) startHeartbeatLocked(gen uint64) {
	m.heartbeatTimer = m.clock.AfterFunc(m.cfg.HeartbeatInterval, func() {
		m.heartbeatTick(gen)
	})
}

// heartbeatTick sends a ping, arms the pong timeout, checks staleness and
// reschedules itself.
func (m *Manager) heartbeatTick(gen uint64) {
	m.mu.Lock()
	if m.gen != gen || m.state != StateConnected {
		m.mu.Unlock()
		return
	}

	now := m.clock.Now()
	if now.UnixMilli()-m.lastPongRecv > m.cfg.StaleAfter.Milliseconds() {
		m.mu.Unlock()
		m.failConnection(gen, ErrStaleConnection)
		return
	}

	m.lastPingSent = now.UnixMilli()
	cli := m.client
	if m.pongTimer == nil {
		m.pongTimer = m.clock.AfterFunc(m.cfg.PongTimeout, func() {
			m.pongTimeout(gen)
		})
	}
	m.heartbeatTimer = m.clock.AfterFunc(m.cfg.HeartbeatInterval, func() {
		m.heartbeatTick(gen)
	})
	m.mu.Unlock()

	frame, _ := json.Marshal(pingFrame{Type: "ping", Timestamp: now.UnixMilli()})
	if err := cli.Send(frame); err != nil {
		m.logger.Debug("ping send failed", "error", err)
	}
}

// pongTimeout fires when no pong arrived inside the window.
func (m *Manager) pongTimeout(gen uint64) {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	m.pongTimer = nil
	m.mu.Unlock()

	m.failConnection(gen, ErrPongTimeout)
}

// failConnection tears down a failed connection and kicks off reconnect
// scheduling. Stale generations are ignored so a connection can only be
// failed once.
func (m *Manager) failConnection(gen uint64, err error) {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	m.gen++
	m.stopTimersLocked()
	cli := m.client
	m.client = nil
	m.state = StateDisconnected
	m.mu.Unlock()

	if cli != nil {
		cli.Close()
	}
	m.logger.Warn("connection lost", "error", err)
	m.scheduleReconnect()
}

// scheduleReconnect arms the next backoff attempt. The attempt counter is
// incremented before computing the delay; past the cap reconnection stops
// permanently until an external Connect call.
func (m *Manager) scheduleReconnect() {
	m.mu.Lock()
	if m.state != StateDisconnected || m.connectInProgress || m.reconnectTimer != nil {
		m.mu.Unlock()
		return
	}
	if m.subscribers <= 0 {
		m.mu.Unlock()
		m.logger.Info("no active subscribers, not reconnecting")
		return
	}

	m.attempts++
	if m.attempts > m.cfg.MaxReconnectAttempts {
		m.terminal = true
		attempts := m.attempts
		m.mu.Unlock()
		m.logger.Error("reconnect attempts exhausted, giving up",
			"attempts", attempts-1,
			"error", ErrRetriesExceeded,
		)
		return
	}

	delay := m.cfg.ReconnectBaseDelay << (m.attempts - 1)
	if delay > m.cfg.ReconnectMaxDelay {
		delay = m.cfg.ReconnectMaxDelay
	}
	attempt := m.attempts
	m.reconnectTimer = m.clock.AfterFunc(delay, func() {
		m.mu.Lock()
		m.reconnectTimer = nil
		m.mu.Unlock()
		m.Connect(context.Background())
	})
	m.mu.Unlock()

	m.logger.Info("reconnect scheduled", "attempt", attempt, "delay", delay)
}

// stopTimersLocked cancels all scheduled callbacks. Caller holds mu.
func (m *Manager) stopTimersLocked() {
	if m.heartbeatTimer != nil {
		m.heartbeatTimer.Stop()
		m.heartbeatTimer = nil
	}
	if m.pongTimer != nil {
		m.pongTimer.Stop()
		m.pongTimer = nil
	}
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
}
