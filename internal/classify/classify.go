// Package classify inspects decoded stream frames and dispatches them to
// ping/pong/alert/ticker handling. Classification is total: malformed
// frames come back as Unknown, never as a panic or error.
package classify

import (
	"bytes"
	"encoding/json"

	"github.com/stockpulse/alertfeed/internal/model"
	"github.com/stockpulse/alertfeed/internal/normalize"
)

// HeartbeatToken is the legacy liveness frame: a bare string, no JSON
// envelope. Treated as a pong for staleness purposes, no reply is sent.
const HeartbeatToken = "ping"

// Kind discriminates classified frames.
type Kind int

const (
	KindUnknown Kind = iota
	KindPing
	KindPong
	KindAlert
	KindTicker
)

func (k Kind) String() string {
	switch k {
	case KindPing:
		return "ping"
	case KindPong:
		return "pong"
	case KindAlert:
		return "alert"
	case KindTicker:
		return "ticker"
	default:
		return "unknown"
	}
}

// Action is the result of classifying one frame.
type Action struct {
	Kind Kind

	// Timestamp carried by ping/pong frames, 0 when absent.
	Timestamp int64

	// Alert payload, valid when Kind == KindAlert.
	Alert model.Alert

	// Ticker payload, valid when Kind == KindTicker.
	Ticker model.TickerSnapshot

	// Raw frame, retained for Unknown so callers can log it.
	Raw []byte
}

// envelope is the transport wrapper: a type discriminator plus an optional
// nested data payload.
type envelope struct {
	Type      string          `json:"type"`
	Timestamp float64         `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Classify maps one inbound frame to an Action.
func Classify(frame []byte) Action {
	// Legacy protocol shortcut: a bare heartbeat token is a liveness
	// signal and must not go through the JSON parser.
	if string(bytes.TrimSpace(frame)) == HeartbeatToken {
		return Action{Kind: KindPong}
	}

	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Action{Kind: KindUnknown, Raw: frame}
	}

	switch env.Type {
	case "ping":
		return Action{Kind: KindPing, Timestamp: int64(env.Timestamp)}
	case "pong":
		return Action{Kind: KindPong, Timestamp: int64(env.Timestamp)}
	case "alert":
		return Action{Kind: KindAlert, Alert: normalize.Alert(unwrap(frame, env), normalize.TradeTypeStream)}
	case "ticker":
		return Action{Kind: KindTicker, Ticker: normalize.Ticker(unwrap(frame, env))}
	default:
		return Action{Kind: KindUnknown, Raw: frame}
	}
}

// unwrap extracts the payload map. When the envelope carries a data
// property the inner value is the payload; otherwise the whole frame is.
func unwrap(frame []byte, env envelope) map[string]any {
	var raw map[string]any
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &raw); err == nil {
			return raw
		}
		return map[string]any{}
	}
	if err := json.Unmarshal(frame, &raw); err != nil {
		return map[string]any{}
	}
	return raw
}
