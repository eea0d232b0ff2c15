package classify

import (
	"testing"
)

func TestClassify_HeartbeatToken(t *testing.T) {
	for _, frame := range []string{"ping", " ping ", "ping\n"} {
		act := Classify([]byte(frame))
		if act.Kind != KindPong {
			t.Errorf("Classify(%q).Kind = %v, want pong liveness signal", frame, act.Kind)
		}
	}
}

func TestClassify_MalformedNeverPanics(t *testing.T) {
	frames := []string{
		"",
		"{",
		"{]",
		"not json at all",
		`{"type": }`,
		"\x00\x01\x02",
		`{"type":"alert","data":`,
		"[1,2,3]",
		"null",
		"42",
	}

	for _, frame := range frames {
		act := Classify([]byte(frame))
		if act.Kind != KindUnknown {
			t.Errorf("Classify(%q).Kind = %v, want unknown", frame, act.Kind)
		}
	}
}

func TestClassify_PingPong(t *testing.T) {
	t.Run("ping with timestamp", func(t *testing.T) {
		act := Classify([]byte(`{"type":"ping","timestamp":1700000000123}`))
		if act.Kind != KindPing {
			t.Fatalf("Kind = %v, want ping", act.Kind)
		}
		if act.Timestamp != 1700000000123 {
			t.Errorf("Timestamp = %d, want 1700000000123", act.Timestamp)
		}
	})

	t.Run("ping without timestamp", func(t *testing.T) {
		act := Classify([]byte(`{"type":"ping"}`))
		if act.Kind != KindPing || act.Timestamp != 0 {
			t.Errorf("got %+v, want ping with zero timestamp", act)
		}
	})

	t.Run("pong", func(t *testing.T) {
		act := Classify([]byte(`{"type":"pong","timestamp":99}`))
		if act.Kind != KindPong || act.Timestamp != 99 {
			t.Errorf("got %+v, want pong ts=99", act)
		}
	})
}

func TestClassify_AlertEnvelope(t *testing.T) {
	frame := []byte(`{"type":"alert","data":{"symbol":"aapl","lastTradedPrice":190.5}}`)

	act := Classify(frame)
	if act.Kind != KindAlert {
		t.Fatalf("Kind = %v, want alert", act.Kind)
	}
	if act.Alert.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want AAPL", act.Alert.Symbol)
	}
	if act.Alert.LastTradedPrice != 190.5 {
		t.Errorf("LastTradedPrice = %v, want 190.5", act.Alert.LastTradedPrice)
	}
	// Stream path default
	if act.Alert.TradeType != "BUY" {
		t.Errorf("TradeType = %q, want BUY", act.Alert.TradeType)
	}
}

func TestClassify_AlertWithoutEnvelope(t *testing.T) {
	// No data property: the whole frame is the payload
	frame := []byte(`{"type":"alert","symbol":"msft","ltp":420.1}`)

	act := Classify(frame)
	if act.Kind != KindAlert {
		t.Fatalf("Kind = %v, want alert", act.Kind)
	}
	if act.Alert.Symbol != "MSFT" {
		t.Errorf("Symbol = %q, want MSFT", act.Alert.Symbol)
	}
	if act.Alert.LastTradedPrice != 420.1 {
		t.Errorf("LastTradedPrice = %v, want 420.1", act.Alert.LastTradedPrice)
	}
}

func TestClassify_Ticker(t *testing.T) {
	frame := []byte(`{"type":"ticker","data":{"title":"SENSEX","lastPrice":73000.5,"changePercent":0.4}}`)

	act := Classify(frame)
	if act.Kind != KindTicker {
		t.Fatalf("Kind = %v, want ticker", act.Kind)
	}
	if act.Ticker.Title != "SENSEX" {
		t.Errorf("Title = %q, want SENSEX", act.Ticker.Title)
	}
	if act.Ticker.LastPrice != 73000.5 {
		t.Errorf("LastPrice = %v", act.Ticker.LastPrice)
	}
}

func TestClassify_UnknownType(t *testing.T) {
	for _, frame := range []string{
		`{"type":"bogus","data":{}}`,
		`{"data":{"symbol":"AAPL"}}`,
		`{"foo":"bar"}`,
	} {
		act := Classify([]byte(frame))
		if act.Kind != KindUnknown {
			t.Errorf("Classify(%q).Kind = %v, want unknown", frame, act.Kind)
		}
		if string(act.Raw) != frame {
			t.Errorf("Raw not retained for %q", frame)
		}
	}
}

func TestClassify_MalformedDataPayload(t *testing.T) {
	// data is not an object: classified by type, payload fully defaulted
	act := Classify([]byte(`{"type":"alert","data":[1,2,3]}`))
	if act.Kind != KindAlert {
		t.Fatalf("Kind = %v, want alert", act.Kind)
	}
	if act.Alert.Symbol != "N/A" {
		t.Errorf("Symbol = %q, want fully-defaulted alert", act.Alert.Symbol)
	}
}
