package normalize

import (
	"math"
	"testing"
	"time"

	"github.com/stockpulse/alertfeed/internal/model"
)

func TestAlert_FullPayload(t *testing.T) {
	raw := map[string]any{
		"id":              float64(42),
		"symbol":          "tsla",
		"tradeType":       "sell",
		"lastTradedPrice": 250.5,
		"avgTradedPrice":  249.9,
		"open":            248.0,
		"high":            252.0,
		"low":             247.0,
		"close":           249.0,
		"week52High":      300.0,
		"week52Low":       150.0,
		"volume":          float64(1_000_000),
		"percentChange":   1.5,
		"netChange":       3.7,
		"alertTime":       float64(1700000000000),
		"chartUrl":        "https://charts.example.com/TSLA",
	}

	a := Alert(raw, TradeTypeStream)

	if a.ID != 42 {
		t.Errorf("ID = %d, want 42", a.ID)
	}
	if a.Symbol != "TSLA" {
		t.Errorf("Symbol = %q, want TSLA", a.Symbol)
	}
	if a.TradeType != "SELL" {
		t.Errorf("TradeType = %q, want SELL", a.TradeType)
	}
	if a.LastTradedPrice != 250.5 {
		t.Errorf("LastTradedPrice = %v, want 250.5", a.LastTradedPrice)
	}
	if a.Week52High == nil || *a.Week52High != 300.0 {
		t.Errorf("Week52High = %v, want 300.0", a.Week52High)
	}
	if a.Week52Low == nil || *a.Week52Low != 150.0 {
		t.Errorf("Week52Low = %v, want 150.0", a.Week52Low)
	}
	if a.Volume != 1_000_000 {
		t.Errorf("Volume = %d, want 1000000", a.Volume)
	}
	if a.AlertTime != 1700000000000 {
		t.Errorf("AlertTime = %d, want 1700000000000", a.AlertTime)
	}
	if a.ChartURL != "https://charts.example.com/TSLA" {
		t.Errorf("ChartURL = %q", a.ChartURL)
	}
}

func TestAlert_Defaults(t *testing.T) {
	a := Alert(map[string]any{}, TradeTypeStream)

	if a.ID != 0 {
		t.Errorf("ID = %d, want 0", a.ID)
	}
	if a.Symbol != model.StringDefault {
		t.Errorf("Symbol = %q, want %q", a.Symbol, model.StringDefault)
	}
	if a.TradeType != "BUY" {
		t.Errorf("TradeType = %q, want BUY", a.TradeType)
	}
	if a.LastTradedPrice != 0 || a.Open != 0 || a.High != 0 || a.Low != 0 || a.Close != 0 {
		t.Error("price fields should default to 0")
	}
	if a.Week52High != nil || a.Week52Low != nil {
		t.Error("52-week fields should default to nil")
	}
	for name, url := range map[string]string{
		"ChartURL": a.ChartURL, "NewsURL": a.NewsURL, "AnalysisURL": a.AnalysisURL,
		"OptionURL": a.OptionURL, "SocialURL": a.SocialURL, "BrokerURL": a.BrokerURL,
	} {
		if url != model.StringDefault {
			t.Errorf("%s = %q, want %q", name, url, model.StringDefault)
		}
	}
}

func TestAlert_TradeTypeDefaultPerPath(t *testing.T) {
	if got := Alert(map[string]any{}, TradeTypeRest).TradeType; got != "PREMIUM" {
		t.Errorf("REST default = %q, want PREMIUM", got)
	}
	if got := Alert(map[string]any{}, TradeTypeStream).TradeType; got != "BUY" {
		t.Errorf("stream default = %q, want BUY", got)
	}
}

func TestAlert_LegacyAliases(t *testing.T) {
	raw := map[string]any{
		"ticker":            "nvda",
		"ltp":               "875.25",
		"percent_change":    "2.1",
		"threshold_volume":  float64(500000),
		"trade_type":        "buy",
	}

	a := Alert(raw, TradeTypeRest)

	if a.Symbol != "NVDA" {
		t.Errorf("Symbol = %q, want NVDA", a.Symbol)
	}
	if a.LastTradedPrice != 875.25 {
		t.Errorf("LastTradedPrice = %v, want 875.25", a.LastTradedPrice)
	}
	if a.PercentChange != 2.1 {
		t.Errorf("PercentChange = %v, want 2.1", a.PercentChange)
	}
	if a.ThresholdVolume != 500000 {
		t.Errorf("ThresholdVolume = %d, want 500000", a.ThresholdVolume)
	}
	if a.TradeType != "BUY" {
		t.Errorf("TradeType = %q, want BUY", a.TradeType)
	}
}

func TestAlert_CanonicalKeyWinsOverAlias(t *testing.T) {
	raw := map[string]any{
		"lastTradedPrice": 100.0,
		"ltp":             50.0,
	}
	if got := Alert(raw, TradeTypeStream).LastTradedPrice; got != 100.0 {
		t.Errorf("LastTradedPrice = %v, want canonical 100.0", got)
	}
}

func TestAlert_UnparseableNumbers(t *testing.T) {
	raw := map[string]any{
		"lastTradedPrice": "not-a-number",
		"volume":          map[string]any{"nested": true},
		"percentChange":   math.NaN(),
	}

	a := Alert(raw, TradeTypeStream)

	if a.LastTradedPrice != 0 {
		t.Errorf("LastTradedPrice = %v, want 0", a.LastTradedPrice)
	}
	if a.Volume != 0 {
		t.Errorf("Volume = %d, want 0", a.Volume)
	}
	if a.PercentChange != 0 {
		t.Errorf("PercentChange = %v, want 0 for NaN input", a.PercentChange)
	}
}

func TestAlert_AllFieldsFinite(t *testing.T) {
	inputs := []map[string]any{
		{},
		{"lastTradedPrice": math.Inf(1), "week52High": math.NaN()},
		{"symbol": nil, "volume": "", "alertTime": "garbage"},
	}

	for _, raw := range inputs {
		a := Alert(raw, TradeTypeStream)
		for name, v := range map[string]float64{
			"LastTradedPrice": a.LastTradedPrice,
			"AvgTradedPrice":  a.AvgTradedPrice,
			"Open":            a.Open,
			"High":            a.High,
			"Low":             a.Low,
			"Close":           a.Close,
			"PercentChange":   a.PercentChange,
			"NetChange":       a.NetChange,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("%s = %v, want finite", name, v)
			}
		}
		if a.Symbol == "" || a.TradeType == "" {
			t.Error("string fields must be non-empty")
		}
	}
}

func TestTimestampCoercion(t *testing.T) {
	fixed := time.UnixMilli(1800000000000)
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = time.Now }()

	tests := []struct {
		name  string
		input any
		want  int64
	}{
		{"ten digit seconds", float64(1700000000), 1700000000000},
		{"thirteen digit millis", float64(1700000000000), 1700000000000},
		{"numeric string seconds", "1700000000", 1700000000000},
		{"iso 8601", "2023-11-14T22:13:20Z", 1700000000000},
		{"unparseable falls back to now", "not-a-date", fixed.UnixMilli()},
		{"absent falls back to now", nil, fixed.UnixMilli()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := map[string]any{}
			if tt.input != nil {
				raw["alertTime"] = tt.input
			}
			if got := Alert(raw, TradeTypeStream).AlertTime; got != tt.want {
				t.Errorf("AlertTime = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAlert_Idempotent(t *testing.T) {
	raw := map[string]any{
		"id":         float64(7),
		"ticker":     "aapl",
		"ltp":        190.5,
		"week52High": 210.0,
		"alertTime":  float64(1700000000),
	}

	once := Alert(raw, TradeTypeStream)
	twice := Alert(AlertToMap(once), TradeTypeStream)

	if once.ID != twice.ID || once.Symbol != twice.Symbol ||
		once.TradeType != twice.TradeType ||
		once.LastTradedPrice != twice.LastTradedPrice ||
		once.AlertTime != twice.AlertTime ||
		once.ChartURL != twice.ChartURL {
		t.Errorf("normalize not idempotent:\nonce  = %+v\ntwice = %+v", once, twice)
	}
	if twice.Week52High == nil || *twice.Week52High != *once.Week52High {
		t.Errorf("Week52High not preserved: %v vs %v", once.Week52High, twice.Week52High)
	}
}

func TestTicker(t *testing.T) {
	fixed := time.UnixMilli(1800000000000)
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = time.Now }()

	t.Run("full payload", func(t *testing.T) {
		snap := Ticker(map[string]any{
			"title":         "NIFTY 50",
			"type":          "index",
			"lastPrice":     22123.45,
			"changePercent": -0.8,
		})

		if snap.Title != "NIFTY 50" {
			t.Errorf("Title = %q", snap.Title)
		}
		if snap.Type != "INDEX" {
			t.Errorf("Type = %q, want INDEX", snap.Type)
		}
		if snap.LastPrice != 22123.45 {
			t.Errorf("LastPrice = %v", snap.LastPrice)
		}
		if snap.ChangePercent != -0.8 {
			t.Errorf("ChangePercent = %v", snap.ChangePercent)
		}
		if snap.ReceivedAt != fixed.UnixMilli() {
			t.Errorf("ReceivedAt = %d", snap.ReceivedAt)
		}
	})

	t.Run("empty payload", func(t *testing.T) {
		snap := Ticker(map[string]any{})
		if snap.Title != model.StringDefault || snap.Type != model.StringDefault {
			t.Errorf("string defaults missing: %+v", snap)
		}
		if snap.LastPrice != 0 || snap.ChangePercent != 0 {
			t.Errorf("numeric defaults missing: %+v", snap)
		}
	})
}
