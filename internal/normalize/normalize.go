package normalize

import (
	"strings"

	"github.com/stockpulse/alertfeed/internal/model"
)

// Default trade types. The REST path and the stream path historically
// disagree on the fallback; both defaults are kept and the call site picks.
const (
	TradeTypeRest   = "PREMIUM" // paginated fetch payloads
	TradeTypeStream = "BUY"     // live stream payloads
)

// Alert maps a loosely-typed inbound record into a canonical Alert. It is a
// total function: unparseable input yields a fully-defaulted Alert.
// defaultTradeType is used when the payload carries no trade type; pass
// TradeTypeRest or TradeTypeStream depending on the path.
func Alert(raw map[string]any, defaultTradeType string) model.Alert {
	a := model.Alert{
		ID:        intField(raw, 0, "id", "alertId", "alert_id"),
		Symbol:    strings.ToUpper(stringField(raw, model.StringDefault, "symbol", "ticker", "stockSymbol", "stock_symbol")),
		TradeType: strings.ToUpper(stringField(raw, defaultTradeType, "tradeType", "trade_type", "side")),

		LastTradedPrice: floatField(raw, 0, "lastTradedPrice", "ltp", "last_traded_price", "lastPrice", "last_price"),
		AvgTradedPrice:  floatField(raw, 0, "avgTradedPrice", "atp", "avg_traded_price"),
		Open:            floatField(raw, 0, "open", "openPrice", "open_price"),
		High:            floatField(raw, 0, "high", "highPrice", "high_price", "dayHigh"),
		Low:             floatField(raw, 0, "low", "lowPrice", "low_price", "dayLow"),
		Close:           floatField(raw, 0, "close", "closePrice", "close_price", "prevClose", "prev_close"),
		Week52High:      nullableFloatField(raw, "week52High", "high52Week", "week_52_high", "52WeekHigh"),
		Week52Low:       nullableFloatField(raw, "week52Low", "low52Week", "week_52_low", "52WeekLow"),

		Volume:           intField(raw, 0, "volume", "vol", "tradedVolume", "traded_volume"),
		ThresholdVolume:  intField(raw, 0, "thresholdVolume", "threshold_volume"),
		VolumePercentile: floatField(raw, 0, "volumePercentile", "volume_percentile"),

		PercentChange: floatField(raw, 0, "percentChange", "perChange", "percent_change", "pChange"),
		NetChange:     floatField(raw, 0, "netChange", "net_change", "change"),
		DelaySeconds:  intField(raw, 0, "delaySeconds", "delay", "delay_seconds"),

		AlertTime:    timeField(raw, "alertTime", "alert_time", "timestamp"),
		ExchangeTime: timeField(raw, "exchangeTime", "exchange_time", "exchangeTimestamp"),
		CreatedAt:    timeField(raw, "createdAt", "created_at", "created"),

		ChartURL:    stringField(raw, model.StringDefault, "chartUrl", "chart_url"),
		NewsURL:     stringField(raw, model.StringDefault, "newsUrl", "news_url"),
		AnalysisURL: stringField(raw, model.StringDefault, "analysisUrl", "analysis_url"),
		OptionURL:   stringField(raw, model.StringDefault, "optionUrl", "option_url"),
		SocialURL:   stringField(raw, model.StringDefault, "socialUrl", "social_url"),
		BrokerURL:   stringField(raw, model.StringDefault, "brokerUrl", "broker_url"),

		CacheKey: stringField(raw, "", "cacheKey", "cache_key"),
	}

	if a.CacheKey != "" {
		a.CacheExpiresAt = timeField(raw, "cacheExpiresAt", "cacheExpiry", "cache_expiry")
	}

	return a
}

// Ticker maps a loosely-typed inbound record into a TickerSnapshot.
func Ticker(raw map[string]any) model.TickerSnapshot {
	return model.TickerSnapshot{
		Title:         stringField(raw, model.StringDefault, "title", "name"),
		Type:          strings.ToUpper(stringField(raw, model.StringDefault, "type", "tickerType", "ticker_type")),
		LastPrice:     floatField(raw, 0, "lastPrice", "last_price", "ltp"),
		ChangePercent: floatField(raw, 0, "changePercent", "change_percent", "pChange"),
		ReceivedAt:    nowMillis(),
	}
}

// AlertToMap projects a canonical Alert back into its camelCase wire shape.
// Feeding the result through Alert again is idempotent.
func AlertToMap(a model.Alert) map[string]any {
	m := map[string]any{
		"id":               a.ID,
		"symbol":           a.Symbol,
		"tradeType":        a.TradeType,
		"lastTradedPrice":  a.LastTradedPrice,
		"avgTradedPrice":   a.AvgTradedPrice,
		"open":             a.Open,
		"high":             a.High,
		"low":              a.Low,
		"close":            a.Close,
		"volume":           a.Volume,
		"thresholdVolume":  a.ThresholdVolume,
		"volumePercentile": a.VolumePercentile,
		"percentChange":    a.PercentChange,
		"netChange":        a.NetChange,
		"delaySeconds":     a.DelaySeconds,
		"alertTime":        a.AlertTime,
		"exchangeTime":     a.ExchangeTime,
		"createdAt":        a.CreatedAt,
		"chartUrl":         a.ChartURL,
		"newsUrl":          a.NewsURL,
		"analysisUrl":      a.AnalysisURL,
		"optionUrl":        a.OptionURL,
		"socialUrl":        a.SocialURL,
		"brokerUrl":        a.BrokerURL,
	}
	if a.Week52High != nil {
		m["week52High"] = *a.Week52High
	}
	if a.Week52Low != nil {
		m["week52Low"] = *a.Week52Low
	}
	if a.CacheKey != "" {
		m["cacheKey"] = a.CacheKey
		m["cacheExpiresAt"] = a.CacheExpiresAt
	}
	return m
}
