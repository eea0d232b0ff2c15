package model

// StringDefault is the sentinel for absent or unparseable string fields.
const StringDefault = "N/A"

// Alert is the canonical normalized alert record. Every declared field is
// always present after normalization; only the two 52-week fields may be nil.
type Alert struct {
	ID        int64  // Backend alert ID
	Symbol    string // Upper-cased instrument symbol
	TradeType string // Upper-cased, e.g. "BUY", "SELL", "PREMIUM"

	// Prices
	LastTradedPrice float64
	AvgTradedPrice  float64
	Open            float64
	High            float64
	Low             float64
	Close           float64
	Week52High      *float64 // nil when the backend omits it
	Week52Low       *float64 // nil when the backend omits it

	// Volume
	Volume           int64 // Windowed traded volume
	ThresholdVolume  int64 // Volume threshold that fired the alert
	VolumePercentile float64

	// Change
	PercentChange float64
	NetChange     float64
	DelaySeconds  int64

	// Timing (ms since epoch)
	AlertTime    int64 // When the alert fired on the backend
	ExchangeTime int64 // Exchange timestamp of the triggering trade
	CreatedAt    int64 // Record creation time on the backend

	// Outbound links (sentinel "N/A" when absent)
	ChartURL    string
	NewsURL     string
	AnalysisURL string
	OptionURL   string
	SocialURL   string
	BrokerURL   string

	// Optional cache hint carried by some payloads
	CacheKey       string
	CacheExpiresAt int64 // ms since epoch, 0 when absent

	// UI-transient fields. Not part of the wire contract: the normalizer
	// never requires them, the publish path derives them.
	IsNew      bool
	IsBlinking bool
	ReceivedAt int64 // ms since epoch, stamped at publish
}

// TickerSnapshot is a normalized index/ticker banner update.
type TickerSnapshot struct {
	Title         string
	Type          string
	LastPrice     float64
	ChangePercent float64
	ReceivedAt    int64 // ms since epoch
}

// Page is the canonical paginated fetch result. All three backend wire
// shapes (bare array, data-wrapped, pre-paginated) collapse into this.
type Page struct {
	Content       []Alert
	Number        int
	Size          int
	Last          bool
	TotalElements int64
}

// EmptyPage returns the degraded free-tier result for a failed fetch.
func EmptyPage(number, size int) Page {
	return Page{
		Content:       []Alert{},
		Number:        number,
		Size:          size,
		Last:          true,
		TotalElements: 0,
	}
}
