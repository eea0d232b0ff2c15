package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// timeNow is swapped out by tests.
var timeNow = time.Now

func nowMillis() int64 {
	return timeNow().UnixMilli()
}

// pick returns the first candidate value that is present and usable.
// nil and empty strings are treated as absent.
func pick(raw map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func floatField(raw map[string]any, def float64, keys ...string) float64 {
	v, ok := pick(raw, keys...)
	if !ok {
		return def
	}
	f, ok := toFloat(v)
	if !ok {
		return def
	}
	return f
}

func intField(raw map[string]any, def int64, keys ...string) int64 {
	v, ok := pick(raw, keys...)
	if !ok {
		return def
	}
	f, ok := toFloat(v)
	if !ok {
		return def
	}
	return int64(f)
}

func nullableFloatField(raw map[string]any, keys ...string) *float64 {
	v, ok := pick(raw, keys...)
	if !ok {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func stringField(raw map[string]any, def string, keys ...string) string {
	v, ok := pick(raw, keys...)
	if !ok {
		return def
	}
	s := toString(v)
	if s == "" {
		return def
	}
	return s
}

// timeField resolves a timestamp to epoch milliseconds. Absent or
// unparseable values fall back to now.
func timeField(raw map[string]any, keys ...string) int64 {
	v, ok := pick(raw, keys...)
	if !ok {
		return nowMillis()
	}
	ms, ok := toMillis(v)
	if !ok {
		return nowMillis()
	}
	return ms
}

// toFloat coerces a loose value to a float64 with Number() semantics.
// NaN and infinities are rejected so downstream fields stay finite.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case bool:
		if n {
			f = 1
		}
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// toMillis normalizes a timestamp value to epoch milliseconds. Accepts
// ISO-8601 strings, numeric epochs in seconds (10-digit heuristic) or
// milliseconds (13-digit heuristic), and time.Time values.
func toMillis(v any) (int64, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UnixMilli(), true
	case string:
		s := strings.TrimSpace(t)
		// Numeric string epochs first
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return epochToMillis(n)
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UnixMilli(), true
			}
		}
		return 0, false
	default:
		f, ok := toFloat(v)
		if !ok {
			return 0, false
		}
		return epochToMillis(f)
	}
}

// epochToMillis applies the digit heuristic: values below 1e11 are seconds
// (10-digit epochs), anything larger is already milliseconds.
func epochToMillis(n float64) (int64, bool) {
	if n <= 0 {
		return 0, false
	}
	if n < 1e11 {
		return int64(n * 1000), true
	}
	return int64(n), true
}
