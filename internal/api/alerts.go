package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/stockpulse/alertfeed/internal/model"
	"github.com/stockpulse/alertfeed/internal/normalize"
)

// FetchFreeAlerts fetches a page of free-tier alerts. It never fails: any
// transport or server error resolves to an empty page after the configured
// number of silent retries. The free tier deliberately degrades rather
// than surfacing outages.
func (c *Client) FetchFreeAlerts(ctx context.Context, page, size int) model.Page {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var lastErr error
	for attempt := 0; attempt <= c.freeRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return model.EmptyPage(page, size)
			case <-time.After(c.retryBackoff):
			}
		}

		body, err := c.doRequest(ctx, "/free", query)
		if err != nil {
			lastErr = err
			continue
		}

		result, err := decodePage(body, page, size)
		if err != nil {
			lastErr = err
			continue
		}
		return result
	}

	c.logger.Warn("free alerts fetch degraded to empty page",
		"page", page,
		"retries", c.freeRetries,
		"error", lastErr,
	)
	return model.EmptyPage(page, size)
}

// FetchPaidAlerts fetches a page of paid alerts. The backend answers in
// one of three wire shapes (bare array, {data:[...]}, pre-paginated
// {content:[...],...}); all normalize to model.Page. Unlike the free
// path, errors propagate: callers must branch on *APIError kinds, in
// particular Unauthorized for session invalidation.
func (c *Client) FetchPaidAlerts(ctx context.Context, page, size int, sort string) (model.Page, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	if sort != "" {
		query.Set("sort", sort)
	}

	body, err := c.doRequest(ctx, "/paid", query)
	if err != nil {
		return model.Page{}, err
	}

	result, err := decodePage(body, page, size)
	if err != nil {
		return model.Page{}, err
	}
	return result, nil
}

// pageWire is the pre-paginated response shape. Pointer fields separate
// "absent" from zero so pass-through stays faithful.
type pageWire struct {
	Content       []map[string]any `json:"content"`
	Data          []map[string]any `json:"data"`
	Number        *int             `json:"number"`
	Size          *int             `json:"size"`
	Last          *bool            `json:"last"`
	TotalElements *int64           `json:"totalElements"`
}

// decodePage normalizes any of the three backend wire shapes into a Page.
func decodePage(body []byte, page, size int) (model.Page, error) {
	trimmed := bytes.TrimSpace(body)

	// Bare array
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var raws []map[string]any
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return model.Page{}, &APIError{Message: "decode array response", cause: err}
		}
		return arrayPage(raws, page, size), nil
	}

	var wire pageWire
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return model.Page{}, &APIError{Message: "decode response", cause: err}
	}

	// Envelope-wrapped array
	if wire.Content == nil && wire.Data != nil {
		return arrayPage(wire.Data, page, size), nil
	}

	result := model.Page{
		Content:       normalizeAll(wire.Content),
		Number:        page,
		Size:          size,
		Last:          true,
		TotalElements: int64(len(wire.Content)),
	}
	if wire.Number != nil {
		result.Number = *wire.Number
	}
	if wire.Size != nil {
		result.Size = *wire.Size
	}
	if wire.Last != nil {
		result.Last = *wire.Last
	}
	if wire.TotalElements != nil {
		result.TotalElements = *wire.TotalElements
	}
	return result, nil
}

// arrayPage wraps an unpaginated array in the canonical page shape.
func arrayPage(raws []map[string]any, page, size int) model.Page {
	return model.Page{
		Content:       normalizeAll(raws),
		Number:        page,
		Size:          size,
		Last:          true,
		TotalElements: int64(len(raws)),
	}
}

func normalizeAll(raws []map[string]any) []model.Alert {
	alerts := make([]model.Alert, 0, len(raws))
	for _, raw := range raws {
		alerts = append(alerts, normalize.Alert(raw, normalize.TradeTypeRest))
	}
	return alerts
}
