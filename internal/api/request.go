package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ErrorKind buckets API failures the caller is expected to branch on.
type ErrorKind int

const (
	// KindServer covers generic server errors (5xx and anything unbucketed).
	KindServer ErrorKind = iota
	// KindConnectivity is a transport failure: refused, timed out, no
	// HTTP response at all. Reported with status 0.
	KindConnectivity
	// KindUnauthorized is a 401/403; the caller should invalidate the session.
	KindUnauthorized
	// KindNotFound is a 404.
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	default:
		return "server"
	}
}

// APIError represents a failed call to the alert backend.
type APIError struct {
	StatusCode int // 0 when no HTTP response was received
	Message    string
	Body       []byte
	cause      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("alert api error %d (%s): %s", e.StatusCode, e.Kind(), e.Message)
}

func (e *APIError) Unwrap() error { return e.cause }

// Kind classifies the failure.
func (e *APIError) Kind() ErrorKind {
	switch {
	case e.StatusCode == 0:
		return KindConnectivity
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return KindUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return KindNotFound
	default:
		return KindServer
	}
}

// IsUnauthorized reports whether err is an auth failure (401/403).
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind() == KindUnauthorized
}

// doRequest performs a GET against path and returns the raw body.
// Every failure comes back as *APIError; transport failures carry status 0.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &APIError{Message: "create request", cause: err}
	}

	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Message: err.Error(), cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Message: "read response", cause: err}
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}
