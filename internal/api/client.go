// Package api performs JSON requests against the challenge backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Empty is the result type for endpoints that return no payload.
type Empty struct{}

// Client sends requests to a fixed base origin.
type Client struct {
	base *url.URL
	http *http.Client
}

// New returns a Client for baseURL. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: base, http: httpClient}, nil
}

// BaseURL returns the origin requests are sent to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Request sends one request and decodes the response body into T.
func Request[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T
	data, err := c.do(ctx, method, path, body, true)
	if err != nil {
		return out, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		if _, ok := any(&out).(*Empty); ok {
			return out, nil
		}
		return out, &DecodingError{Err: io.ErrUnexpectedEOF}
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &DecodingError{Err: err}
	}
	return out, nil
}

// RequestNoResponse sends one request, validates the status and discards the body.
func RequestNoResponse(ctx context.Context, c *Client, method, path string, body any) error {
	_, err := c.do(ctx, method, path, body, false)
	return err
}

func (c *Client) endpoint(path string) (string, error) {
	ref, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil || ref.IsAbs() || ref.Host != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, path)
	}
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + ref.Path
	u.RawQuery = ref.RawQuery
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, readBody bool) ([]byte, error) {
	endpoint, err := c.endpoint(path)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("request failed", "request_id", requestID, "method", method, "path", path, "error", err)
		return nil, &NetworkError{Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()

	slog.Debug("request done",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"elapsed", time.Since(started),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &InvalidResponseError{StatusCode: resp.StatusCode}
	}
	if !readBody {
		return nil, nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	return data, nil
}
