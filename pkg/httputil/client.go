package httputil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/geoset/pkg/buildinfo"
	"github.com/matzehuels/geoset/pkg/observability"
)

// maxResponseBytes bounds response bodies read by Client.
const maxResponseBytes = 32 << 20

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client posts payloads with retry.
type Client struct {
	HTTP     *http.Client
	Attempts int
	Delay    time.Duration
}

// NewClient creates a client with the given per-request timeout, 3 attempts
// and a 500ms initial backoff.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: timeout},
		Attempts: 3,
		Delay:    500 * time.Millisecond,
	}
}

// Post sends body to url and returns the response body of the first 2xx
// response. Network errors, 429 and 5xx responses are retried; other
// statuses fail immediately with a *StatusError.
func (c *Client) Post(ctx context.Context, url, contentType string, body []byte) ([]byte, error) {
	var out []byte
	err := Retry(ctx, c.Attempts, c.Delay, func() error {
		var err error
		out, err = c.post(ctx, url, contentType, body)
		return err
	})
	return out, err
}

func (c *Client) post(ctx context.Context, url, contentType string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, Retryable(err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, Retryable(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, Retryable(serr)
		}
		return nil, serr
	}
	return data, nil
}
