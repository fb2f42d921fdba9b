// Package upstream issues authenticated HTTP requests to the third-party
// APIs the relay fronts (GitHub REST, GitHub GraphQL, LeetCode GraphQL and
// the raw content mirror) and normalizes failures into a typed taxonomy.
//
// The clients never retry automatically; each proxy handler decides
// whether to surface a failure or degrade.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ClientConfig configures the shared HTTP base client.
type ClientConfig struct {
	// Name identifies the upstream in errors, logs and metrics.
	Name string

	// Timeout bounds a single upstream call end to end.
	Timeout time.Duration

	// UserAgent is sent on every request.
	UserAgent string

	// MaxIdleConns and MaxIdleConnsPerHost tune the connection pool.
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

// Client is the base HTTP client shared by the upstream adapters. It
// provides connection pooling and failure normalization; the concrete
// adapters (GitHub, LeetCode) embed it.
type Client struct {
	config ClientConfig
	client *http.Client
}

// NewClient creates a base client with a pooled transport.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 32
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = 8
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		config: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}
}

// Name returns the upstream's configured name.
func (c *Client) Name() string {
	return c.config.Name
}

// Do performs a single HTTP request. Transport failures come back as
// NetworkError; the response is returned as-is for any HTTP status so
// callers can forward 304s and read error bodies themselves.
func (c *Client) Do(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.DebugContext(ctx, "sending upstream request",
		"upstream", c.config.Name,
		"method", method,
		"url", url,
	)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Upstream: c.config.Name, Cause: err}
	}
	return resp, nil
}

// graphQLEnvelope is the standard GraphQL response wrapper.
type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions"`
}

// DoGraphQL posts {query, variables} to url and decodes the data payload
// into out. A non-2xx status OR a non-empty errors array in a 2xx body are
// both reported as HTTPError; a 2xx body with errors is never success.
func (c *Client) DoGraphQL(ctx context.Context, url, query string, variables map[string]any, headers map[string]string, out any) error {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	resp, err := c.Do(ctx, http.MethodPost, url, payload, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Upstream: c.config.Name, Cause: err}
	}

	var envelope graphQLEnvelope
	// A non-JSON error body is still useful as a message.
	decodeErr := json.Unmarshal(raw, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := resp.Status
		if decodeErr == nil && len(envelope.Errors) > 0 {
			msg = envelope.Errors[0].Message
		} else if len(raw) > 0 {
			msg = fmt.Sprintf("%s: %s", resp.Status, truncate(string(raw), 512))
		}
		return &HTTPError{
			Upstream:   c.config.Name,
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}

	if decodeErr != nil {
		return &DataError{
			Upstream: c.config.Name,
			Field:    "body",
			Message:  fmt.Sprintf("malformed GraphQL response: %v", decodeErr),
		}
	}

	if len(envelope.Errors) > 0 {
		first := envelope.Errors[0]
		return &HTTPError{
			Upstream:   c.config.Name,
			StatusCode: resp.StatusCode,
			Message:    first.Message,
			Details:    first.Extensions,
		}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return &DataError{
				Upstream: c.config.Name,
				Field:    "data",
				Message:  fmt.Sprintf("failed to decode data payload: %v", err),
			}
		}
	}

	return nil
}

// Close releases idle pooled connections.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}

func decodeJSONBody(r io.Reader, out any) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
