// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/granule-search/pkg/types"
)

// Client performs GET requests and returns the status code and full body.
// Non-2xx statuses are returned as-is; err is set only when the request could
// not be completed.
type Client struct {
	HTTP      *http.Client
	UserAgent string

	// MaxRetries is the number of retries on HTTP 429. Zero disables retrying.
	MaxRetries int
}

// NewClient builds a Client from the shared HTTP settings.
func NewClient(cfg types.HTTPConfig, maxRetries int) *Client {
	return &Client{
		HTTP:       &http.Client{Timeout: cfg.Timeout},
		UserAgent:  cfg.UserAgent,
		MaxRetries: maxRetries,
	}
}

// Get fetches url.
func (c *Client) Get(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response body: %w", err)
	}
	return resp.StatusCode, body, nil
}
