package clob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultRateLimitCooldown = 30 * time.Second

type Client struct {
	host       string
	httpClient *http.Client
	cooldown   time.Duration
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host string, cooldown time.Duration) *Client {
	if host == "" {
		host = "https://clob.polymarket.com"
	}
	host = strings.TrimRight(host, "/")
	if cooldown <= 0 {
		cooldown = defaultRateLimitCooldown
	}
	return &Client{
		host:       host,
		httpClient: httpClient,
		cooldown:   cooldown,
	}
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// GetSellPrice returns the sell-side price for one outcome token. A 429 from
// the remote is never surfaced: the client sleeps the cooldown and retries,
// without an attempt cap, since the remote limit is expected to clear.
func (c *Client) GetSellPrice(ctx context.Context, tokenID string) (decimal.Decimal, error) {
	if tokenID == "" {
		return decimal.Zero, fmt.Errorf("token_id is required")
	}
	query := url.Values{}
	query.Set("token_id", tokenID)
	query.Set("side", "SELL")
	for {
		body, err := c.doRequest(ctx, "/price", query)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests {
			if err := sleep(ctx, c.cooldown); err != nil {
				return decimal.Zero, err
			}
			continue
		}
		if err != nil {
			return decimal.Zero, err
		}
		return parsePrice(body)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
