// Package panora talks to the Panora off-chain pricing service. Panora
// exposes no on-chain pool state, so it can only confirm that a pair is
// tradable; the resulting quote is a flat-discount approximation.
package panora

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultDiscountBps is the flat discount applied when synthesizing a
// quote for a confirmed pair. This is a documented approximation: the
// API confirms existence, not depth.
const DefaultDiscountBps = 50

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.panora.exchange/v1"
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  strings.TrimSpace(apiKey),
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("panora http %d", e.StatusCode)
	}
	return fmt.Sprintf("panora http %d: %s", e.StatusCode, b)
}

// Pool is one entry in the Panora pool listing
type Pool struct {
	TokenX struct {
		Type string `json:"type"`
	} `json:"tokenX"`
	TokenY struct {
		Type string `json:"type"`
	} `json:"tokenY"`
}

// PairExists checks whether Panora lists a pool for the pair, in either
// direction
func (c *Client) PairExists(ctx context.Context, tokenA, tokenB string) (bool, error) {
	pools, err := c.Pools(ctx)
	if err != nil {
		return false, err
	}

	for _, p := range pools {
		if (p.TokenX.Type == tokenA && p.TokenY.Type == tokenB) ||
			(p.TokenX.Type == tokenB && p.TokenY.Type == tokenA) {
			return true, nil
		}
	}
	return false, nil
}

// Pools fetches the full pool listing
func (c *Client) Pools(ctx context.Context) ([]Pool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/pools", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: res.StatusCode, Body: body}
	}

	var out []Pool
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode panora pools: %w", err)
	}
	return out, nil
}
