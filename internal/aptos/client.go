package aptos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrResourceNotFound is returned when the account does not hold the
// requested resource. Callers treat it as "pool absent", not as a fault.
var ErrResourceNotFound = errors.New("resource not found")

// Client is an HTTP client for the Aptos fullnode REST API with retry
// and timeout support
type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logrus.Logger
}

// ClientConfig holds configuration for the fullnode client
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       *logrus.Logger
}

// NewClient creates a new fullnode client with retry support
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		logger:       cfg.Logger,
	}
}

// GetResource fetches one Move resource by account address and fully
// qualified resource type
func (c *Client) GetResource(ctx context.Context, account, resourceType string) (json.RawMessage, error) {
	path := fmt.Sprintf("/accounts/%s/resource/%s", account, url.PathEscape(resourceType))

	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var res Resource
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to decode resource: %w", err)
	}
	return res.Data, nil
}

// GetResources fetches every resource held by an account. Venues that key
// their state by market (order books) need the full scan.
func (c *Client) GetResources(ctx context.Context, account string) ([]Resource, error) {
	path := fmt.Sprintf("/accounts/%s/resources", account)

	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out []Resource
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode resources: %w", err)
	}
	return out, nil
}

// View executes a Move view function and returns its raw return values
func (c *Client) View(ctx context.Context, function string, typeArgs []string, args []any) ([]json.RawMessage, error) {
	req := ViewRequest{Function: function, TypeArguments: typeArgs, Arguments: args}
	if req.TypeArguments == nil {
		req.TypeArguments = []string{}
	}
	if req.Arguments == nil {
		req.Arguments = []any{}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal view request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/view", payload)
	if err != nil {
		return nil, err
	}

	var out []json.RawMessage
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode view response: %w", err)
	}
	return out, nil
}

// SubmitSignedTransaction submits an externally-signed transaction and
// returns its hash. Signing itself is the wallet collaborator's job.
func (c *Client) SubmitSignedTransaction(ctx context.Context, signedTxn json.RawMessage) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/transactions", signedTxn)
	if err != nil {
		return "", err
	}

	var out SubmitResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode submit response: %w", err)
	}
	if out.Hash == "" {
		return "", fmt.Errorf("submit response missing hash")
	}
	return out.Hash, nil
}

// WaitForTransaction polls until the transaction leaves the pending state
// or the context expires
func (c *Client) WaitForTransaction(ctx context.Context, hash string) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		body, err := c.do(ctx, http.MethodGet, "/transactions/by_hash/"+hash, nil)
		if err == nil {
			var txn PendingTransaction
			if err := json.Unmarshal(body, &txn); err != nil {
				return fmt.Errorf("failed to decode transaction: %w", err)
			}
			if txn.Type != "pending_transaction" {
				if !txn.Success {
					return fmt.Errorf("transaction %s failed: %s", hash, txn.VMStatus)
				}
				return nil
			}
		} else if !errors.Is(err, ErrResourceNotFound) {
			// not-found means the node has not seen the hash yet; keep polling
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// do performs one API call with retry on transport errors and 429/5xx
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"backoff": backoff,
				"path":    path,
			}).Debug("retrying fullnode call")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2 // exponential backoff
		}

		body, retryable, err := c.doRequest(ctx, method, path, payload)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload []byte) (body []byte, retryable bool, err error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, false, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, ErrResourceNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("fullnode status %d", resp.StatusCode)
	default:
		var nodeErr NodeError
		if json.Unmarshal(raw, &nodeErr) == nil && nodeErr.Message != "" {
			return nil, false, fmt.Errorf("fullnode status %d: %w", resp.StatusCode, &nodeErr)
		}
		return nil, false, fmt.Errorf("fullnode status %d", resp.StatusCode)
	}
}
