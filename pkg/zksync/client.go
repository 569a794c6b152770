package zksync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.zksync.io/api/v0.1"

// HashPrefix is prepended by the API to every L2 transaction hash.
const HashPrefix = "sync-tx:"

// Transaction is one entry of an account's history.
type Transaction struct {
	TxID       string         `json:"tx_id"`
	Hash       string         `json:"hash"`
	EthBlock   *int64         `json:"eth_block"`
	PqID       *int64         `json:"pq_id"`
	Tx         map[string]any `json:"tx"` // type-specific detail, fields checked per type
	Success    *bool          `json:"success"`
	FailReason *string        `json:"fail_reason"`
	Commited   bool           `json:"commited"`
	Verified   bool           `json:"verified"`
	CreatedAt  string         `json:"created_at"`
}

// OperationID is the hash with the API prefix stripped.
func (t Transaction) OperationID() string {
	return strings.TrimPrefix(t.Hash, HashPrefix)
}

// HTTPError is returned when the API answers with a failing status.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient builds a client for the v0.1 REST API. A zero timeout leaves
// the transport defaults in charge.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// History fetches up to limit entries of the account history starting at
// offset. An empty slice means the end of the history has been reached.
func (c *Client) History(ctx context.Context, address string, offset, limit int) ([]Transaction, error) {
	url := fmt.Sprintf("%s/account/%s/history/%d/%d", c.baseURL, address, offset, limit)

	body, err := c.getJSON(ctx, url)
	if err != nil {
		return nil, err
	}

	var txs []Transaction
	if err := json.Unmarshal(body, &txs); err != nil {
		return nil, fmt.Errorf("decode history page %d: %w", offset, err)
	}
	return txs, nil
}

func (c *Client) getJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url, Body: strings.TrimSpace(string(snippet))}
	}
	return io.ReadAll(io.LimitReader(resp.Body, 10<<20)) // 10MB max
}
