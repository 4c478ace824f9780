package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Client is a thin HTTP implementation of Service against the ledger
// platform's REST API. It holds no state beyond the connection settings.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient constructs a Client for the given API base URL and key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// NewClientFromEnv constructs a Client from LEDGER_API_URL and LEDGER_API_KEY
// and verifies connectivity with a ping.
func NewClientFromEnv(ctx context.Context) (*Client, error) {
	baseURL := os.Getenv("LEDGER_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("LEDGER_API_URL environment variable not set")
	}
	apiKey := os.Getenv("LEDGER_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("LEDGER_API_KEY environment variable not set")
	}

	c := NewClient(baseURL, apiKey)
	if err := c.ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping ledger service: %w", err)
	}
	return c, nil
}

func (c *Client) ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/v1/ping", nil, nil)
}

func (c *Client) GetBook(ctx context.Context, bookID string) (*Book, error) {
	var book Book
	if err := c.do(ctx, http.MethodGet, "/v1/books/"+url.PathEscape(bookID), nil, &book); err != nil {
		return nil, fmt.Errorf("failed to fetch book %s: %w", bookID, err)
	}
	return &book, nil
}

func (c *Client) GetAccount(ctx context.Context, bookID, ref string) (*Account, error) {
	path := fmt.Sprintf("/v1/books/%s/accounts/%s", url.PathEscape(bookID), url.PathEscape(ref))
	var account Account
	if err := c.do(ctx, http.MethodGet, path, nil, &account); err != nil {
		return nil, fmt.Errorf("failed to fetch account %s: %w", ref, err)
	}
	return &account, nil
}

func (c *Client) ListAccounts(ctx context.Context, bookID string) ([]*Account, error) {
	path := fmt.Sprintf("/v1/books/%s/accounts", url.PathEscape(bookID))
	var out struct {
		Items []*Account `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return out.Items, nil
}

func (c *Client) UpdateAccount(ctx context.Context, bookID string, account *Account) (*Account, error) {
	path := fmt.Sprintf("/v1/books/%s/accounts/%s", url.PathEscape(bookID), url.PathEscape(account.ID))
	var updated Account
	if err := c.do(ctx, http.MethodPatch, path, account, &updated); err != nil {
		return nil, fmt.Errorf("failed to update account %s: %w", account.ID, err)
	}
	return &updated, nil
}

func (c *Client) ListTransactions(ctx context.Context, bookID, query string) ([]*Transaction, error) {
	path := fmt.Sprintf("/v1/books/%s/transactions?query=%s", url.PathEscape(bookID), url.QueryEscape(query))
	var out struct {
		Items []*Transaction `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("transaction query failed: %w", err)
	}
	return out.Items, nil
}

func (c *Client) CreateTransactions(ctx context.Context, bookID string, txs []*Transaction) ([]*Transaction, error) {
	path := fmt.Sprintf("/v1/books/%s/transactions/batch", url.PathEscape(bookID))
	body := struct {
		Items []*Transaction `json:"items"`
	}{Items: txs}
	var out struct {
		Items []*Transaction `json:"items"`
	}
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, fmt.Errorf("batch create failed: %w", err)
	}
	if len(out.Items) != len(txs) {
		return nil, fmt.Errorf("batch create returned %d transactions, staged %d", len(out.Items), len(txs))
	}
	return out.Items, nil
}

func (c *Client) UpdateTransactions(ctx context.Context, bookID string, txs []*Transaction) error {
	path := fmt.Sprintf("/v1/books/%s/transactions/batch", url.PathEscape(bookID))
	body := struct {
		Items []*Transaction `json:"items"`
	}{Items: txs}
	if err := c.do(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("batch update failed: %w", err)
	}
	return nil
}

func (c *Client) TrashTransactions(ctx context.Context, bookID string, ids []string) error {
	path := fmt.Sprintf("/v1/books/%s/transactions/trash", url.PathEscape(bookID))
	body := struct {
		IDs []string `json:"ids"`
	}{IDs: ids}
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("batch trash failed: %w", err)
	}
	return nil
}

// do performs one JSON round trip. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("ledger service returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
