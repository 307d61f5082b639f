// Package gateway is the HTTP boundary to the finance tracker's REST API.
// It performs no logic beyond mapping wire shapes to the canonical model.
package gateway

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

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
	"github.com/Veraticus/the-ledger-must-balance/internal/model"
	"github.com/Veraticus/the-ledger-must-balance/internal/service"
)

const (
	// DefaultTimeout bounds every call except the full transaction list.
	DefaultTimeout = 10 * time.Second
	// DefaultListTimeout bounds the full transaction list fetch.
	DefaultListTimeout = 15 * time.Second

	maxErrorBody = 512
)

// Config configures the gateway client.
type Config struct {
	HTTPClient  *http.Client
	Logger      *slog.Logger
	BaseURL     string
	Timeout     time.Duration
	ListTimeout time.Duration
}

// Client talks to the REST API.
type Client struct {
	httpClient  *http.Client
	logger      *slog.Logger
	baseURL     *url.URL
	timeout     time.Duration
	listTimeout time.Duration
}

var _ service.Gateway = (*Client)(nil)

// StatusError is returned when the API answers with a non-success status.
type StatusError struct {
	Body string
	Code int
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// NewClient validates cfg and creates a client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("%w: api.base_url", common.ErrMissingConfig)
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: api.base_url: %v", common.ErrInvalidConfig, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: api.base_url must be http or https, got %q", common.ErrInvalidConfig, cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ListTimeout <= 0 {
		cfg.ListTimeout = DefaultListTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	return &Client{
		httpClient:  cfg.HTTPClient,
		logger:      common.LoggerOrDefault(cfg.Logger),
		baseURL:     base,
		timeout:     cfg.Timeout,
		listTimeout: cfg.ListTimeout,
	}, nil
}

// ListCategories fetches every category.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	const op = "list categories"

	body, err := c.do(ctx, op, http.MethodGet, "/types", c.timeout, nil)
	if err != nil {
		return nil, err
	}

	var raw []wireCategory
	if err := json.Unmarshal(unwrap(body), &raw); err != nil {
		return nil, &common.NetworkError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	categories := make([]model.Category, 0, len(raw))
	for _, w := range raw {
		if cat, ok := w.normalize(); ok {
			categories = append(categories, cat)
		}
	}
	return categories, nil
}

// CreateCategory posts a new category. The server may answer with the
// record in a data envelope, a one-element array, a bare object, or nothing
// usable; in the last case nil is returned with no error.
func (c *Client) CreateCategory(ctx context.Context, label string) (*model.Category, error) {
	body, err := c.do(ctx, "create category", http.MethodPost, "/types", c.timeout, categoryPayload{Label: label})
	if err != nil {
		return nil, err
	}
	return decodeCreatedCategory(body), nil
}

func decodeCreatedCategory(body []byte) *model.Category {
	payload := bytes.TrimSpace(unwrap(body))
	if len(payload) == 0 {
		return nil
	}

	var w wireCategory
	switch payload[0] {
	case '[':
		var list []wireCategory
		if err := json.Unmarshal(payload, &list); err != nil || len(list) == 0 {
			return nil
		}
		w = list[0]
	case '{':
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil
		}
	default:
		return nil
	}

	cat, ok := w.normalize()
	if !ok || cat.ID == "" {
		return nil
	}
	return &cat
}

// UpdateCategory renames a category.
func (c *Client) UpdateCategory(ctx context.Context, id, label string) error {
	_, err := c.do(ctx, "update category", http.MethodPut, "/types/"+url.PathEscape(id), c.timeout, categoryPayload{Label: label})
	return err
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete category", http.MethodDelete, "/types/"+url.PathEscape(id), c.timeout, nil)
	return err
}

// ListTransactions fetches the full transaction list.
func (c *Client) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	const op = "list transactions"

	body, err := c.do(ctx, op, http.MethodGet, "/acc", c.listTimeout, nil)
	if err != nil {
		return nil, err
	}

	var raw []wireTransaction
	if err := json.Unmarshal(unwrap(body), &raw); err != nil {
		return nil, &common.NetworkError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	transactions := make([]model.Transaction, 0, len(raw))
	for _, w := range raw {
		transactions = append(transactions, w.normalize())
	}

	c.logger.Debug("fetched transactions", "count", len(transactions))
	return transactions, nil
}

// CreateTransaction posts a new transaction.
func (c *Client) CreateTransaction(ctx context.Context, draft model.TransactionDraft) error {
	_, err := c.do(ctx, "create transaction", http.MethodPost, "/acc", c.timeout, newTransactionPayload(draft))
	return err
}

// UpdateTransaction replaces the transaction with the given id.
func (c *Client) UpdateTransaction(ctx context.Context, id string, draft model.TransactionDraft) error {
	_, err := c.do(ctx, "update transaction", http.MethodPut, "/acc/"+url.PathEscape(id), c.timeout, newTransactionPayload(draft))
	return err
}

// DeleteTransaction removes the transaction with the given id.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete transaction", http.MethodDelete, "/acc/"+url.PathEscape(id), c.timeout, nil)
	return err
}

// Totals fetches the server aggregate for all categories or for one.
func (c *Client) Totals(ctx context.Context, filter string) (model.Totals, error) {
	const op = "fetch totals"

	path := "/acc/totals"
	if filter != "" && filter != model.FilterAll {
		path += "/" + url.PathEscape(filter)
	}

	body, err := c.do(ctx, op, http.MethodGet, path, c.timeout, nil)
	if err != nil {
		return model.Totals{}, err
	}

	var w wireTotals
	if err := json.Unmarshal(unwrap(body), &w); err != nil {
		return model.Totals{}, &common.NetworkError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return w.normalize(), nil
}

// do performs one request under its own timeout. Every failure, including
// non-success statuses, comes back as a *common.NetworkError.
func (c *Client) do(ctx context.Context, op, method, path string, timeout time.Duration, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, &common.NetworkError{Op: op, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		reqBody = bytes.NewReader(encoded)
	}

	endpoint := c.baseURL.String() + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, &common.NetworkError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("gateway call failed", "op", op, "method", method, "path", path, "error", err)
		return nil, &common.NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &common.NetworkError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("gateway call",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		statusErr := &StatusError{Code: resp.StatusCode, Body: snippet}
		if resp.StatusCode == http.StatusNotFound {
			return nil, &common.NetworkError{Op: op, Err: fmt.Errorf("%w: %w", common.ErrNotFound, statusErr)}
		}
		return nil, &common.NetworkError{Op: op, Err: statusErr}
	}

	return body, nil
}
