package ledger

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

	"github.com/avast/retry-go"
	"github.com/rs/zerolog"
)

// HTTPConfig configures an HTTPClient.
type HTTPConfig struct {
	// BaseURL of the actual-http-api server, e.g. http://localhost:5007.
	BaseURL  string
	APIKey   string
	BudgetID string
	// Attempts is the total number of tries per request. Zero means 3.
	Attempts uint
	// Delay is the base backoff between tries. Zero means one second.
	Delay time.Duration
	// Timeout bounds each request. Zero means 30 seconds.
	Timeout time.Duration
}

// StatusError is a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Retryable reports whether the request may succeed if sent again.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// HTTPClient is a Sink backed by actual-http-api.
type HTTPClient struct {
	cfg    HTTPConfig
	http   *http.Client
	logger zerolog.Logger
}

// NewHTTPClient returns a client for the budget in cfg.
func NewHTTPClient(cfg HTTPConfig, logger zerolog.Logger) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("ledger base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parsing ledger base URL: %w", err)
	}
	if cfg.BudgetID == "" {
		return nil, errors.New("ledger budget ID is required")
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.Delay == 0 {
		cfg.Delay = time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &HTTPClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

// ListAccounts returns every account in the budget.
func (c *HTTPClient) ListAccounts(ctx context.Context) ([]Account, error) {
	var out dataEnvelope[[]Account]
	if err := c.do(ctx, http.MethodGet, c.budgetPath("accounts"), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListPayees returns every payee in the budget, transfer payees included.
func (c *HTTPClient) ListPayees(ctx context.Context) ([]Payee, error) {
	var out dataEnvelope[[]Payee]
	if err := c.do(ctx, http.MethodGet, c.budgetPath("payees"), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

type importRequest struct {
	Transactions []WireRecord `json:"transactions"`
}

// BatchImport imports records into accountID. The ledger reconciles by
// imported_id, so resending a batch is safe.
func (c *HTTPClient) BatchImport(ctx context.Context, accountID string, records []WireRecord) (ImportResult, error) {
	var out dataEnvelope[ImportResult]
	path := c.budgetPath("accounts", accountID, "transactions", "import")
	if err := c.do(ctx, http.MethodPost, path, importRequest{Transactions: records}, &out); err != nil {
		return ImportResult{}, err
	}
	return out.Data, nil
}

func (c *HTTPClient) budgetPath(parts ...string) string {
	segs := []string{"v1", "budgets", url.PathEscape(c.cfg.BudgetID)}
	for _, p := range parts {
		segs = append(segs, url.PathEscape(p))
	}
	return "/" + strings.Join(segs, "/")
}

// do sends one request, retrying rate limits, server errors and transport
// failures.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s body: %w", path, err)
		}
	}

	err := retry.Do(
		func() error {
			return c.once(ctx, method, path, payload, out)
		},
		retry.RetryIf(func(err error) bool {
			if ctx.Err() != nil {
				return false
			}
			var se *StatusError
			if errors.As(err, &se) {
				return se.Retryable()
			}
			var de *decodeError
			return !errors.As(err, &de)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn().Err(err).Uint("attempt", n+1).Str("path", path).Msg("ledger request failed, retrying")
		}),
		retry.Attempts(c.cfg.Attempts),
		retry.Delay(c.cfg.Delay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("ledger %s %s: %w", method, path, err)
	}
	return nil
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decoding response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func (c *HTTPClient) once(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("x-api-key", c.cfg.APIKey)
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("ledger request")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &decodeError{err: err}
	}
	return nil
}
