package psp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upb/dpa-psp-adapter/models"
	"github.com/upb/dpa-psp-adapter/services"
	"go.uber.org/zap"
)

const (
	initializePath  = "/mock/psp/initialize"
	chargePath      = "/mock/psp/charge"
	transactionPath = "/mock/psp/transaction"

	defaultTimeout = 10 * time.Second

	// maxErrorBody bounds how much of a failed response is kept for logs
	maxErrorBody = 1024
)

// Config holds PSP connection settings
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Error describes a failed PSP call
type Error struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("psp %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("psp %s: unexpected status %d", e.Op, e.StatusCode)
}

// Unwrap implements errors.Unwrap
func (e *Error) Unwrap() error {
	return e.Err
}

// Client talks to the payment service provider's hosted page API
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
	newKey     func() string
}

// NewClient creates a new PSP client
func NewClient(config Config, logger *zap.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
		newKey: func() string { return uuid.NewString() },
	}
}

// Initialize opens a hosted card registration session
func (c *Client) Initialize(ctx context.Context, req *models.PSPInitializeRequest) (*models.PSPInitializeResponse, error) {
	var resp models.PSPInitializeResponse
	if err := c.do(ctx, "initialize", http.MethodPost, initializePath, nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.RedirectURL == "" {
		return nil, services.WrapExternal("payment service provider request failed",
			&Error{Op: "initialize", StatusCode: http.StatusOK, Err: fmt.Errorf("response has no redirectUrl")})
	}
	return &resp, nil
}

// Charge authorizes an amount against a card token
func (c *Client) Charge(ctx context.Context, req *models.PSPChargeRequest) (*models.PSPChargeResponse, error) {
	var resp models.PSPChargeResponse
	if err := c.do(ctx, "charge", http.MethodPost, chargePath, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transaction fetches the PSP's record of a hosted page session
func (c *Client) Transaction(ctx context.Context, transactionID string) (*models.PSPTransaction, error) {
	if transactionID == "" {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "transactionId is required", nil)
	}

	var resp models.PSPTransaction
	query := url.Values{"transactionId": {transactionID}}
	if err := c.do(ctx, "transaction", http.MethodGet, transactionPath, query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	if c.config.BaseURL == "" {
		return services.NewDomainError(services.ErrorTypeConfiguration, "payment service provider URL is not configured", nil)
	}

	endpoint := c.config.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.config.APIKey != "" {
		httpReq.Header.Set("x-api-key", c.config.APIKey)
	}
	if method == http.MethodPost {
		httpReq.Header.Set("Idempotency-Key", c.newKey())
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("psp request failed", zap.String("op", op), zap.Error(err))
		return services.WrapExternal("payment service provider unavailable", &Error{Op: op, Err: err})
	}
	defer httpResp.Body.Close()

	c.logger.Debug("psp request completed",
		zap.String("op", op),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		c.logger.Warn("psp returned error status",
			zap.String("op", op),
			zap.Int("status", httpResp.StatusCode),
			zap.String("body", string(snippet)))
		return services.WrapExternal("payment service provider request failed",
			&Error{Op: op, StatusCode: httpResp.StatusCode, Body: string(snippet)})
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return services.WrapExternal("payment service provider returned an invalid response",
			&Error{Op: op, StatusCode: httpResp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)})
	}

	return nil
}
