package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/upb/dpa-psp-adapter/models"
	"github.com/upb/dpa-psp-adapter/services"
	"go.uber.org/zap"
)

const storePaymentCardPath = "/storePaymentCard"

// TokenSource supplies the adapter-to-core bearer token
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// Config holds digital payments core settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client forwards payment results to the digital payments core
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new core client
func NewClient(cfg Config, tokens TokenSource, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// StorePaymentCard posts a registered card to core. Core answers 204 on success;
// any other status carries a StorePaymentCardError body, returned with the error.
func (c *Client) StorePaymentCard(ctx context.Context, tenantID string, result *models.PaymentResult) (*models.StorePaymentCardError, error) {
	if c.baseURL == "" {
		return nil, services.NewDomainError(services.ErrorTypeConfiguration,
			"core URL is not configured: set EXTERNAL_ADAPTER_UAA_URL", nil)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, services.WrapExternal("failed to obtain core token", err)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment result: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+storePaymentCardPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create store payment card request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if tenantID != "" {
		req.Header.Set(services.TenantHeader, tenantID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.WrapExternal("digital payments core unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		c.logger.Info("payment card stored in core",
			zap.String("tenant_id", tenantID),
			zap.String("transaction", result.DigitalPaymentTransaction.DigitalPaymentTransaction))
		return nil, nil
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate()
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var coreErr models.StorePaymentCardError
	if len(body) > 0 {
		if err := json.Unmarshal(body, &coreErr); err != nil {
			c.logger.Warn("core returned a non-json error body",
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(body)))
		}
	}

	return &coreErr, services.WrapExternal("core rejected payment card",
		fmt.Errorf("store payment card returned status code %d", resp.StatusCode))
}
