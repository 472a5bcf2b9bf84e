package uaa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/upb/dpa-psp-adapter/cache"
	"go.uber.org/zap"
)

const (
	coreTokenCacheKey = "adapter_to_core_token"

	// DefaultCoreTokenTTL is used when the token response carries no expires_in
	DefaultCoreTokenTTL = 3500 * time.Second
)

// CoreTokenConfig holds the client credentials for adapter-to-core calls
type CoreTokenConfig struct {
	TokenURL       string
	ClientID       string
	ClientPassword string
	Timeout        time.Duration
}

type coreTokenResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   *float64 `json:"expires_in,omitempty"`
	TokenType   string   `json:"token_type,omitempty"`
}

// CoreTokenSource obtains and caches the bearer token the adapter presents to core
type CoreTokenSource struct {
	cfg        CoreTokenConfig
	httpClient *http.Client
	tokens     *cache.TTLCache[string]
	logger     *zap.Logger
}

// NewCoreTokenSource creates a token source backed by the given cache
func NewCoreTokenSource(cfg CoreTokenConfig, tokens *cache.TTLCache[string], logger *zap.Logger) *CoreTokenSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFetchTimeout
	}
	if tokens == nil {
		tokens = cache.New[string](DefaultCoreTokenTTL)
	}
	return &CoreTokenSource{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tokens:     tokens,
		logger:     logger,
	}
}

// Token returns a cached access token or fetches a new one with basic auth
func (s *CoreTokenSource) Token(ctx context.Context) (string, error) {
	if token, ok := s.tokens.Get(coreTokenCacheKey); ok {
		s.logger.Debug("using cached adapter to core token")
		return token, nil
	}

	if s.cfg.TokenURL == "" {
		return "", newError(KindConfiguration, errors.New("DIGITAL_PAYMENTS_ADAPTER_TO_CORE_TOKEN_URL is not configured"))
	}
	if s.cfg.ClientID == "" || s.cfg.ClientPassword == "" {
		return "", newError(KindConfiguration, errors.New("ADAPTER_TO_CORE_CLIENT_ID or ADAPTER_TO_CORE_CLIENT_PASSWORD is not configured"))
	}

	token, ttl, err := s.fetch(ctx)
	if err != nil {
		s.logger.Error("failed to get adapter to core token", zap.Error(err))
		return "", fmt.Errorf("failed to get adapter to core token: %w", err)
	}

	s.tokens.Set(coreTokenCacheKey, token, ttl)
	s.logger.Info("obtained adapter to core token", zap.Duration("ttl", ttl))

	return token, nil
}

// Invalidate drops the cached token so the next call refetches
func (s *CoreTokenSource) Invalidate() {
	s.tokens.Delete(coreTokenCacheKey)
}

func (s *CoreTokenSource) fetch(ctx context.Context) (string, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.TokenURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(s.cfg.ClientID, s.cfg.ClientPassword)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", 0, newError(KindUpstreamUnavailable, fmt.Errorf("token request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, newError(KindUpstreamUnavailable, fmt.Errorf("token endpoint returned status code %d", resp.StatusCode))
	}

	var body coreTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", 0, fmt.Errorf("failed to decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", 0, errors.New("token response has no access_token")
	}

	ttl := DefaultCoreTokenTTL
	if body.ExpiresIn != nil && *body.ExpiresIn > 0 {
		// refresh at 90% of the advertised lifetime
		ttl = time.Duration(int64(*body.ExpiresIn*0.9)) * time.Second
	}

	return body.AccessToken, ttl, nil
}
