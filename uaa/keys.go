package uaa

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// DefaultFetchTimeout bounds a single token_keys round-trip
const DefaultFetchTimeout = 5 * time.Second

// SigningKey is a resolved public key. Immutable once cached.
type SigningKey struct {
	KeyID     string
	Material  string
	PublicKey *rsa.PublicKey
	FetchedAt time.Time
}

// TokenKeys is the body returned by GET <uaaUrl>/token_keys
type TokenKeys struct {
	Keys []TokenKey `json:"keys"`
}

// TokenKey is one entry of the key listing. Value carries the PEM encoded key;
// N and E are the JWK form some identity providers publish alongside it.
type TokenKey struct {
	Kid   string `json:"kid"`
	Kty   string `json:"kty,omitempty"`
	Alg   string `json:"alg,omitempty"`
	Use   string `json:"use,omitempty"`
	Value string `json:"value,omitempty"`
	N     string `json:"n,omitempty"`
	E     string `json:"e,omitempty"`
}

// KeyProvider resolves a public key for a key id that is not cached
type KeyProvider interface {
	FetchKey(ctx context.Context, kid string) (*SigningKey, error)
}

// HTTPKeyProvider queries a single identity provider's token_keys endpoint
type HTTPKeyProvider struct {
	keysURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewHTTPKeyProvider creates a provider for the given identity provider base URL
func NewHTTPKeyProvider(uaaURL string, timeout time.Duration, logger *zap.Logger) *HTTPKeyProvider {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPKeyProvider{
		keysURL:    strings.TrimRight(uaaURL, "/") + "/token_keys",
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		logger:     logger,
		now:        time.Now,
	}
}

// FetchKey returns the first key whose kid matches. Transport failures, timeouts,
// non-200 responses and undecodable bodies are reported as ErrUpstreamUnavailable;
// a key set without the kid is ErrKeyNotFound.
func (p *HTTPKeyProvider) FetchKey(ctx context.Context, kid string) (*SigningKey, error) {
	keys, err := p.FetchKeys(ctx)
	if err != nil {
		return nil, err
	}

	var match *TokenKey
	for i := range keys.Keys {
		if keys.Keys[i].Kid == kid {
			match = &keys.Keys[i]
			break
		}
	}
	if match == nil {
		return nil, newError(KindKeyNotFound, fmt.Errorf("public key with kid %s not found", kid))
	}

	publicKey, err := parsePublicKey(match)
	if err != nil {
		return nil, newError(KindKeyNotFound, fmt.Errorf("unusable key material for kid %s: %w", kid, err))
	}

	p.logger.Debug("public key fetched from identity provider", zap.String("kid", kid))

	return &SigningKey{
		KeyID:     kid,
		Material:  match.Value,
		PublicKey: publicKey,
		FetchedAt: p.now(),
	}, nil
}

// FetchKeys retrieves the full key listing
func (p *HTTPKeyProvider) FetchKeys(ctx context.Context) (*TokenKeys, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.keysURL, nil)
	if err != nil {
		return nil, newError(KindUpstreamUnavailable, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindUpstreamUnavailable, fmt.Errorf("token_keys request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newError(KindUpstreamUnavailable, fmt.Errorf("token_keys returned status code %d", resp.StatusCode))
	}

	var keys TokenKeys
	if err := json.NewDecoder(resp.Body).Decode(&keys); err != nil {
		return nil, newError(KindUpstreamUnavailable, fmt.Errorf("failed to decode token_keys: %w", err))
	}

	return &keys, nil
}

// parsePublicKey prefers the PEM value and falls back to the JWK modulus/exponent
func parsePublicKey(key *TokenKey) (*rsa.PublicKey, error) {
	if key.Value != "" {
		return jwt.ParseRSAPublicKeyFromPEM([]byte(key.Value))
	}
	if key.N != "" && key.E != "" {
		return rsaFromModulus(key.N, key.E)
	}
	return nil, errors.New("key carries neither value nor n/e")
}

func rsaFromModulus(n, e string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	var exponent int
	for _, b := range eBytes {
		exponent = exponent*256 + int(b)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: exponent,
	}, nil
}
