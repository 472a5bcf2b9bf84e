package uaa

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/upb/dpa-psp-adapter/cache"
	"github.com/upb/dpa-psp-adapter/config"
	"go.uber.org/zap"
)

// KeyCache holds resolved signing keys by kid
type KeyCache = cache.TTLCache[*SigningKey]

// NewKeyCache creates an empty key cache with the given ttl
func NewKeyCache(ttl time.Duration) *KeyCache {
	return cache.New[*SigningKey](ttl)
}

// VerifierConfig holds configuration for Verifier
type VerifierConfig struct {
	Mode       config.RuntimeMode
	MockSecret string
	KeyTTL     time.Duration
}

// Verifier turns a bearer token into verified claims or a *VerificationError
type Verifier struct {
	mode       config.RuntimeMode
	mockSecret []byte
	keyTTL     time.Duration
	keys       *KeyCache
	provider   KeyProvider
	logger     *zap.Logger
}

// NewVerifier creates a Verifier. The key cache is shared by the caller and may be pre-seeded.
func NewVerifier(cfg VerifierConfig, keys *KeyCache, provider KeyProvider, logger *zap.Logger) *Verifier {
	if cfg.KeyTTL <= 0 {
		cfg.KeyTTL = time.Hour
	}
	return &Verifier{
		mode:       cfg.Mode,
		mockSecret: []byte(cfg.MockSecret),
		keyTTL:     cfg.KeyTTL,
		keys:       keys,
		provider:   provider,
		logger:     logger,
	}
}

// Verify decodes the token, routes mock-issuer tokens to the shared-secret check when
// the runtime allows it, and verifies everything else with RS256 against the
// identity provider key named by the kid header.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*TokenClaims, error) {
	unverified := &TokenClaims{}
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, unverified)
	if err != nil {
		return nil, newError(KindMalformed, err)
	}

	if unverified.IsMock() && v.mode.AllowsMockTokens() {
		return v.verifyMock(tokenString)
	}

	return v.verifyReal(ctx, tokenString, token.Header)
}

func (v *Verifier) verifyMock(tokenString string) (*TokenClaims, error) {
	if len(v.mockSecret) == 0 {
		return nil, newError(KindConfiguration, errors.New("MOCK_JWT_SECRET is not configured"))
	}

	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.mockSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, classifyParseError(err)
	}

	v.logger.Debug("mock token verified",
		zap.String("subject", claims.Subject),
		zap.String("issuer", claims.Issuer))

	return claims, nil
}

func (v *Verifier) verifyReal(ctx context.Context, tokenString string, header map[string]interface{}) (*TokenClaims, error) {
	kid, ok := header["kid"].(string)
	if !ok || kid == "" {
		return nil, newError(KindMalformed, errors.New("kid header not found"))
	}

	key, err := v.signingKey(ctx, kid)
	if err != nil {
		return nil, err
	}

	claims := &TokenClaims{}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return key.PublicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return nil, classifyParseError(err)
	}

	v.logger.Debug("token verified",
		zap.String("kid", kid),
		zap.String("subject", claims.Subject),
		zap.String("issuer", claims.Issuer))

	return claims, nil
}

// signingKey consults the cache and falls back to the provider on a miss.
// Concurrent misses for the same kid may each fetch; the last write wins.
func (v *Verifier) signingKey(ctx context.Context, kid string) (*SigningKey, error) {
	if key, ok := v.keys.Get(kid); ok {
		return key, nil
	}

	v.logger.Debug("public key not cached, fetching from identity provider", zap.String("kid", kid))

	key, err := v.provider.FetchKey(ctx, kid)
	if err != nil {
		if KindOf(err) == "" {
			return nil, newError(KindUpstreamUnavailable, err)
		}
		return nil, err
	}

	v.keys.Set(kid, key, v.keyTTL)
	return key, nil
}

// classifyParseError maps jwt parse failures onto the verification taxonomy
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return newError(KindMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return newError(KindExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return newError(KindSignatureInvalid, err)
	default:
		return newError(KindSignatureInvalid, fmt.Errorf("token rejected: %w", err))
	}
}
