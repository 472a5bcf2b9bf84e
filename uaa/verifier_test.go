package uaa

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/dpa-psp-adapter/cache"
	"github.com/upb/dpa-psp-adapter/config"
	"go.uber.org/zap"
)

const testMockSecret = "test-mock-secret"

type stubKeyProvider struct {
	key   *SigningKey
	err   error
	calls int
}

func (s *stubKeyProvider) FetchKey(ctx context.Context, kid string) (*SigningKey, error) {
	s.calls++
	return s.key, s.err
}

func newTestVerifier(t *testing.T, mode config.RuntimeMode, uaaURL string, keys *KeyCache) *Verifier {
	t.Helper()
	if keys == nil {
		keys = NewKeyCache(time.Hour)
	}
	return NewVerifier(
		VerifierConfig{Mode: mode, MockSecret: testMockSecret, KeyTTL: time.Hour},
		keys,
		NewHTTPKeyProvider(uaaURL, time.Second, zap.NewNop()),
		zap.NewNop(),
	)
}

func TestVerifier_ValidRS256Token(t *testing.T) {
	privateKey := generateTestKeyPair(t)
	server := newTokenKeysServer(t, pemKey(t, testKid, &privateKey.PublicKey))
	keys := NewKeyCache(time.Hour)
	verifier := newTestVerifier(t, config.ModeProduction, server.URL, keys)

	claims := validClaims("https://uaa.example.com/oauth/token")
	claims.AuthorizationAttributes = map[string]interface{}{"tenantId": "T-200"}
	token := signRS256(t, privateKey, testKid, claims)

	verified, err := verifier.Verify(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, "sb-adapter-client", verified.Subject)
	assert.Equal(t, "T-200", verified.TenantID())

	cached, ok := keys.Get(testKid)
	require.True(t, ok)
	assert.Equal(t, testKid, cached.KeyID)
}

func TestVerifier_UsesCachedKey(t *testing.T) {
	privateKey := generateTestKeyPair(t)
	server := newTokenKeysServer(t, pemKey(t, testKid, &privateKey.PublicKey))
	verifier := newTestVerifier(t, config.ModeProduction, server.URL, nil)

	token := signRS256(t, privateKey, testKid, validClaims("uaa"))

	for i := 0; i < 3; i++ {
		_, err := verifier.Verify(context.Background(), token)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), server.requests.Load())
}

func TestVerifier_PreSeededCacheSkipsProvider(t *testing.T) {
	privateKey := generateTestKeyPair(t)
	keys := NewKeyCache(time.Hour)
	keys.Set(testKid, &SigningKey{KeyID: testKid, PublicKey: &privateKey.PublicKey}, 0)

	provider := &stubKeyProvider{err: errors.New("should not be called")}
	verifier := NewVerifier(VerifierConfig{Mode: config.ModeProduction}, keys, provider, zap.NewNop())

	_, err := verifier.Verify(context.Background(), signRS256(t, privateKey, testKid, validClaims("uaa")))

	require.NoError(t, err)
	assert.Equal(t, 0, provider.calls)
}

func TestVerifier_RefetchesAfterTTL(t *testing.T) {
	privateKey := generateTestKeyPair(t)
	server := newTokenKeysServer(t, pemKey(t, testKid, &privateKey.PublicKey))

	clock := newFakeClock()
	keys := cache.New[*SigningKey](time.Hour, cache.WithClock(clock.Now))
	verifier := newTestVerifier(t, config.ModeProduction, server.URL, keys)
	token := signRS256(t, privateKey, testKid, validClaims("uaa"))

	_, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	_, err = verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int32(1), server.requests.Load())

	clock.Advance(2 * time.Minute)
	_, err = verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int32(2), server.requests.Load())
}

func TestVerifier_Rejections(t *testing.T) {
	privateKey := generateTestKeyPair(t)
	otherKey := generateTestKeyPair(t)
	server := newTokenKeysServer(t, pemKey(t, testKid, &privateKey.PublicKey))

	expired := validClaims("uaa")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	notYetValid := validClaims("uaa")
	notYetValid.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name     string
		token    string
		wantKind ErrorKind
	}{
		{"garbage", "not-a-jwt", KindMalformed},
		{"two segments", "abc.def", KindMalformed},
		{"missing kid", signRS256(t, privateKey, "", validClaims("uaa")), KindMalformed},
		{"unknown kid", signRS256(t, privateKey, "rotated-away", validClaims("uaa")), KindKeyNotFound},
		{"wrong signer", signRS256(t, otherKey, testKid, validClaims("uaa")), KindSignatureInvalid},
		{"mutated signature byte", flipSignatureByte(t, signRS256(t, privateKey, testKid, validClaims("uaa"))), KindSignatureInvalid},
		{"expired", signRS256(t, privateKey, testKid, expired), KindExpired},
		{"not yet valid", signRS256(t, privateKey, testKid, notYetValid), KindExpired},
	}

	verifier := newTestVerifier(t, config.ModeProduction, server.URL, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := verifier.Verify(context.Background(), tt.token)

			require.Error(t, err)
			assert.Nil(t, claims)
			assert.Equal(t, tt.wantKind, KindOf(err))
		})
	}
}

func TestVerifier_UpstreamUnavailable(t *testing.T) {
	privateKey := generateTestKeyPair(t)
	provider := &stubKeyProvider{err: newError(KindUpstreamUnavailable, errors.New("connection refused"))}
	keys := NewKeyCache(time.Hour)
	verifier := NewVerifier(VerifierConfig{Mode: config.ModeProduction}, keys, provider, zap.NewNop())

	_, err := verifier.Verify(context.Background(), signRS256(t, privateKey, testKid, validClaims("uaa")))

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Equal(t, 0, keys.Stats().Size)
}

func TestVerifier_UntypedProviderErrorIsUpstream(t *testing.T) {
	privateKey := generateTestKeyPair(t)
	provider := &stubKeyProvider{err: errors.New("boom")}
	verifier := NewVerifier(VerifierConfig{Mode: config.ModeProduction}, NewKeyCache(time.Hour), provider, zap.NewNop())

	_, err := verifier.Verify(context.Background(), signRS256(t, privateKey, testKid, validClaims("uaa")))

	assert.Equal(t, KindUpstreamUnavailable, KindOf(err))
}

func TestVerifier_MockTokens(t *testing.T) {
	mockClaims := validClaims(MockIssuer)

	t.Run("accepted in non-production", func(t *testing.T) {
		provider := &stubKeyProvider{}
		verifier := NewVerifier(VerifierConfig{Mode: config.ModeNonProduction, MockSecret: testMockSecret}, NewKeyCache(time.Hour), provider, zap.NewNop())

		claims, err := verifier.Verify(context.Background(), signHS256(t, testMockSecret, mockClaims))

		require.NoError(t, err)
		assert.Equal(t, MockIssuer, claims.Issuer)
		assert.Equal(t, 0, provider.calls)
	})

	t.Run("rejected in production", func(t *testing.T) {
		server := newTokenKeysServer(t)
		verifier := newTestVerifier(t, config.ModeProduction, server.URL, nil)

		_, err := verifier.Verify(context.Background(), signHS256(t, testMockSecret, mockClaims))

		require.Error(t, err)
		assert.Equal(t, KindMalformed, KindOf(err))
		assert.Equal(t, int32(0), server.requests.Load())
	})

	t.Run("production with a kid still goes through RS256", func(t *testing.T) {
		privateKey := generateTestKeyPair(t)
		server := newTokenKeysServer(t, pemKey(t, testKid, &privateKey.PublicKey))
		verifier := newTestVerifier(t, config.ModeProduction, server.URL, nil)

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, mockClaims)
		token.Header["kid"] = testKid
		signed, err := token.SignedString([]byte(testMockSecret))
		require.NoError(t, err)

		_, err = verifier.Verify(context.Background(), signed)
		assert.Equal(t, KindSignatureInvalid, KindOf(err))
	})

	t.Run("wrong secret", func(t *testing.T) {
		verifier := NewVerifier(VerifierConfig{Mode: config.ModeNonProduction, MockSecret: testMockSecret}, NewKeyCache(time.Hour), &stubKeyProvider{}, zap.NewNop())

		_, err := verifier.Verify(context.Background(), signHS256(t, "other-secret", mockClaims))
		assert.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		verifier := NewVerifier(VerifierConfig{Mode: config.ModeNonProduction, MockSecret: testMockSecret}, NewKeyCache(time.Hour), &stubKeyProvider{}, zap.NewNop())
		expired := validClaims(MockIssuer)
		expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

		_, err := verifier.Verify(context.Background(), signHS256(t, testMockSecret, expired))
		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("missing secret is a configuration error", func(t *testing.T) {
		verifier := NewVerifier(VerifierConfig{Mode: config.ModeNonProduction}, NewKeyCache(time.Hour), &stubKeyProvider{}, zap.NewNop())

		_, err := verifier.Verify(context.Background(), signHS256(t, testMockSecret, mockClaims))
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("rs256 mock issuer rejected on the mock path", func(t *testing.T) {
		privateKey := generateTestKeyPair(t)
		verifier := NewVerifier(VerifierConfig{Mode: config.ModeNonProduction, MockSecret: testMockSecret}, NewKeyCache(time.Hour), &stubKeyProvider{}, zap.NewNop())

		_, err := verifier.Verify(context.Background(), signRS256(t, privateKey, testKid, mockClaims))
		assert.ErrorIs(t, err, ErrSignatureInvalid)
	})
}

func TestVerifier_NonProductionStillVerifiesRealTokens(t *testing.T) {
	privateKey := generateTestKeyPair(t)
	server := newTokenKeysServer(t, pemKey(t, testKid, &privateKey.PublicKey))
	verifier := newTestVerifier(t, config.ModeNonProduction, server.URL, nil)

	_, err := verifier.Verify(context.Background(), signRS256(t, privateKey, testKid, validClaims("uaa")))
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), flipSignatureByte(t, signRS256(t, privateKey, testKid, validClaims("uaa"))))
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}
