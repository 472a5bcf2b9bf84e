package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/dpa-psp-adapter/config"
	"github.com/upb/dpa-psp-adapter/repositories/file"
	"github.com/upb/dpa-psp-adapter/services"
	"github.com/upb/dpa-psp-adapter/uaa"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testKid        = "key-id-1"
	testMockSecret = "gate-mock-secret"
)

type gateFixture struct {
	gate       *AuthGate
	privateKey *rsa.PrivateKey
	tenants    *file.TenantRepository
	uaaServer  *httptest.Server
}

func newGateFixture(t *testing.T, mode config.RuntimeMode, logger *zap.Logger) *gateFixture {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)
	publicPEM := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	uaaServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(uaa.TokenKeys{Keys: []uaa.TokenKey{
			{Kid: testKid, Kty: "RSA", Alg: "RS256", Value: publicPEM},
		}})
	}))
	t.Cleanup(uaaServer.Close)

	tenants := file.NewTenantRepository(filepath.Join(t.TempDir(), "tenants.json"), "https://adapter.example.com", zap.NewNop())

	verifier := uaa.NewVerifier(
		uaa.VerifierConfig{Mode: mode, MockSecret: testMockSecret, KeyTTL: time.Hour},
		uaa.NewKeyCache(time.Hour),
		uaa.NewHTTPKeyProvider(uaaServer.URL, time.Second, zap.NewNop()),
		logger,
	)
	resolver := services.NewTenantResolver(services.TenantResolverConfig{Mode: mode}, tenants, logger)

	return &gateFixture{
		gate:       NewAuthGate(verifier, resolver, logger),
		privateKey: privateKey,
		tenants:    tenants,
		uaaServer:  uaaServer,
	}
}

func (f *gateFixture) sign(t *testing.T, kid string, tenantID string) string {
	t.Helper()
	now := time.Now()
	claims := &uaa.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    f.uaaServer.URL + "/oauth/token",
			Subject:   "sb-core-client",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		ClientID: "sb-core-client",
	}
	if tenantID != "" {
		claims.AuthorizationAttributes = map[string]interface{}{"tenantId": tenantID}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(f.privateKey)
	require.NoError(t, err)
	return signed
}

func protectedRequest(token, tenantHeader string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/core/v1/capabilities", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	if tenantHeader != "" {
		r.Header.Set(services.TenantHeader, tenantHeader)
	}
	return r
}

func TestAuthGate_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("A: no authorization header", func(t *testing.T) {
		f := newGateFixture(t, config.ModeProduction, zap.NewNop())

		decision := f.gate.Authorize(protectedRequest("", ""), true)

		assert.False(t, decision.Allowed)
		assert.Equal(t, http.StatusUnauthorized, decision.Status)
		assert.Equal(t, "Authorization header missing or invalid", decision.Message)
	})

	t.Run("B: token signed with unknown kid", func(t *testing.T) {
		f := newGateFixture(t, config.ModeProduction, zap.NewNop())

		decision := f.gate.Authorize(protectedRequest(f.sign(t, "unknown-kid", "T-1"), ""), true)

		assert.False(t, decision.Allowed)
		assert.Equal(t, http.StatusUnauthorized, decision.Status)
		assert.Equal(t, "Invalid token", decision.Message)
	})

	t.Run("C: tenant from claims not onboarded", func(t *testing.T) {
		f := newGateFixture(t, config.ModeProduction, zap.NewNop())

		decision := f.gate.Authorize(protectedRequest(f.sign(t, testKid, "T-1"), ""), true)

		assert.False(t, decision.Allowed)
		assert.Equal(t, http.StatusNotFound, decision.Status)
		assert.Equal(t, "Tenant not onboarded", decision.Message)
	})

	t.Run("D: tenant header onboarded", func(t *testing.T) {
		f := newGateFixture(t, config.ModeProduction, zap.NewNop())
		_, err := f.tenants.Upsert(ctx, "T-9")
		require.NoError(t, err)

		decision := f.gate.Authorize(protectedRequest(f.sign(t, testKid, ""), "T-9"), true)

		require.True(t, decision.Allowed)
		assert.Equal(t, "T-9", decision.TenantID)
		assert.Equal(t, "sb-core-client", decision.Claims.ClientID)
	})
}

func TestAuthGate_Rejections(t *testing.T) {
	f := newGateFixture(t, config.ModeProduction, zap.NewNop())

	tests := []struct {
		name          string
		authorization string
		wantMessage   string
	}{
		{"basic scheme", "Basic dXNlcjpwYXNz", "Authorization header missing or invalid"},
		{"bearer without token", "Bearer ", "Authorization header missing or invalid"},
		{"malformed token", "Bearer not-a-jwt", "Invalid token"},
		{"tampered signature", "Bearer " + f.sign(t, testKid, "T-1") + "x", "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := protectedRequest("", "")
			r.Header.Set("Authorization", tt.authorization)

			decision := f.gate.Authorize(r, false)
			assert.False(t, decision.Allowed)
			assert.Equal(t, http.StatusUnauthorized, decision.Status)
			assert.Equal(t, tt.wantMessage, decision.Message)
		})
	}
}

func TestAuthGate_MissingTenantContext(t *testing.T) {
	f := newGateFixture(t, config.ModeProduction, zap.NewNop())

	decision := f.gate.Authorize(protectedRequest(f.sign(t, testKid, ""), ""), true)

	assert.False(t, decision.Allowed)
	assert.Equal(t, http.StatusUnauthorized, decision.Status)
	assert.Equal(t, "Tenant ID header missing or invalid", decision.Message)
}

func TestAuthGate_TokenOnly(t *testing.T) {
	f := newGateFixture(t, config.ModeProduction, zap.NewNop())

	decision := f.gate.Authorize(protectedRequest(f.sign(t, testKid, "T-unknown"), ""), false)

	require.True(t, decision.Allowed)
	assert.Empty(t, decision.TenantID)
}

func TestAuthGate_MockTokenDependsOnMode(t *testing.T) {
	token, err := uaa.NewMockTokenIssuer(testMockSecret, "default").Issue()
	require.NoError(t, err)

	t.Run("production rejects", func(t *testing.T) {
		f := newGateFixture(t, config.ModeProduction, zap.NewNop())

		decision := f.gate.Authorize(protectedRequest(token, ""), false)
		assert.False(t, decision.Allowed)
		assert.Equal(t, "Invalid token", decision.Message)
	})

	t.Run("non-production accepts", func(t *testing.T) {
		f := newGateFixture(t, config.ModeNonProduction, zap.NewNop())

		decision := f.gate.Authorize(protectedRequest(token, ""), false)
		require.True(t, decision.Allowed)
		assert.True(t, decision.Claims.IsMock())
	})
}

func TestAuthGate_UpstreamUnavailableRaisesAlert(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	f := newGateFixture(t, config.ModeProduction, zap.New(core))
	token := f.sign(t, testKid, "T-1")
	f.uaaServer.Close()

	decision := f.gate.Authorize(protectedRequest(token, ""), false)

	assert.False(t, decision.Allowed)
	assert.Equal(t, http.StatusUnauthorized, decision.Status)
	assert.Equal(t, "Invalid token", decision.Message)

	alerts := logs.FilterField(zap.String("alert", "identity_provider_unavailable")).All()
	require.Len(t, alerts, 1)
	assert.Equal(t, zapcore.ErrorLevel, alerts[0].Level)
}

type failingAuthorizer struct{}

func (failingAuthorizer) Authorize(ctx context.Context, header string, claims *uaa.TokenClaims) (string, error) {
	return "", services.WrapInternal("tenant lookup failed", errors.New("disk full"))
}

func TestAuthGate_TenantStoreFailure(t *testing.T) {
	f := newGateFixture(t, config.ModeProduction, zap.NewNop())
	gate := NewAuthGate(f.gate.verifier, failingAuthorizer{}, zap.NewNop())

	decision := gate.Authorize(protectedRequest(f.sign(t, testKid, "T-1"), ""), true)

	assert.False(t, decision.Allowed)
	assert.Equal(t, http.StatusInternalServerError, decision.Status)
}

func TestAuthGate_Middleware(t *testing.T) {
	ctx := context.Background()
	f := newGateFixture(t, config.ModeProduction, zap.NewNop())
	_, err := f.tenants.Upsert(ctx, "T-9")
	require.NoError(t, err)

	var gotTenant string
	var gotClaims *uaa.TokenClaims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = GetTenantIDFromContext(r.Context())
		gotClaims = GetClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allowed request reaches handler", func(t *testing.T) {
		w := httptest.NewRecorder()
		f.gate.RequireTenant(next).ServeHTTP(w, protectedRequest(f.sign(t, testKid, "T-9"), ""))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "T-9", gotTenant)
		require.NotNil(t, gotClaims)
		assert.Equal(t, "sb-core-client", gotClaims.Subject)
	})

	t.Run("rejected request writes status body", func(t *testing.T) {
		w := httptest.NewRecorder()
		f.gate.RequireAuth(next).ServeHTTP(w, protectedRequest("", ""))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"status":"401","message":"Authorization header missing or invalid"}`, w.Body.String())
	})

	t.Run("not onboarded", func(t *testing.T) {
		w := httptest.NewRecorder()
		f.gate.RequireTenant(next).ServeHTTP(w, protectedRequest(f.sign(t, testKid, "T-404"), ""))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"status":"404","message":"Tenant not onboarded"}`, w.Body.String())
	})
}
