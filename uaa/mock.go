package uaa

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const mockTokenLifetime = 24 * time.Hour

// MockTokenIssuer mints HS256 tokens that Verifier accepts in non-production mode
type MockTokenIssuer struct {
	secret  []byte
	pspCode string
	now     func() time.Time
}

// NewMockTokenIssuer creates an issuer signing with the shared mock secret
func NewMockTokenIssuer(secret, pspCode string) *MockTokenIssuer {
	return &MockTokenIssuer{
		secret:  []byte(secret),
		pspCode: pspCode,
		now:     time.Now,
	}
}

// Issue signs a fresh mock token valid for 24 hours
func (m *MockTokenIssuer) Issue() (string, error) {
	if len(m.secret) == 0 {
		return "", newError(KindConfiguration, errors.New("MOCK_JWT_SECRET is not configured"))
	}

	now := m.now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    MockIssuer,
			Subject:   "mock-subject",
			Audience:  jwt.ClaimStrings{"mock-audience"},
			ExpiresAt: jwt.NewNumericDate(now.Add(mockTokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        fmt.Sprintf("mock-jwt-id-%d", now.UnixMilli()),
		},
		ClientID: "mock-client",
		Scope:    []string{"uaa.resource"},
		PSPCode:  m.pspCode,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign mock token: %w", err)
	}
	return signed, nil
}
