package uaa

import (
	"github.com/golang-jwt/jwt/v5"
)

// MockIssuer is the issuer reserved for locally minted development tokens
const MockIssuer = "mock-issuer"

// tenantIDAttribute is the key under az_attr that carries the tenant id
const tenantIDAttribute = "tenantId"

// TokenClaims is the decoded payload of a bearer token
type TokenClaims struct {
	jwt.RegisteredClaims
	ClientID string   `json:"client_id,omitempty"`
	Scope    []string `json:"scope,omitempty"`
	PSPCode  string   `json:"psp_code,omitempty"`

	// AuthorizationAttributes holds the az_attr custom attributes
	AuthorizationAttributes map[string]interface{} `json:"az_attr,omitempty"`
}

// IsMock reports whether the token claims the mock issuer
func (c *TokenClaims) IsMock() bool {
	return c != nil && c.Issuer == MockIssuer
}

// TenantID returns az_attr.tenantId, or "" when absent or not a string
func (c *TokenClaims) TenantID() string {
	if c == nil || c.AuthorizationAttributes == nil {
		return ""
	}
	tenantID, ok := c.AuthorizationAttributes[tenantIDAttribute].(string)
	if !ok {
		return ""
	}
	return tenantID
}
