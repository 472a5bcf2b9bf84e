package config

import "strings"

// RuntimeMode gates the development-only trust bypasses (mock tokens, fallback tenant id).
// The zero value is ModeProduction.
type RuntimeMode int

const (
	ModeProduction RuntimeMode = iota
	ModeNonProduction
)

// ParseRuntimeMode maps an environment name to a RuntimeMode.
// Only explicitly named non-production environments enable ModeNonProduction.
func ParseRuntimeMode(environment string) RuntimeMode {
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "development", "dev", "local", "test":
		return ModeNonProduction
	default:
		return ModeProduction
	}
}

func (m RuntimeMode) String() string {
	if m == ModeNonProduction {
		return "non-production"
	}
	return "production"
}

// AllowsMockTokens reports whether mock-issuer tokens may be verified with the shared secret
func (m RuntimeMode) AllowsMockTokens() bool {
	return m == ModeNonProduction
}

// AllowsFallbackTenant reports whether an operator-configured tenant id may be substituted
func (m RuntimeMode) AllowsFallbackTenant() bool {
	return m == ModeNonProduction
}
