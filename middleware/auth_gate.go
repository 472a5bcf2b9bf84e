package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/upb/dpa-psp-adapter/services"
	"github.com/upb/dpa-psp-adapter/uaa"
	"github.com/upb/dpa-psp-adapter/utils"
	"go.uber.org/zap"
)

// Rejection messages returned to callers
const (
	MessageMissingAuthorization = "Authorization header missing or invalid"
	MessageInvalidToken         = "Invalid token"
	MessageInternalError        = "Internal server error"
)

// TokenVerifier verifies a bearer token and returns its claims
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*uaa.TokenClaims, error)
}

// TenantAuthorizer resolves the tenant a request acts on and checks it is onboarded
type TenantAuthorizer interface {
	Authorize(ctx context.Context, header string, claims *uaa.TokenClaims) (string, error)
}

// Decision is the outcome of AuthGate.Authorize. Either Allowed is true and
// Claims is set, or Status and Message describe the rejection.
type Decision struct {
	Allowed  bool
	Claims   *uaa.TokenClaims
	TenantID string
	Status   int
	Message  string
}

// Allowed builds an accepting decision
func Allowed(claims *uaa.TokenClaims, tenantID string) Decision {
	return Decision{Allowed: true, Claims: claims, TenantID: tenantID}
}

// Rejected builds a rejecting decision
func Rejected(status int, message string) Decision {
	return Decision{Status: status, Message: message}
}

// AuthGate composes token verification and tenant resolution into a single decision
type AuthGate struct {
	verifier TokenVerifier
	tenants  TenantAuthorizer
	logger   *zap.Logger
}

// NewAuthGate creates a new AuthGate
func NewAuthGate(verifier TokenVerifier, tenants TenantAuthorizer, logger *zap.Logger) *AuthGate {
	return &AuthGate{
		verifier: verifier,
		tenants:  tenants,
		logger:   logger,
	}
}

// Authorize checks the bearer token and, when requireTenant is set, the tenant context.
// Verification failures of any kind collapse to a single 401 Invalid token.
func (g *AuthGate) Authorize(r *http.Request, requireTenant bool) Decision {
	ctx := r.Context()
	requestID := GetRequestIDFromContext(ctx)

	token := extractBearerToken(r)
	if token == "" {
		g.logger.Debug("missing bearer token",
			zap.String("request_id", requestID),
			zap.String("kind", string(uaa.KindMissingCredential)))
		return Rejected(http.StatusUnauthorized, MessageMissingAuthorization)
	}

	claims, err := g.verifier.Verify(ctx, token)
	if err != nil {
		kind := uaa.KindOf(err)
		if kind == uaa.KindUpstreamUnavailable {
			g.logger.Error("identity provider unavailable",
				zap.String("alert", "identity_provider_unavailable"),
				zap.String("request_id", requestID),
				zap.Error(err))
		} else {
			g.logger.Warn("token verification failed",
				zap.String("request_id", requestID),
				zap.String("kind", string(kind)),
				zap.Error(err))
		}
		return Rejected(http.StatusUnauthorized, MessageInvalidToken)
	}

	if !requireTenant {
		return Allowed(claims, "")
	}

	tenantID, err := g.tenants.Authorize(ctx, r.Header.Get(services.TenantHeader), claims)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingTenantContext):
			return Rejected(http.StatusUnauthorized, services.ErrMissingTenantContext.Message)
		case errors.Is(err, services.ErrTenantNotOnboarded):
			return Rejected(http.StatusNotFound, services.ErrTenantNotOnboarded.Message)
		default:
			g.logger.Error("tenant authorization failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			return Rejected(http.StatusInternalServerError, MessageInternalError)
		}
	}

	return Allowed(claims, tenantID)
}

// RequireAuth is a middleware that requires a valid bearer token
func (g *AuthGate) RequireAuth(next http.Handler) http.Handler {
	return g.handler(next, false)
}

// RequireTenant is a middleware that requires a valid bearer token and an onboarded tenant
func (g *AuthGate) RequireTenant(next http.Handler) http.Handler {
	return g.handler(next, true)
}

func (g *AuthGate) handler(next http.Handler, requireTenant bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := g.Authorize(r, requireTenant)
		if !decision.Allowed {
			_ = utils.WriteStatus(w, decision.Status, decision.Message)
			return
		}

		ctx := WithClaims(r.Context(), decision.Claims)
		if decision.TenantID != "" {
			ctx = WithTenantID(ctx, decision.TenantID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
