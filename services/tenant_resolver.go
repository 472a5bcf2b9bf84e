package services

import (
	"context"
	"strings"

	"github.com/upb/dpa-psp-adapter/config"
	"github.com/upb/dpa-psp-adapter/repositories"
	"github.com/upb/dpa-psp-adapter/uaa"
	"go.uber.org/zap"
)

// TenantHeader carries a tenant id pre-resolved by a trusted upstream
const TenantHeader = "X-SAP-TenantId"

// TenantResolverConfig configures tenant resolution.
// FallbackTenantID is only substituted in ModeNonProduction.
type TenantResolverConfig struct {
	Mode             config.RuntimeMode
	FallbackTenantID string
}

// TenantResolver determines which tenant a request acts on and confirms it is onboarded
type TenantResolver struct {
	tenants  repositories.TenantRepository
	mode     config.RuntimeMode
	fallback string
	logger   *zap.Logger
}

// NewTenantResolver creates a new tenant resolver
func NewTenantResolver(cfg TenantResolverConfig, tenants repositories.TenantRepository, logger *zap.Logger) *TenantResolver {
	return &TenantResolver{
		tenants:  tenants,
		mode:     cfg.Mode,
		fallback: strings.TrimSpace(cfg.FallbackTenantID),
		logger:   logger,
	}
}

// Resolve picks the tenant id: the header wins, then az_attr.tenantId from the
// verified claims, then the fallback tenant when the runtime allows it.
func (r *TenantResolver) Resolve(header string, claims *uaa.TokenClaims) (string, error) {
	if tenantID := strings.TrimSpace(header); tenantID != "" {
		return tenantID, nil
	}

	if tenantID := claims.TenantID(); tenantID != "" {
		return tenantID, nil
	}

	if r.mode.AllowsFallbackTenant() && r.fallback != "" {
		r.logger.Debug("using fallback tenant id", zap.String("tenant_id", r.fallback))
		return r.fallback, nil
	}

	return "", ErrMissingTenantContext
}

// Authorize resolves the tenant id and checks it against the tenant store.
// The existence check is a pure read.
func (r *TenantResolver) Authorize(ctx context.Context, header string, claims *uaa.TokenClaims) (string, error) {
	tenantID, err := r.Resolve(header, claims)
	if err != nil {
		return "", err
	}

	exists, err := r.tenants.Exists(ctx, tenantID)
	if err != nil {
		r.logger.Error("tenant lookup failed", zap.String("tenant_id", tenantID), zap.Error(err))
		return "", WrapInternal("tenant lookup failed", err)
	}
	if !exists {
		r.logger.Info("tenant not onboarded", zap.String("tenant_id", tenantID))
		return "", ErrTenantNotOnboarded
	}

	return tenantID, nil
}
