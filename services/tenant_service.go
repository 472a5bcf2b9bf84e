package services

import (
	"context"
	"errors"

	"github.com/upb/dpa-psp-adapter/models"
	"github.com/upb/dpa-psp-adapter/repositories"
	"github.com/upb/dpa-psp-adapter/utils"
	"go.uber.org/zap"
)

// TenantService handles tenant onboarding, offboarding and lookup
type TenantService struct {
	tenants       repositories.TenantRepository
	markForDelete bool
	logger        *zap.Logger
}

// NewTenantService creates a new tenant service.
// When markForDelete is set, offboarding flags the record instead of removing it.
func NewTenantService(tenants repositories.TenantRepository, markForDelete bool, logger *zap.Logger) *TenantService {
	return &TenantService{
		tenants:       tenants,
		markForDelete: markForDelete,
		logger:        logger,
	}
}

// Onboard creates the tenant or refreshes an existing record
func (s *TenantService) Onboard(ctx context.Context, tenantID string) (*models.Tenant, error) {
	if err := utils.ValidateTenantID(tenantID); err != nil {
		return nil, ErrMissingTenantPath
	}

	tenant, err := s.tenants.Upsert(ctx, tenantID)
	if err != nil {
		s.logger.Error("failed to onboard tenant", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, WrapInternal("failed to onboard tenant", err)
	}

	s.logger.Info("tenant onboarded", zap.String("tenant_id", tenantID))
	return tenant, nil
}

// Offboard removes the tenant, or marks it for deletion
func (s *TenantService) Offboard(ctx context.Context, tenantID string) error {
	if err := utils.ValidateTenantID(tenantID); err != nil {
		return ErrMissingTenantPath
	}

	if err := s.tenants.Delete(ctx, tenantID, s.markForDelete); err != nil {
		if errors.Is(err, repositories.ErrTenantNotFound) {
			return ErrTenantNotFound
		}
		s.logger.Error("failed to offboard tenant", zap.String("tenant_id", tenantID), zap.Error(err))
		return WrapInternal("failed to offboard tenant", err)
	}

	return nil
}

// Get returns the tenant and records the access
func (s *TenantService) Get(ctx context.Context, tenantID string) (*models.Tenant, error) {
	if err := utils.ValidateTenantID(tenantID); err != nil {
		return nil, ErrMissingTenantPath
	}

	tenant, err := s.tenants.Touch(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repositories.ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, WrapInternal("failed to get tenant", err)
	}

	return tenant, nil
}
