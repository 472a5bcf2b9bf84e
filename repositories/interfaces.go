package repositories

import (
	"context"
	"errors"

	"github.com/upb/dpa-psp-adapter/models"
)

// ErrTenantNotFound is returned when no record exists for a tenant id
var ErrTenantNotFound = errors.New("tenant not found")

// TenantRepository handles tenant data operations
type TenantRepository interface {
	// FindByID retrieves a tenant without side effects.
	// Tenants marked for deletion are returned with MarkedForDeletion set.
	FindByID(ctx context.Context, tenantID string) (*models.Tenant, error)

	// Exists reports whether the tenant is onboarded and not marked for deletion.
	// It never writes.
	Exists(ctx context.Context, tenantID string) (bool, error)

	// Touch records an access by bumping UpdatedAt and returns the updated tenant
	Touch(ctx context.Context, tenantID string) (*models.Tenant, error)

	// Upsert creates the tenant, or bumps UpdatedAt and clears any deletion mark
	// when it already exists
	Upsert(ctx context.Context, tenantID string) (*models.Tenant, error)

	// Delete removes the tenant, or only flags it when mark is true
	Delete(ctx context.Context, tenantID string, mark bool) error
}

// Repositories holds all repository instances
type Repositories struct {
	Tenants TenantRepository
}
