package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/upb/dpa-psp-adapter/models"
	"github.com/upb/dpa-psp-adapter/repositories"
	"go.uber.org/zap"
)

const tenantColumns = "tenant_id, tenant_url, created_at, updated_at, marked_for_deletion"

// TenantRepository implements the repositories.TenantRepository interface
type TenantRepository struct {
	db             *DB
	adapterBaseURL string
	logger         *zap.Logger
	now            func() time.Time
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB, adapterBaseURL string, logger *zap.Logger) *TenantRepository {
	return &TenantRepository{
		db:             db,
		adapterBaseURL: adapterBaseURL,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

var _ repositories.TenantRepository = (*TenantRepository)(nil)

// FindByID retrieves a tenant by id
func (r *TenantRepository) FindByID(ctx context.Context, tenantID string) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE tenant_id = $1`

	tenant, err := scanTenant(r.db.QueryRowContext(ctx, query, tenantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return tenant, nil
}

// Exists reports whether an active tenant record exists
func (r *TenantRepository) Exists(ctx context.Context, tenantID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM tenants WHERE tenant_id = $1 AND NOT marked_for_deletion)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, tenantID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check tenant: %w", err)
	}

	return exists, nil
}

// Touch bumps updated_at on an existing tenant
func (r *TenantRepository) Touch(ctx context.Context, tenantID string) (*models.Tenant, error) {
	query := `UPDATE tenants SET updated_at = $2 WHERE tenant_id = $1 RETURNING ` + tenantColumns

	tenant, err := scanTenant(r.db.QueryRowContext(ctx, query, tenantID, r.now()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to touch tenant: %w", err)
	}

	return tenant, nil
}

// Upsert creates or refreshes a tenant
func (r *TenantRepository) Upsert(ctx context.Context, tenantID string) (*models.Tenant, error) {
	if tenantID == "" {
		return nil, errors.New("invalid tenant id")
	}

	query := `
		INSERT INTO tenants (` + tenantColumns + `)
		VALUES ($1, $2, $3, $3, false)
		ON CONFLICT (tenant_id) DO UPDATE
		SET updated_at = EXCLUDED.updated_at, marked_for_deletion = false
		RETURNING ` + tenantColumns

	tenant, err := scanTenant(r.db.QueryRowContext(ctx, query,
		tenantID,
		models.TenantURL(r.adapterBaseURL, tenantID),
		r.now(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert tenant: %w", err)
	}

	r.logger.Debug("tenant upserted", zap.String("tenant_id", tenantID))
	return tenant, nil
}

// Delete removes or marks a tenant
func (r *TenantRepository) Delete(ctx context.Context, tenantID string, mark bool) error {
	var (
		result sql.Result
		err    error
	)
	if mark {
		result, err = r.db.ExecContext(ctx,
			`UPDATE tenants SET marked_for_deletion = true, updated_at = $2 WHERE tenant_id = $1`,
			tenantID, r.now())
	} else {
		result, err = r.db.ExecContext(ctx, `DELETE FROM tenants WHERE tenant_id = $1`, tenantID)
	}
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repositories.ErrTenantNotFound
	}

	r.logger.Info("tenant offboarded", zap.String("tenant_id", tenantID), zap.Bool("marked", mark))
	return nil
}

func scanTenant(row *sql.Row) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	err := row.Scan(
		&tenant.TenantID,
		&tenant.TenantURL,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
		&tenant.MarkedForDeletion,
	)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}
