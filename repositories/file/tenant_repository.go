package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/upb/dpa-psp-adapter/models"
	"github.com/upb/dpa-psp-adapter/repositories"
	"go.uber.org/zap"
)

// TenantRepository stores tenants as a JSON array in a single file.
// All access is serialized through mu; writes go to a temp file that is renamed into place.
type TenantRepository struct {
	mu             sync.Mutex
	path           string
	adapterBaseURL string
	logger         *zap.Logger
	now            func() time.Time
}

// NewTenantRepository creates a file-backed tenant repository
func NewTenantRepository(path, adapterBaseURL string, logger *zap.Logger) *TenantRepository {
	return &TenantRepository{
		path:           path,
		adapterBaseURL: adapterBaseURL,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

var _ repositories.TenantRepository = (*TenantRepository)(nil)

// FindByID retrieves a tenant by id
func (r *TenantRepository) FindByID(ctx context.Context, tenantID string) (*models.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenants, err := r.load()
	if err != nil {
		return nil, err
	}

	i := indexOf(tenants, tenantID)
	if i < 0 {
		return nil, repositories.ErrTenantNotFound
	}
	tenant := tenants[i]
	return &tenant, nil
}

// Exists reports whether an active tenant record exists
func (r *TenantRepository) Exists(ctx context.Context, tenantID string) (bool, error) {
	tenant, err := r.FindByID(ctx, tenantID)
	if errors.Is(err, repositories.ErrTenantNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !tenant.MarkedForDeletion, nil
}

// Touch bumps UpdatedAt on an existing tenant
func (r *TenantRepository) Touch(ctx context.Context, tenantID string) (*models.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenants, err := r.load()
	if err != nil {
		return nil, err
	}

	i := indexOf(tenants, tenantID)
	if i < 0 {
		return nil, repositories.ErrTenantNotFound
	}

	tenants[i].UpdatedAt = r.now()
	if err := r.save(tenants); err != nil {
		return nil, err
	}

	tenant := tenants[i]
	return &tenant, nil
}

// Upsert creates or refreshes a tenant
func (r *TenantRepository) Upsert(ctx context.Context, tenantID string) (*models.Tenant, error) {
	if tenantID == "" {
		return nil, errors.New("invalid tenant id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tenants, err := r.load()
	if err != nil {
		return nil, err
	}

	now := r.now()
	i := indexOf(tenants, tenantID)
	if i >= 0 {
		tenants[i].UpdatedAt = now
		tenants[i].MarkedForDeletion = false
	} else {
		tenants = append(tenants, *models.NewTenant(tenantID, r.adapterBaseURL, now))
		i = len(tenants) - 1
		r.logger.Info("tenant created", zap.String("tenant_id", tenantID))
	}

	if err := r.save(tenants); err != nil {
		return nil, err
	}

	tenant := tenants[i]
	return &tenant, nil
}

// Delete removes or marks a tenant
func (r *TenantRepository) Delete(ctx context.Context, tenantID string, mark bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenants, err := r.load()
	if err != nil {
		return err
	}

	i := indexOf(tenants, tenantID)
	if i < 0 {
		return repositories.ErrTenantNotFound
	}

	if mark {
		tenants[i].MarkedForDeletion = true
		tenants[i].UpdatedAt = r.now()
	} else {
		tenants = append(tenants[:i], tenants[i+1:]...)
	}

	if err := r.save(tenants); err != nil {
		return err
	}

	r.logger.Info("tenant offboarded", zap.String("tenant_id", tenantID), zap.Bool("marked", mark))
	return nil
}

// load reads the tenant file. A missing file is an empty store.
func (r *TenantRepository) load() ([]models.Tenant, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Tenant{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tenant store: %w", err)
	}
	if len(data) == 0 {
		return []models.Tenant{}, nil
	}

	var tenants []models.Tenant
	if err := json.Unmarshal(data, &tenants); err != nil {
		return nil, fmt.Errorf("failed to decode tenant store: %w", err)
	}
	return tenants, nil
}

func (r *TenantRepository) save(tenants []models.Tenant) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create tenant store directory: %w", err)
	}

	data, err := json.MarshalIndent(tenants, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tenant store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".tenants-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write tenant store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write tenant store: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace tenant store: %w", err)
	}
	return nil
}

func indexOf(tenants []models.Tenant, tenantID string) int {
	for i := range tenants {
		if tenants[i].TenantID == tenantID {
			return i
		}
	}
	return -1
}
