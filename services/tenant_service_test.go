package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/dpa-psp-adapter/models"
	"github.com/upb/dpa-psp-adapter/repositories"
	"go.uber.org/zap"
)

func TestTenantService_Onboard(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		repo := new(MockTenantRepository)
		expected := models.NewTenant("T-1", "https://adapter.example.com", now)
		repo.On("Upsert", ctx, "T-1").Return(expected, nil)

		service := NewTenantService(repo, false, zap.NewNop())
		tenant, err := service.Onboard(ctx, "T-1")

		require.NoError(t, err)
		assert.Equal(t, expected, tenant)
		repo.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		repo := new(MockTenantRepository)
		service := NewTenantService(repo, false, zap.NewNop())

		for _, id := range []string{"", strings.Repeat("x", 51), "tenänt"} {
			_, err := service.Onboard(ctx, id)
			assert.True(t, IsValidationError(err), id)
		}
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(MockTenantRepository)
		repo.On("Upsert", ctx, "T-1").Return(nil, errors.New("write failed"))

		service := NewTenantService(repo, false, zap.NewNop())
		_, err := service.Onboard(ctx, "T-1")

		assert.True(t, IsInternalError(err))
	})
}

func TestTenantService_Offboard(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		mark     bool
		repoErr  error
		wantType ErrorType
	}{
		{name: "delete", mark: false},
		{name: "mark for deletion", mark: true},
		{name: "not found", repoErr: repositories.ErrTenantNotFound, wantType: ErrorTypeNotFound},
		{name: "store failure", repoErr: errors.New("io"), wantType: ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockTenantRepository)
			repo.On("Delete", ctx, "T-1", tt.mark).Return(tt.repoErr)

			service := NewTenantService(repo, tt.mark, zap.NewNop())
			err := service.Offboard(ctx, "T-1")

			if tt.wantType == "" {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantType, GetErrorType(err))
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestTenantService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("touches the tenant", func(t *testing.T) {
		repo := new(MockTenantRepository)
		tenant := &models.Tenant{TenantID: "T-1"}
		repo.On("Touch", ctx, "T-1").Return(tenant, nil)

		service := NewTenantService(repo, false, zap.NewNop())
		got, err := service.Get(ctx, "T-1")

		require.NoError(t, err)
		assert.Equal(t, tenant, got)
		repo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockTenantRepository)
		repo.On("Touch", ctx, "T-404").Return(nil, repositories.ErrTenantNotFound)

		service := NewTenantService(repo, false, zap.NewNop())
		_, err := service.Get(ctx, "T-404")

		assert.True(t, IsNotFoundError(err))
	})
}
