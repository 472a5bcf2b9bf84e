package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upb/dpa-psp-adapter/middleware"
	"github.com/upb/dpa-psp-adapter/models"
	"github.com/upb/dpa-psp-adapter/services"
	"github.com/upb/dpa-psp-adapter/utils"
	"go.uber.org/zap"
)

// TenantService defines the tenant lifecycle operations exposed over HTTP
type TenantService interface {
	Onboard(ctx context.Context, tenantID string) (*models.Tenant, error)
	Offboard(ctx context.Context, tenantID string) error
	Get(ctx context.Context, tenantID string) (*models.Tenant, error)
}

// messageResponse is the bare {message} body used by a few legacy outcomes
type messageResponse struct {
	Message string `json:"message"`
}

// TenantHandler handles tenant onboarding requests from the payments core
type TenantHandler struct {
	tenants TenantService
	logger  *zap.Logger
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenants TenantService, logger *zap.Logger) *TenantHandler {
	return &TenantHandler{
		tenants: tenants,
		logger:  logger,
	}
}

// HandleOnboard handles PUT /core/v1/tenants/{tenantId}
func (h *TenantHandler) HandleOnboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := chi.URLParam(r, "tenantId")

	tenant, err := h.tenants.Onboard(ctx, tenantID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, tenant)
}

// HandleOffboard handles DELETE /core/v1/tenants/{tenantId}
func (h *TenantHandler) HandleOffboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := chi.URLParam(r, "tenantId")

	if err := h.tenants.Offboard(ctx, tenantID); err != nil {
		if services.IsValidationError(err) {
			HandleServiceError(w, err, h.logger)
			return
		}

		// Core only distinguishes success from failure here
		h.logger.Warn("tenant offboarding failed",
			zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
			zap.String("tenant_id", tenantID),
			zap.Error(err))
		_ = utils.WriteJSON(w, http.StatusInternalServerError, messageResponse{Message: "Unable to delete tenant"})
		return
	}

	utils.WriteNoContent(w)
}

// HandleGet handles GET /core/v1/tenant/{tenantId}
func (h *TenantHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenants.Get(r.Context(), chi.URLParam(r, "tenantId"))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, models.TenantResponse{Tenant: tenant})
}
