package handlers

import (
	"net/http"

	"github.com/upb/dpa-psp-adapter/models"
	"github.com/upb/dpa-psp-adapter/services"
	"github.com/upb/dpa-psp-adapter/utils"
)

// CapabilitiesHandler serves the adapter capability document
type CapabilitiesHandler struct {
	capabilities *models.Capabilities
}

// NewCapabilitiesHandler creates a CapabilitiesHandler for the configured PSP
func NewCapabilitiesHandler(pspCode string) *CapabilitiesHandler {
	return &CapabilitiesHandler{capabilities: services.BuildCapabilities(pspCode)}
}

// HandleGet handles GET /core/v1/capabilities
func (h *CapabilitiesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.capabilities)
}
