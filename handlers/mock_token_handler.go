package handlers

import (
	"net/http"

	"github.com/upb/dpa-psp-adapter/config"
	"github.com/upb/dpa-psp-adapter/utils"
	"go.uber.org/zap"
)

// TokenIssuer mints development tokens
type TokenIssuer interface {
	Issue() (string, error)
}

// MockTokenResponse is the body of POST /mock-token
type MockTokenResponse struct {
	MockToken string `json:"mockToken"`
}

// MockTokenHandler issues mock bearer tokens outside production
type MockTokenHandler struct {
	issuer TokenIssuer
	mode   config.RuntimeMode
	logger *zap.Logger
}

// NewMockTokenHandler creates a new MockTokenHandler
func NewMockTokenHandler(issuer TokenIssuer, mode config.RuntimeMode, logger *zap.Logger) *MockTokenHandler {
	return &MockTokenHandler{
		issuer: issuer,
		mode:   mode,
		logger: logger,
	}
}

// HandleIssue handles POST /mock-token. Production answers as if the route did not exist.
func (h *MockTokenHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	if !h.mode.AllowsMockTokens() {
		_ = utils.WriteNotFound(w, "")
		return
	}

	token, err := h.issuer.Issue()
	if err != nil {
		h.logger.Error("failed to issue mock token", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Unable to issue mock token")
		return
	}

	_ = utils.WriteOK(w, MockTokenResponse{MockToken: token})
}
