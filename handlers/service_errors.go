package handlers

import (
	"errors"
	"net/http"

	"github.com/upb/dpa-psp-adapter/services"
	"github.com/upb/dpa-psp-adapter/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to adapter error envelopes
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	message := services.GetErrorMessage(err)

	var writeErr error
	switch {
	case services.IsNotFoundError(err):
		writeErr = utils.WriteNotFound(w, message)

	case services.IsInvalidAttributeError(err):
		writeErr = utils.WriteBadRequest(w, utils.IdentifierInvalidAttribute, message)

	case services.IsValidationError(err):
		writeErr = utils.WriteMissingAttribute(w, message)

	case services.IsUnauthorizedError(err):
		writeErr = utils.WriteUnauthorized(w, message)

	case services.IsConflictError(err):
		writeErr = utils.WriteError(w, http.StatusConflict, utils.IdentifierInvalidAttribute, message)

	case services.IsExternalError(err):
		// Upstream failures are mapped to 502 Bad Gateway
		logger.Error("upstream call failed", zap.Error(err))
		writeErr = utils.WriteBadGateway(w, message)

	case services.IsConfigurationError(err):
		logger.Error("adapter is not configured for this operation", zap.Error(err))
		writeErr = utils.WriteInternalServerError(w, message)

	case services.IsInternalError(err):
		// Log internal errors but return generic message
		logger.Error("internal server error", zap.Error(err))
		writeErr = utils.WriteInternalServerError(w, "")

	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		writeErr = utils.WriteInternalServerError(w, "")
	}

	if writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}

	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		logger.Debug("handled service error",
			zap.String("type", string(domainErr.Type)),
			zap.String("message", domainErr.Message),
			zap.Any("details", domainErr.Details))
	}
}
