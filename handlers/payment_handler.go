package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/upb/dpa-psp-adapter/middleware"
	"github.com/upb/dpa-psp-adapter/models"
	"github.com/upb/dpa-psp-adapter/services"
	"github.com/upb/dpa-psp-adapter/utils"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies accepted from core and the PSP
const maxBodyBytes = 1 << 20

// PaymentService defines the payment operations exposed over HTTP
type PaymentService interface {
	RequestRegistrationURL(ctx context.Context, req *models.RegistrationURLRequest) (*models.RegistrationURLResponse, error)
	Charge(ctx context.Context, req *models.ChargesRequest) ([]*models.PSPChargeResponse, error)
	HandleCallback(ctx context.Context, cb *models.PaymentCallback) (*models.PaymentResult, error)
}

// PaymentHandler handles card registration, charges and PSP callbacks
type PaymentHandler struct {
	payments PaymentService
	logger   *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		logger:   logger,
	}
}

// HandleRequestRegistrationURL handles POST /core/v1/cards/requestregistrationurl
func (h *PaymentHandler) HandleRequestRegistrationURL(w http.ResponseWriter, r *http.Request) {
	var req models.RegistrationURLRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	resp, err := h.payments.RequestRegistrationURL(r.Context(), &req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, resp)
}

// HandleCharges handles POST /core/v1/charges
func (h *PaymentHandler) HandleCharges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.ChargesRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	results, err := h.payments.Charge(ctx, &req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("charges authorized",
		zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
		zap.String("tenant_id", middleware.GetTenantIDFromContext(ctx)),
		zap.Int("charges", len(results)))

	_ = utils.WriteOK(w, results)
}

// HandleCallback handles GET /payment, the PSP return redirect
func (h *PaymentHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	cb := &models.PaymentCallback{
		TransactionID:             query.Get("transactionId"),
		Status:                    query.Get("status"),
		DigitalPaymentTransaction: query.Get("DigitalPaymentTransaction"),
		TenantID:                  query.Get("tenantId"),
	}

	result, err := h.payments.HandleCallback(r.Context(), cb)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	w.Header().Set(services.TenantHeader, cb.TenantID)
	_ = utils.WriteOK(w, result)
}

// HandleWebhook handles POST /payment. The PSP notification is acknowledged;
// the return redirect carries the data the adapter acts on.
func (h *PaymentHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&payload); err != nil && err != io.EOF {
		h.logger.Warn("unreadable psp webhook", zap.Error(err))
	} else {
		h.logger.Debug("psp webhook received", zap.Any("payload", payload))
	}

	_ = utils.WriteOK(w, struct{}{})
}

// decodeJSONBody requires a JSON content type and decodes the bounded body into v
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if !utils.IsJSONRequest(r) {
		return services.ErrNotJSON
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := utils.DecodeJSON(r, v); err != nil {
		return services.NewInvalidAttributeError("Request body is not a json", err)
	}
	return nil
}
