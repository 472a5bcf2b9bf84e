package payment

import (
	"context"
	"net/url"
	"strings"

	"github.com/upb/dpa-psp-adapter/models"
	"github.com/upb/dpa-psp-adapter/services"
	"github.com/upb/dpa-psp-adapter/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	registrationAmount   = 1000
	registrationCurrency = "USD"
	callbackCurrency     = "USD"

	StatusSuccess = "success"
	StatusCancel  = "cancel"
)

// PSP is the subset of the payment service provider API the service needs
type PSP interface {
	Initialize(ctx context.Context, req *models.PSPInitializeRequest) (*models.PSPInitializeResponse, error)
	Charge(ctx context.Context, req *models.PSPChargeRequest) (*models.PSPChargeResponse, error)
	Transaction(ctx context.Context, transactionID string) (*models.PSPTransaction, error)
}

// CardStore receives registered cards on the core side
type CardStore interface {
	StorePaymentCard(ctx context.Context, tenantID string, result *models.PaymentResult) (*models.StorePaymentCardError, error)
}

// Config holds payment flow settings
type Config struct {
	AdapterBaseURL      string
	ShowSavedCardOption bool
}

// Service translates core payment requests into PSP calls
type Service struct {
	psp    PSP
	cards  CardStore
	cfg    Config
	logger *zap.Logger
}

// NewService creates a new payment service. cards may be nil, in which case
// callback results are not forwarded to core.
func NewService(cfg Config, psp PSP, cards CardStore, logger *zap.Logger) *Service {
	cfg.AdapterBaseURL = strings.TrimRight(cfg.AdapterBaseURL, "/")
	return &Service{
		psp:    psp,
		cards:  cards,
		cfg:    cfg,
		logger: logger,
	}
}

// RequestRegistrationURL opens a hosted card registration page at the PSP
func (s *Service) RequestRegistrationURL(ctx context.Context, req *models.RegistrationURLRequest) (*models.RegistrationURLResponse, error) {
	transaction := req.DigitalPaymentTransaction.DigitalPaymentTransaction
	if transaction == "" {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "Missing DigitalPaymentTransaction in request body", nil)
	}

	returnURL := s.cfg.AdapterBaseURL + "/payment?" + url.Values{"DigitalPaymentTransaction": {transaction}}.Encode()
	resp, err := s.psp.Initialize(ctx, &models.PSPInitializeRequest{
		CartTotalAmount:     registrationAmount,
		Currency:            registrationCurrency,
		PaymentAction:       models.PaymentActionAuthOnly,
		ReturnURL:           returnURL,
		WebhookURL:          s.cfg.AdapterBaseURL + "/payment",
		ShowSavedCardOption: s.cfg.ShowSavedCardOption,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("registration url issued", zap.String("transaction", transaction))
	return &models.RegistrationURLResponse{PaymentCardRegistrationURL: resp.RedirectURL}, nil
}

// ValidateCharges reports every missing mandatory field across all charges
func ValidateCharges(req *models.ChargesRequest) error {
	var missing []string
	for i := range req.Charges {
		if err := utils.ValidateStruct(&req.Charges[i]); err != nil {
			fields := utils.GetMissingFields(err)
			if len(fields) == 0 {
				return services.NewInvalidAttributeError(err.Error(), err)
			}
			missing = append(missing, fields...)
		}
	}
	if len(missing) > 0 {
		return services.NewDomainError(services.ErrorTypeValidation, utils.MissingFieldsMessage(missing), nil).
			WithDetail("missing", missing)
	}
	return nil
}

// Charge authorizes every charge at the PSP. Charges run concurrently; results
// keep request order and the first failure aborts the batch.
func (s *Service) Charge(ctx context.Context, req *models.ChargesRequest) ([]*models.PSPChargeResponse, error) {
	if err := ValidateCharges(req); err != nil {
		return nil, err
	}

	payloads := make([]*models.PSPChargeRequest, len(req.Charges))
	for i, charge := range req.Charges {
		cents, err := ToCents(charge.AmountInPaymentCurrency)
		if err != nil {
			return nil, services.NewInvalidAttributeError("Invalid AmountInPaymentCurrency in request body", err)
		}
		payloads[i] = &models.PSPChargeRequest{
			Token:           charge.Source.Card.PaytCardByPaytServiceProvider,
			CartTotalAmount: cents,
			Currency:        charge.PaymentCurrency,
			PaymentAction:   models.PaymentActionAuthOnly,
			ReturnURL:       s.cfg.AdapterBaseURL + "/payment",
		}
	}

	results := make([]*models.PSPChargeResponse, len(payloads))
	g, gctx := errgroup.WithContext(ctx)
	for i, payload := range payloads {
		i, payload := i, payload
		g.Go(func() error {
			resp, err := s.psp.Charge(gctx, payload)
			if err != nil {
				return err
			}
			results[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("charge batch failed", zap.Int("charges", len(payloads)), zap.Error(err))
		return nil, err
	}

	return results, nil
}

// ValidateCallback checks the PSP return redirect parameters in order
func ValidateCallback(cb *models.PaymentCallback) error {
	switch {
	case cb.TransactionID == "":
		return services.NewDomainError(services.ErrorTypeValidation, "Missing transaction id in request body", nil)
	case cb.Status == "":
		return services.NewDomainError(services.ErrorTypeValidation, "Missing status in request body", nil)
	case cb.DigitalPaymentTransaction == "":
		return services.NewDomainError(services.ErrorTypeValidation, "Missing DigitalPaymentTransaction in request body", nil)
	case cb.TenantID == "":
		return services.NewDomainError(services.ErrorTypeValidation, "Missing tenant id in request body", nil)
	}
	return nil
}

// HandleCallback completes a hosted page session: it fetches the PSP transaction,
// authorizes it, maps the outcome for core and forwards it when core is configured.
func (s *Service) HandleCallback(ctx context.Context, cb *models.PaymentCallback) (*models.PaymentResult, error) {
	if err := ValidateCallback(cb); err != nil {
		return nil, err
	}

	tx, err := s.psp.Transaction(ctx, cb.TransactionID)
	if err != nil {
		return nil, err
	}

	charge, err := s.psp.Charge(ctx, &models.PSPChargeRequest{
		Token:           tx.Token,
		CartTotalAmount: tx.CartTotalAmount,
		Currency:        callbackCurrency,
		PaymentAction:   models.PaymentActionAuthOnly,
		ReturnURL:       tx.ReturnURL,
	})
	if err != nil {
		return nil, err
	}

	result := BuildPaymentResult(cb, charge)

	if s.cards != nil {
		coreErr, err := s.cards.StorePaymentCard(ctx, cb.TenantID, result)
		if err != nil {
			fields := []zap.Field{
				zap.String("tenant_id", cb.TenantID),
				zap.String("transaction", cb.DigitalPaymentTransaction),
				zap.Error(err),
			}
			if coreErr != nil {
				fields = append(fields, zap.Any("core_error", coreErr))
			}
			s.logger.Error("failed to forward payment card to core", fields...)
		}
	}

	return result, nil
}

// BuildPaymentResult maps a PSP charge to the result core expects
func BuildPaymentResult(cb *models.PaymentCallback, charge *models.PSPChargeResponse) *models.PaymentResult {
	month, year, _ := strings.Cut(charge.CardDetails.ExpiryDate, "/")

	return &models.PaymentResult{
		DigitalPaymentTransaction: models.PaymentTransactionResult{
			DigitalPaymentTransaction: cb.DigitalPaymentTransaction,
			DigitalPaytTransResult:    TransResult(cb.Status),
		},
		PaymentCard: models.PaymentCard{
			PaytCardByPaytServiceProvider: charge.TransactionID,
			PaymentCardType:               charge.CardDetails.CardType,
			PaymentCardExpirationMonth:    month,
			PaymentCardExpirationYear:     year,
			PaymentCardMaskedNumber:       charge.CardDetails.CardNumber,
			PaymentCardHolderName:         charge.CardDetails.CardName,
		},
	}
}

// TransResult maps a PSP redirect status to a core result code
func TransResult(status string) string {
	switch status {
	case StatusSuccess:
		return models.TransResultSuccess
	case StatusCancel:
		return models.TransResultCancelled
	default:
		return models.TransResultFailed
	}
}
