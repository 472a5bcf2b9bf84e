package models

// Payloads exchanged with the digital payments core.

// DigitalPaymentTransactionRef identifies the core-side transaction
type DigitalPaymentTransactionRef struct {
	DigitalPaymentTransaction string `json:"DigitalPaymentTransaction" validate:"required"`
}

// RegistrationURLRequest is the body of POST /core/v1/cards/requestregistrationurl
type RegistrationURLRequest struct {
	TenantSubdomain               string                       `json:"tenantSubdomain,omitempty"`
	TenantPlan                    string                       `json:"tenantPlan,omitempty"`
	DigitalPaymentCommerceType    string                       `json:"DigitalPaymentCommerceType,omitempty"`
	DigitalPaymentSessionType     string                       `json:"DigitalPaymentSessionType,omitempty"`
	DigitalPaymentTransaction     DigitalPaymentTransactionRef `json:"DigitalPaymentTransaction"`
	MerchantAccount               string                       `json:"MerchantAccount,omitempty"`
	RedirectURL                   string                       `json:"RedirectURL,omitempty"`
	PaymentServiceProviderCode    string                       `json:"PaymentServiceProviderCode,omitempty"`
	DgtlPaytCardRegnCntxtParamVal string                       `json:"DgtlPaytCardRegnCntxtParamVal,omitempty"`
}

// RegistrationURLResponse carries the PSP hosted page the consumer is sent to
type RegistrationURLResponse struct {
	PaymentCardRegistrationURL string `json:"PaymentCardRegistrationURL"`
}

// ChargesRequest is the body of POST /core/v1/charges
type ChargesRequest struct {
	Charges []Charge `json:"Charges"`
}

// Charge is a single authorization request from core
type Charge struct {
	DigitalPaymentTransaction     DigitalPaymentTransactionRef `json:"DigitalPaymentTransaction"`
	Source                        ChargeSource                 `json:"Source"`
	AmountInPaymentCurrency       string                       `json:"AmountInPaymentCurrency" validate:"required"`
	PaymentCurrency               string                       `json:"PaymentCurrency" validate:"required"`
	PaymentTransactionDescription string                       `json:"PaymentTransactionDescription" validate:"required"`
	PaymentIsToBeCaptured         *bool                        `json:"PaymentIsToBeCaptured" validate:"required"`
	ReferenceDocument             string                       `json:"ReferenceDocument" validate:"required"`
	DigitalPaymentSettlementRef   string                       `json:"DigitalPaymentSettlementRef,omitempty"`
	CustomerAccountNumber         string                       `json:"CustomerAccountNumber" validate:"required"`
	AuthorizationByPaytSrvcPrvdr  string                       `json:"AuthorizationByPaytSrvcPrvdr" validate:"required"`
	AuthorizationDateTime         string                       `json:"AuthorizationDateTime" validate:"required"`
	DigitalPaymentCommerceType    string                       `json:"DigitalPaymentCommerceType" validate:"required"`
	AuthorizationRelationID       string                       `json:"AuthorizationRelationId,omitempty"`
	DgtlPaytAuthznScenarioType    string                       `json:"DgtlPaytAuthznScenarioType,omitempty"`
	L2L3Data                      *L2L3Data                    `json:"L2L3Data,omitempty"`
	ChargeIsPartial               bool                         `json:"ChargeIsPartial,omitempty"`
}

// ChargeSource describes the card and merchant for a charge
type ChargeSource struct {
	PaymentType string         `json:"PaymentType,omitempty"`
	Merchant    ChargeMerchant `json:"Merchant"`
	Card        ChargeCard     `json:"Card"`
}

// ChargeMerchant is the merchant account charged against
type ChargeMerchant struct {
	Account string `json:"Account" validate:"required"`
}

// ChargeCard is the tokenized card the PSP should charge
type ChargeCard struct {
	PaytCardByPaytServiceProvider string `json:"PaytCardByPaytServiceProvider,omitempty"`
	PaymentCardType               string `json:"PaymentCardType,omitempty"`
	PaymentCardExpirationMonth    string `json:"PaymentCardExpirationMonth,omitempty"`
	PaymentCardExpirationYear     string `json:"PaymentCardExpirationYear,omitempty"`
	PaymentCardMaskedNumber       string `json:"PaymentCardMaskedNumber,omitempty"`
	PaymentCardHolderName         string `json:"PaymentCardHolderName,omitempty"`
	IssuerIdentificationNumber    string `json:"IssuerIdentificationNumber,omitempty"`
}

// L2L3Data is level 2/3 order data. The adapter passes it through untouched.
type L2L3Data struct {
	DigitalPaymentExternalOrder         string   `json:"DigitalPaymentExternalOrder,omitempty"`
	ExtendedDigitalPaymentExternalOrder string   `json:"ExtendedDigitalPaymentExternalOrder,omitempty"`
	TransCrcyAlphaISOCode               string   `json:"TransCrcyAlphaISOCode,omitempty"`
	TaxAmount                           string   `json:"TaxAmount,omitempty"`
	SalesOrder                          string   `json:"SalesOrder,omitempty"`
	SalesOrderDate                      string   `json:"SalesOrderDate,omitempty"`
	CustomerInvoice                     string   `json:"CustomerInvoice,omitempty"`
	DigitalPaymentFreightAmount         string   `json:"DigitalPaymentFreightAmount,omitempty"`
	DigitalPaymentDutyAmount            string   `json:"DigitalPaymentDutyAmount,omitempty"`
	DigitalPaymentDiscountAmount        string   `json:"DigitalPaymentDiscountAmount,omitempty"`
	ShipToPartyPostalCode               string   `json:"ShipToPartyPostalCode,omitempty"`
	ShipToPartyCountryISO3Code          string   `json:"ShipToPartyCountryISO3Code,omitempty"`
	ShipToPartyRegionISOCode            string   `json:"ShipToPartyRegionISOCode,omitempty"`
	ShipFromPartyPostalCode             string   `json:"ShipFromPartyPostalCode,omitempty"`
	ShipFromPartyCountryISO3Code        string   `json:"ShipFromPartyCountryISO3Code,omitempty"`
	DigitalPaymentTaxRateInPercent      string   `json:"DigitalPaymentTaxRateInPercent,omitempty"`
	L3Items                             []L3Item `json:"L3Items,omitempty"`
}

// L3Item is one line item of L2L3Data
type L3Item struct {
	SalesDocumentItem              int    `json:"SalesDocumentItem,omitempty"`
	ProductName                    string `json:"ProductName,omitempty"`
	Product                        string `json:"Product,omitempty"`
	DigitalPaymentSalesDocItmAmt   string `json:"DigitalPaymentSalesDocItmAmt,omitempty"`
	UNSPSCCommodityCode            string `json:"UNSPSCCommodityCode,omitempty"`
	DgtlPaytSlsDocItmAmtIsGrssAmt  bool   `json:"DgtlPaytSlsDocItmAmtIsGrssAmt,omitempty"`
	DigitalPaytSlsDocItmHasDiscAmt bool   `json:"DigitalPaytSlsDocItmHasDiscAmt,omitempty"`
	DigitalPaymentDiscountAmount   string `json:"DigitalPaymentDiscountAmount,omitempty"`
	Quantity                       string `json:"Quantity,omitempty"`
	DigitalPaymentQuantityUnit     string `json:"DigitalPaymentQuantityUnit,omitempty"`
	DigitalPaymentSlsDocItmUnitPrc string `json:"DigitalPaymentSlsDocItmUnitPrc,omitempty"`
	Tax                            []Tax  `json:"Tax,omitempty"`
}

// Tax is a tax line on an L3 item
type Tax struct {
	DigitalPaymentSlsDocItmTxType  string `json:"DigitalPaymentSlsDocItmTxType,omitempty"`
	DigitalPaymentItmIsTaxExempted bool   `json:"DigitalPaymentItmIsTaxExempted,omitempty"`
	DigitalPaymentTaxRateInPercent string `json:"DigitalPaymentTaxRateInPercent,omitempty"`
	TaxAmount                      string `json:"TaxAmount,omitempty"`
}

// Transaction result codes reported back to core
const (
	TransResultSuccess   = "01"
	TransResultFailed    = "02"
	TransResultCancelled = "05"
)

// PaymentResult is the outcome of a PSP callback, returned to the caller and forwarded to core
type PaymentResult struct {
	DigitalPaymentTransaction PaymentTransactionResult `json:"DigitalPaymentTransaction"`
	PaymentCard               PaymentCard              `json:"PaymentCard"`
}

// PaymentTransactionResult pairs the core transaction with its result code
type PaymentTransactionResult struct {
	DigitalPaymentTransaction string `json:"DigitalPaymentTransaction"`
	DigitalPaytTransResult    string `json:"DigitalPaytTransResult"`
}

// PaymentCard is the card registered at the PSP
type PaymentCard struct {
	PaytCardByPaytServiceProvider string `json:"PaytCardByPaytServiceProvider"`
	PaymentCardType               string `json:"PaymentCardType"`
	PaymentCardExpirationMonth    string `json:"PaymentCardExpirationMonth"`
	PaymentCardExpirationYear     string `json:"PaymentCardExpirationYear"`
	PaymentCardMaskedNumber       string `json:"PaymentCardMaskedNumber"`
	PaymentCardHolderName         string `json:"PaymentCardHolderName"`
}

// StorePaymentCardError is the body core returns when it rejects a stored card
type StorePaymentCardError struct {
	ID                         string `json:"Id,omitempty"`
	AdviceItemIndex            int    `json:"AdviceItemIndex,omitempty"`
	TransactionByPaytSrvcPrvdr string `json:"TransactionByPaytSrvcPrvdr,omitempty"`
	AttributeName              string `json:"AttributeName,omitempty"`
	SchemaViolationPath        string `json:"SchemaViolationPath,omitempty"`
	SchemaViolationMessage     string `json:"SchemaViolationMessage,omitempty"`
	DigitalPaymentTransaction  string `json:"DigitalPaymentTransaction,omitempty"`
	ProcessingStatus           string `json:"ProcessingStatus,omitempty"`
}
