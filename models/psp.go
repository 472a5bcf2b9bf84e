package models

// Payloads exchanged with the payment service provider.

// PaymentActionAuthOnly authorizes without capturing
const PaymentActionAuthOnly = "auth_only"

// PSPInitializeRequest opens a hosted card registration session
type PSPInitializeRequest struct {
	CartTotalAmount     int64  `json:"cartTotalAmount"`
	Currency            string `json:"currency"`
	PaymentAction       string `json:"paymentAction"`
	ReturnURL           string `json:"returnUrl"`
	WebhookURL          string `json:"webhookUrl"`
	ShowSavedCardOption bool   `json:"showSavedCardOption"`
}

// PSPInitializeResponse returns the hosted page URL
type PSPInitializeResponse struct {
	RedirectURL   string `json:"redirectUrl"`
	TransactionID string `json:"transactionId,omitempty"`
}

// PSPChargeRequest authorizes an amount against a card token
type PSPChargeRequest struct {
	Token           string `json:"token"`
	CartTotalAmount int64  `json:"cartTotalAmount"`
	Currency        string `json:"currency"`
	PaymentAction   string `json:"paymentAction"`
	ReturnURL       string `json:"returnUrl"`
}

// PSPChargeResponse is the PSP's charge result
type PSPChargeResponse struct {
	TransactionID string         `json:"transactionId"`
	Status        string         `json:"status,omitempty"`
	Action        string         `json:"action,omitempty"`
	Amount        int64          `json:"amount,omitempty"`
	Currency      string         `json:"currency,omitempty"`
	CardDetails   PSPCardDetails `json:"cardDetails"`
}

// PSPCardDetails describes the charged card. ExpiryDate is MM/YY.
type PSPCardDetails struct {
	CardType   string `json:"cardType"`
	ExpiryDate string `json:"expiryDate"`
	CardNumber string `json:"cardNumber"`
	CardName   string `json:"cardName"`
}

// PSPTransaction is the PSP's record of a hosted page session
type PSPTransaction struct {
	TransactionID   string `json:"transactionId"`
	Token           string `json:"token"`
	CartTotalAmount int64  `json:"cartTotalAmount"`
	Currency        string `json:"currency,omitempty"`
	ReturnURL       string `json:"returnUrl"`
	Status          string `json:"status,omitempty"`
}

// PaymentCallback is what the PSP sends back on the return redirect
type PaymentCallback struct {
	TransactionID             string
	Status                    string
	DigitalPaymentTransaction string
	TenantID                  string
}
