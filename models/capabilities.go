package models

// Capabilities is the adapter's self-description returned to core
type Capabilities struct {
	Capabilities                   []string                      `json:"capabilities"`
	SupportedPaymentTypeProperties []SupportedPaymentTypeProperty `json:"supportedPaymentTypeProperties"`
	PaymentPagePath                string                        `json:"paymentPagePath"`
}

// SupportedPaymentTypeProperty describes one payment type the PSP handles
type SupportedPaymentTypeProperty struct {
	PaymentType                                     string           `json:"paymentType"`
	SupportsExternalDigitalPaymentAuthorization     bool             `json:"supportsExternalDigitalPaymentAuthorization"`
	SupportsExternalDigitalPaymentCapture           bool             `json:"supportsExternalDigitalPaymentCapture"`
	SupportsPaymentPageConsumerManagedTokens        bool             `json:"supportsPaymentPageConsumerManagedTokens"`
	SupportsPaymentPageTransactionTypeAuthorization bool             `json:"supportsPaymentPageTransactionTypeAuthorization"`
	SupportsPaymentPageTransactionTypeDirectCapture bool             `json:"supportsPaymentPageTransactionTypeDirectCapture"`
	PaymentPagePluginPath                           string           `json:"paymentPagePluginPath,omitempty"`
	IsPaymentPageObsolete                           bool             `json:"isPaymentPageObsolete"`
	PaymentTypeRequiredProperties                   []string         `json:"paymentTypeRequiredProperties"`
	PaymentTypeIcon                                 PaymentTypeIcons `json:"paymentTypeIcon"`
}

// PaymentTypeIcons holds icon URLs per theme
type PaymentTypeIcons struct {
	Default PaymentTypeIcon `json:"default"`
	Light   PaymentTypeIcon `json:"light"`
	Dark    PaymentTypeIcon `json:"dark"`
}

// PaymentTypeIcon is a single icon
type PaymentTypeIcon struct {
	URL string `json:"url"`
}
