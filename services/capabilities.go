package services

import (
	"fmt"

	"github.com/upb/dpa-psp-adapter/models"
)

const (
	CapabilityCardRegister  = "cc_register"
	CapabilityCardAuthorize = "cc_authorize"

	PaymentTypeCreditCard = "A3"
	PaymentTypePayPal     = "PP"

	defaultPSPCode = "default"
	iconBaseURL    = "https://static.sapdigitalpayment.com/icons"
)

// BuildCapabilities describes what this adapter supports for the given PSP
func BuildCapabilities(pspCode string) *models.Capabilities {
	iconCode := pspCode
	if iconCode == "" {
		iconCode = defaultPSPCode
	}

	return &models.Capabilities{
		Capabilities: []string{CapabilityCardRegister, CapabilityCardAuthorize},
		SupportedPaymentTypeProperties: []models.SupportedPaymentTypeProperty{
			{
				PaymentType: PaymentTypeCreditCard,
				SupportsPaymentPageTransactionTypeAuthorization: true,
				SupportsPaymentPageTransactionTypeDirectCapture: true,
				PaymentTypeRequiredProperties:                   []string{},
				PaymentTypeIcon:                                 icons(iconCode, "creditcard"),
			},
			{
				PaymentType:           PaymentTypePayPal,
				PaymentPagePluginPath: fmt.Sprintf("/plugins/%s/paypal", iconCode),
				PaymentTypeRequiredProperties: []string{
					"BillingAddress-AddressLine2",
					"BillingAddress-CountryThreeDigitISOCode",
				},
				PaymentTypeIcon: icons(iconCode, "paypal"),
			},
		},
		PaymentPagePath: "/payment-page/" + pspCode,
	}
}

func icons(pspCode, name string) models.PaymentTypeIcons {
	url := func(suffix string) models.PaymentTypeIcon {
		return models.PaymentTypeIcon{URL: fmt.Sprintf("%s/%s/%s%s.svg", iconBaseURL, pspCode, name, suffix)}
	}
	return models.PaymentTypeIcons{
		Default: url(""),
		Light:   url("-light"),
		Dark:    url("-dark"),
	}
}
