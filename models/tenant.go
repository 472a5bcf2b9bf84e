package models

import (
	"strings"
	"time"
)

// Tenant represents an onboarded customer of the adapter
type Tenant struct {
	TenantID          string    `json:"tenantId" db:"tenant_id"`
	TenantURL         string    `json:"tenantUrl" db:"tenant_url"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
	MarkedForDeletion bool      `json:"markedForDeletion,omitempty" db:"marked_for_deletion"`
}

// TableName returns the table name for the Tenant model
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new Tenant whose URL is derived from the adapter base URL
func NewTenant(tenantID, adapterBaseURL string, now time.Time) *Tenant {
	return &Tenant{
		TenantID:  tenantID,
		TenantURL: TenantURL(adapterBaseURL, tenantID),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TenantURL builds the lookup URL the adapter publishes for a tenant
func TenantURL(adapterBaseURL, tenantID string) string {
	return strings.TrimRight(adapterBaseURL, "/") + "/core/v1/tenant/" + tenantID
}

// TenantResponse wraps a tenant for the lookup endpoint
type TenantResponse struct {
	Tenant *Tenant `json:"tenant"`
}
