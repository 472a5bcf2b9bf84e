package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default configuration",
			envVars: map[string]string{
				"ENVIRONMENT": "development",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "development", cfg.Environment)
				assert.Equal(t, ModeNonProduction, cfg.Mode)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "https://uaa.example.com", cfg.Auth.UAAURL)
				assert.Equal(t, time.Hour, cfg.Auth.KeyCacheTTL)
				assert.Equal(t, 2*time.Minute, cfg.Auth.KeyCacheSweepEvery)
				assert.Equal(t, 5*time.Second, cfg.Auth.HTTPTimeout)
				assert.Equal(t, TenantStoreFile, cfg.TenantStore.Driver)
				assert.Equal(t, "data/tenants.json", cfg.TenantStore.DataFile)
				assert.False(t, cfg.TenantStore.MarkForDelete)
			},
		},
		{
			name:    "missing environment defaults to production",
			envVars: map[string]string{"PSP_CODE": "DPXX"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "production", cfg.Environment)
				assert.True(t, cfg.IsProduction())
				assert.False(t, cfg.IsDevelopment())
			},
		},
		{
			name: "NODE_ENV is honoured when ENVIRONMENT is unset",
			envVars: map[string]string{
				"NODE_ENV": "development",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.IsDevelopment())
			},
		},
		{
			name: "auth settings",
			envVars: map[string]string{
				"ENVIRONMENT":              "test",
				"DIGITAL_PAYMENTS_UAA_URL": "https://uaa.internal/",
				"MOCK_JWT_SECRET":          "s3cret",
				"TENANT_ID":                "T-DEV",
				"KEY_CACHE_TTL":            "600",
				"UAA_HTTP_TIMEOUT":         "2s",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://uaa.internal", cfg.Auth.UAAURL)
				assert.Equal(t, "s3cret", cfg.Auth.MockJWTSecret)
				assert.Equal(t, "T-DEV", cfg.Auth.FallbackTenantID)
				assert.Equal(t, 10*time.Minute, cfg.Auth.KeyCacheTTL)
				assert.Equal(t, 2*time.Second, cfg.Auth.HTTPTimeout)
			},
		},
		{
			name: "tenant store and adapter base url",
			envVars: map[string]string{
				"ENVIRONMENT":            "development",
				"TENANT_DATA_FILE":       "/var/lib/adapter/tenants.json",
				"SHOULD_MARK_FOR_DELETE": "true",
				"adapterbaseurl":         "https://adapter.example.com/",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/var/lib/adapter/tenants.json", cfg.TenantStore.DataFile)
				assert.True(t, cfg.TenantStore.MarkForDelete)
				assert.Equal(t, "https://adapter.example.com", cfg.TenantStore.AdapterBaseURL)
			},
		},
		{
			name: "postgres tenant store with DATABASE_URL",
			envVars: map[string]string{
				"ENVIRONMENT":  "development",
				"TENANT_STORE": "postgres",
				"DATABASE_URL": "postgres://adapter:pw@db.example.com:5433/tenants?sslmode=require",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, TenantStorePostgres, cfg.TenantStore.Driver)
				assert.Equal(t, "host=db.example.com port=5433 database=tenants", cfg.Database.LogString())
				assert.Equal(t, cfg.Database.ConnectionString, cfg.Database.DSN())
			},
		},
		{
			name: "core forwarding configuration",
			envVars: map[string]string{
				"ENVIRONMENT": "development",
				"DIGITAL_PAYMENTS_ADAPTER_TO_CORE_TOKEN_URL": "https://core/oauth/token",
				"ADAPTER_TO_CORE_CLIENT_ID":                  "client",
				"ADAPTER_TO_CORE_CLIENT_PASSWORD":            "password",
				"EXTERNAL_ADAPTER_UAA_URL":                   "https://core/api/",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Core.CoreEnabled())
				assert.Equal(t, "https://core/api", cfg.Core.BaseURL)
			},
		},
		{
			name: "PORT env var takes precedence over SERVER_PORT",
			envVars: map[string]string{
				"ENVIRONMENT": "development",
				"PORT":        "9443",
				"SERVER_PORT": "9000",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9443, cfg.Server.Port)
				assert.Equal(t, "0.0.0.0:9443", cfg.Server.Address())
			},
		},
		{
			name: "production without PSP code",
			envVars: map[string]string{
				"ENVIRONMENT": "production",
			},
			wantErr: true,
		},
		{
			name: "unknown tenant store driver",
			envVars: map[string]string{
				"ENVIRONMENT":  "development",
				"TENANT_STORE": "redis",
			},
			wantErr: true,
		},
		{
			name: "invalid identity provider url",
			envVars: map[string]string{
				"ENVIRONMENT":              "development",
				"DIGITAL_PAYMENTS_UAA_URL": "not a url",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg, err := New(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestParseRuntimeMode(t *testing.T) {
	tests := []struct {
		env  string
		want RuntimeMode
	}{
		{"development", ModeNonProduction},
		{"DEV", ModeNonProduction},
		{"local", ModeNonProduction},
		{"test", ModeNonProduction},
		{"production", ModeProduction},
		{"stage", ModeProduction},
		{"", ModeProduction},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			mode := ParseRuntimeMode(tt.env)
			assert.Equal(t, tt.want, mode)
			assert.Equal(t, tt.want == ModeNonProduction, mode.AllowsMockTokens())
			assert.Equal(t, tt.want == ModeNonProduction, mode.AllowsFallbackTenant())
		})
	}
}

func TestDatabaseConfig_URL(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "adapter",
		Password: "pw",
		Database: "psp_adapter",
		SSLMode:  "disable",
	}

	assert.Equal(t, "postgres://adapter:pw@localhost:5432/psp_adapter?sslmode=disable", cfg.URL())
	assert.Equal(t, "host=localhost port=5432 database=psp_adapter", cfg.LogString())

	cfg.ConnectionString = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", cfg.URL())
}
