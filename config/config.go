package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Auth          AuthConfig
	TenantStore   TenantStoreConfig
	Database      DatabaseConfig
	PSP           PSPConfig
	Core          CoreConfig
	Observability ObservabilityConfig
	Environment   string
	Mode          RuntimeMode
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// AuthConfig holds bearer token verification settings.
// MockJWTSecret and FallbackTenantID are only honoured in ModeNonProduction.
type AuthConfig struct {
	UAAURL             string
	MockJWTSecret      string
	FallbackTenantID   string
	KeyCacheTTL        time.Duration
	KeyCacheSweepEvery time.Duration
	HTTPTimeout        time.Duration
}

// TenantStoreConfig selects and configures the tenant repository
type TenantStoreConfig struct {
	Driver         string // file or postgres
	DataFile       string
	MarkForDelete  bool
	AdapterBaseURL string
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// PSPConfig holds the payment service provider client configuration
type PSPConfig struct {
	Code                string
	BaseURL             string
	APIKey              string
	Timeout             time.Duration
	ShowSavedCardOption bool
}

// CoreConfig holds adapter-to-core communication settings
type CoreConfig struct {
	TokenURL       string
	ClientID       string
	ClientPassword string
	BaseURL        string // store payment card endpoint base
	Timeout        time.Duration
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or console
}

const (
	TenantStoreFile     = "file"
	TenantStorePostgres = "postgres"
)

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	_ = godotenv.Load(".env")

	environment := getEnv("ENVIRONMENT", getEnv("NODE_ENV", "production"))

	cfg := &Config{
		Environment: environment,
		Mode:        ParseRuntimeMode(environment),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			UAAURL:             strings.TrimRight(getEnv("DIGITAL_PAYMENTS_UAA_URL", "https://uaa.example.com"), "/"),
			MockJWTSecret:      getEnv("MOCK_JWT_SECRET", ""),
			FallbackTenantID:   getEnv("TENANT_ID", ""),
			KeyCacheTTL:        getEnvAsDuration("KEY_CACHE_TTL", time.Hour),
			KeyCacheSweepEvery: getEnvAsDuration("KEY_CACHE_SWEEP_INTERVAL", 2*time.Minute),
			HTTPTimeout:        getEnvAsDuration("UAA_HTTP_TIMEOUT", 5*time.Second),
		},
		TenantStore: TenantStoreConfig{
			Driver:         strings.ToLower(getEnv("TENANT_STORE", TenantStoreFile)),
			DataFile:       getEnv("TENANT_DATA_FILE", "data/tenants.json"),
			MarkForDelete:  getEnvAsBool("SHOULD_MARK_FOR_DELETE", false),
			AdapterBaseURL: strings.TrimRight(getEnv("ADAPTER_BASE_URL", getEnv("adapterbaseurl", "http://localhost:8080")), "/"),
		},
		Database: loadDatabaseConfig(),
		PSP: PSPConfig{
			Code:    getEnv("PSP_CODE", ""),
			BaseURL: strings.TrimRight(getEnv("MOCK_PSP_URL", "http://localhost:4000"), "/"),
			APIKey:  getEnv("MOCK_PSP_API_KEY", ""),
			Timeout: getEnvAsDuration("PSP_HTTP_TIMEOUT", 10*time.Second),

			ShowSavedCardOption: getEnvAsBool("SHOW_SAVED_CARD_OPTION", true),
		},
		Core: CoreConfig{
			TokenURL:       getEnv("DIGITAL_PAYMENTS_ADAPTER_TO_CORE_TOKEN_URL", ""),
			ClientID:       getEnv("ADAPTER_TO_CORE_CLIENT_ID", ""),
			ClientPassword: getEnv("ADAPTER_TO_CORE_CLIENT_PASSWORD", ""),
			BaseURL:        strings.TrimRight(getEnv("EXTERNAL_ADAPTER_UAA_URL", ""), "/"),
			Timeout:        getEnvAsDuration("CORE_HTTP_TIMEOUT", 5*time.Second),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Auth.UAAURL == "" {
		return fmt.Errorf("identity provider URL is required: set DIGITAL_PAYMENTS_UAA_URL")
	}
	if _, err := url.ParseRequestURI(c.Auth.UAAURL); err != nil {
		return fmt.Errorf("invalid DIGITAL_PAYMENTS_UAA_URL: %w", err)
	}
	if c.Auth.KeyCacheTTL <= 0 {
		return fmt.Errorf("key cache TTL must be positive")
	}
	if c.Auth.HTTPTimeout <= 0 {
		return fmt.Errorf("identity provider timeout must be positive")
	}

	switch c.TenantStore.Driver {
	case TenantStoreFile:
		if c.TenantStore.DataFile == "" {
			return fmt.Errorf("tenant data file is required for the file tenant store")
		}
	case TenantStorePostgres:
		if c.Database.ConnectionString == "" && c.Database.Host == "" {
			return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
		}
		if c.Database.ConnectionString == "" {
			if c.Database.User == "" {
				return fmt.Errorf("database user is required")
			}
			if c.Database.Database == "" {
				return fmt.Errorf("database name is required")
			}
		}
	default:
		return fmt.Errorf("unsupported TENANT_STORE %q: expected file or postgres", c.TenantStore.Driver)
	}

	if c.IsProduction() && c.PSP.Code == "" {
		return fmt.Errorf("PSP code is required in production")
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true unless the runtime was explicitly configured for non-production use
func (c *Config) IsProduction() bool {
	return c.Mode == ModeProduction
}

// IsDevelopment returns true if running in an explicit non-production environment
func (c *Config) IsDevelopment() bool {
	return c.Mode == ModeNonProduction
}

// CoreEnabled reports whether adapter-to-core forwarding is configured
func (c *CoreConfig) CoreEnabled() bool {
	return c.TokenURL != "" && c.ClientID != "" && c.ClientPassword != "" && c.BaseURL != ""
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// URL returns the connection string in URL form, as required by the migration runner
func (c *DatabaseConfig) URL() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// LoadDatabaseConfig reads only the database settings, for tools that do not run the server
func LoadDatabaseConfig() DatabaseConfig {
	_ = godotenv.Load(".env")
	return loadDatabaseConfig()
}

func loadDatabaseConfig() DatabaseConfig {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL != "" {
		return DatabaseConfig{
			ConnectionString: dbURL,
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		}
	}
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "adapter"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "psp_adapter"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("90s") and bare integers, read as seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
