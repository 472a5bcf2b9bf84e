package app

import (
	"context"
	"fmt"

	"github.com/upb/dpa-psp-adapter/config"
	"github.com/upb/dpa-psp-adapter/middleware"
	"github.com/upb/dpa-psp-adapter/repositories"
	"github.com/upb/dpa-psp-adapter/repositories/file"
	"github.com/upb/dpa-psp-adapter/repositories/postgres"
	"github.com/upb/dpa-psp-adapter/services"
	"github.com/upb/dpa-psp-adapter/services/core"
	"github.com/upb/dpa-psp-adapter/services/payment"
	"github.com/upb/dpa-psp-adapter/services/psp"
	"github.com/upb/dpa-psp-adapter/uaa"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB // nil when tenants are kept in a file
	Logger *zap.Logger

	// Repository Factory, only set for the postgres tenant store
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Tenants repositories.TenantRepository

	// Auth
	KeyCache   *uaa.KeyCache
	Verifier   *uaa.Verifier
	Resolver   *services.TenantResolver
	AuthGate   *middleware.AuthGate
	MockTokens *uaa.MockTokenIssuer

	// Services
	TenantService  *services.TenantService
	PaymentService *payment.Service
	CoreTokens     *uaa.CoreTokenSource // nil when core forwarding is not configured
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initTenantStore(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize tenant store: %w", err)
	}

	deps.initAuth(cfg)
	deps.initServices(cfg)

	logger.Info("all dependencies initialized successfully",
		zap.String("mode", cfg.Mode.String()),
		zap.String("tenant_store", cfg.TenantStore.Driver))
	return deps, nil
}

// initTenantStore selects the tenant repository. The postgres store is pinged before use.
func (d *Dependencies) initTenantStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.TenantStore.Driver {
	case config.TenantStoreFile:
		d.Tenants = file.NewTenantRepository(cfg.TenantStore.DataFile, cfg.TenantStore.AdapterBaseURL, d.Logger)
		d.Logger.Info("using file tenant store", zap.String("path", cfg.TenantStore.DataFile))
		return nil

	case config.TenantStorePostgres:
		factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
		if err != nil {
			return fmt.Errorf("failed to create repository factory: %w", err)
		}

		if err := factory.GetDB().PingContext(ctx); err != nil {
			_ = factory.Close()
			return fmt.Errorf("database ping failed: %w", err)
		}

		d.RepoFactory = factory
		d.DB = factory.GetDB()
		d.Tenants = factory.NewRepositories().Tenants
		d.Logger.Info("using postgres tenant store",
			zap.String("connection", cfg.Database.LogString()))
		return nil

	default:
		return fmt.Errorf("unsupported tenant store %q", cfg.TenantStore.Driver)
	}
}

// initAuth wires the key cache, verifier and tenant resolver behind the auth gate
func (d *Dependencies) initAuth(cfg *config.Config) {
	d.KeyCache = uaa.NewKeyCache(cfg.Auth.KeyCacheTTL)
	provider := uaa.NewHTTPKeyProvider(cfg.Auth.UAAURL, cfg.Auth.HTTPTimeout, d.Logger)

	d.Verifier = uaa.NewVerifier(uaa.VerifierConfig{
		Mode:       cfg.Mode,
		MockSecret: cfg.Auth.MockJWTSecret,
		KeyTTL:     cfg.Auth.KeyCacheTTL,
	}, d.KeyCache, provider, d.Logger)

	d.Resolver = services.NewTenantResolver(services.TenantResolverConfig{
		Mode:             cfg.Mode,
		FallbackTenantID: cfg.Auth.FallbackTenantID,
	}, d.Tenants, d.Logger)

	d.AuthGate = middleware.NewAuthGate(d.Verifier, d.Resolver, d.Logger)
	d.MockTokens = uaa.NewMockTokenIssuer(cfg.Auth.MockJWTSecret, cfg.PSP.Code)

	if cfg.Mode.AllowsMockTokens() {
		d.Logger.Warn("mock tokens and fallback tenant are enabled",
			zap.String("environment", cfg.Environment))
	}
}

// initServices wires the tenant and payment services with their outbound clients
func (d *Dependencies) initServices(cfg *config.Config) {
	d.TenantService = services.NewTenantService(d.Tenants, cfg.TenantStore.MarkForDelete, d.Logger)

	pspClient := psp.NewClient(psp.Config{
		BaseURL: cfg.PSP.BaseURL,
		APIKey:  cfg.PSP.APIKey,
		Timeout: cfg.PSP.Timeout,
	}, d.Logger)

	var cards payment.CardStore
	if cfg.Core.CoreEnabled() {
		d.CoreTokens = uaa.NewCoreTokenSource(uaa.CoreTokenConfig{
			TokenURL:       cfg.Core.TokenURL,
			ClientID:       cfg.Core.ClientID,
			ClientPassword: cfg.Core.ClientPassword,
			Timeout:        cfg.Core.Timeout,
		}, nil, d.Logger)
		cards = core.NewClient(core.Config{
			BaseURL: cfg.Core.BaseURL,
			Timeout: cfg.Core.Timeout,
		}, d.CoreTokens, d.Logger)
	} else {
		d.Logger.Warn("core forwarding not configured, payment results will not be stored")
	}

	d.PaymentService = payment.NewService(payment.Config{
		AdapterBaseURL:      cfg.TenantStore.AdapterBaseURL,
		ShowSavedCardOption: cfg.PSP.ShowSavedCardOption,
	}, pspClient, cards, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
		d.RepoFactory = nil
		d.DB = nil
	}

	if d.KeyCache != nil {
		d.KeyCache.Clear()
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
