package routes

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/dpa-psp-adapter/app"
	"github.com/upb/dpa-psp-adapter/handlers"
	"github.com/upb/dpa-psp-adapter/services"
	"github.com/upb/dpa-psp-adapter/utils"
)

const defaultRequestTimeout = 60 * time.Second

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	cfg := deps.Config
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout(cfg.Server.RequestTimeout)))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", services.TenantHeader},
		ExposedHeaders:   []string{"X-Request-ID", services.TenantHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteMethodNotAllowed(w)
	})

	var sqlDB *sql.DB
	if deps.DB != nil {
		sqlDB = deps.DB.DB
	}
	health := handlers.NewHealthHandler(sqlDB, deps.KeyCache, deps.Logger)
	docs := handlers.NewDocsHandler(cfg.TenantStore.AdapterBaseURL)
	mockTokens := handlers.NewMockTokenHandler(deps.MockTokens, cfg.Mode, deps.Logger)
	tenants := handlers.NewTenantHandler(deps.TenantService, deps.Logger)
	capabilities := handlers.NewCapabilitiesHandler(cfg.PSP.Code)
	payments := handlers.NewPaymentHandler(deps.PaymentService, deps.Logger)

	// Health check endpoints
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)

	// Public routes
	r.Get("/api-docs.json", docs.HandleOpenAPI)
	r.Post("/mock-token", mockTokens.HandleIssue)

	// PSP redirect and webhook
	r.Get("/payment", payments.HandleCallback)
	r.Post("/payment", payments.HandleWebhook)

	r.Route("/core/v1", func(r chi.Router) {
		// Tenant administration, token only
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthGate.RequireAuth)
			r.Put("/tenants/{tenantId}", tenants.HandleOnboard)
			r.Delete("/tenants/{tenantId}", tenants.HandleOffboard)
			r.Get("/tenant/{tenantId}", tenants.HandleGet)
			r.Post("/cards/requestregistrationurl", payments.HandleRequestRegistrationURL)
		})

		// Tenant-scoped routes
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthGate.RequireTenant)
			r.Get("/capabilities", capabilities.HandleGet)
			r.Post("/charges", payments.HandleCharges)
		})
	})

	return r
}

func requestTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultRequestTimeout
	}
	return d
}
