package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/ares-whatsapp-router/internal/catalog"
	"github.com/wolfman30/ares-whatsapp-router/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/ares-whatsapp-router/internal/http/middleware"
	"github.com/wolfman30/ares-whatsapp-router/internal/interactions"
	"github.com/wolfman30/ares-whatsapp-router/internal/leads"
	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	WhatsApp        *handlers.WhatsAppWebhookHandler
	LeadsHandler    *leads.Handler
	Interactions    *interactions.Handler
	Catalog         *catalog.Handler
	MetricsHandler  http.Handler
	AdminAuthSecret string

	// Admin surface hardening (optional)
	CORSAllowedOrigins []string
	AdminRateLimiter   *httpmiddleware.RateLimiter
}

// New creates the chi router. The webhook is served on both /webhook and
// /webhooks/whatsapp so either URL can be registered with Meta.
func New(cfg *Config) http.Handler {
	if cfg.WhatsApp == nil {
		panic("router: whatsapp webhook handler is required")
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)

	r.Group(func(public chi.Router) {
		public.Get("/health", handlers.Health)
		for _, path := range []string{"/webhook", "/webhooks/whatsapp"} {
			public.Get(path, cfg.WhatsApp.Verify)
			public.Post(path, cfg.WhatsApp.Handle)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(middleware.Compress(5))
		if len(cfg.CORSAllowedOrigins) > 0 {
			admin.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
		}
		if cfg.AdminRateLimiter != nil {
			admin.Use(httpmiddleware.RateLimit(cfg.AdminRateLimiter))
		}
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))

		if cfg.LeadsHandler != nil {
			admin.Get("/leads", cfg.LeadsHandler.ListLeads)
		}
		if cfg.Interactions != nil {
			admin.Get("/interactions", cfg.Interactions.List)
		}
		if cfg.Catalog != nil {
			admin.Post("/catalog/invalidate", cfg.Catalog.Invalidate)
		}
	})

	return r
}
