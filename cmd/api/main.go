package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/ares-whatsapp-router/cmd/mainconfig"
	"github.com/wolfman30/ares-whatsapp-router/internal/api/router"
	"github.com/wolfman30/ares-whatsapp-router/internal/app/bootstrap"
	"github.com/wolfman30/ares-whatsapp-router/internal/catalog"
	"github.com/wolfman30/ares-whatsapp-router/internal/channels"
	appconfig "github.com/wolfman30/ares-whatsapp-router/internal/config"
	"github.com/wolfman30/ares-whatsapp-router/internal/conversation"
	"github.com/wolfman30/ares-whatsapp-router/internal/events"
	"github.com/wolfman30/ares-whatsapp-router/internal/flows"
	"github.com/wolfman30/ares-whatsapp-router/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/ares-whatsapp-router/internal/http/middleware"
	"github.com/wolfman30/ares-whatsapp-router/internal/interactions"
	"github.com/wolfman30/ares-whatsapp-router/internal/leads"
	observemetrics "github.com/wolfman30/ares-whatsapp-router/internal/observability/metrics"
	"github.com/wolfman30/ares-whatsapp-router/internal/recorder"
	"github.com/wolfman30/ares-whatsapp-router/internal/whatsapp"
	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting ares-whatsapp-router API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	app, err := buildApp(ctx, cfg, awsCfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server stopped")
}

type app struct {
	handler   http.Handler
	pool      *pgxpool.Pool
	sqlDB     *sql.DB
	redis     *redis.Client
	publisher events.Publisher
}

func (a *app) close(logger *logging.Logger) {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			logger.Warn("failed to close event publisher", "error", err)
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.sqlDB != nil {
		_ = a.sqlDB.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func buildApp(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (*app, error) {
	a := &app{}

	table := cfg.ChannelTable()
	if err := table.Validate(); err != nil {
		logger.Warn("whatsapp channel configuration incomplete", "error", err)
	}
	loc, err := time.LoadLocation(cfg.BusinessTimezone)
	if err != nil {
		logger.Warn("invalid business timezone, using UTC", "timezone", cfg.BusinessTimezone, "error", err)
		loc = time.UTC
	}

	metricsHandler, routerMetrics := setupMetrics()

	if a.pool, err = bootstrap.BuildPostgresPool(ctx, cfg.DatabaseURL, logger); err != nil {
		return nil, err
	}
	if cfg.InteractionLogBackend == bootstrap.LogBackendPostgres {
		if a.sqlDB, err = bootstrap.OpenSQLDB(cfg.DatabaseURL); err != nil {
			a.close(logger)
			return nil, err
		}
	}
	a.redis = bootstrap.BuildRedisClient(ctx, cfg, logger, true)

	leadRepo := bootstrap.BuildLeadRepository(a.pool, logger)
	logStore, err := bootstrap.BuildInteractionStore(cfg, a.sqlDB, awsCfg, logger)
	if err != nil {
		a.close(logger)
		return nil, err
	}

	source, err := bootstrap.BuildCatalogSource(cfg, awsCfg)
	if err != nil {
		a.close(logger)
		return nil, err
	}
	catalogStore := catalog.NewStore(source, cfg.CatalogCacheTTL, logger, routerMetrics)

	llm, err := bootstrap.BuildLLMClient(ctx, cfg, awsCfg, logger)
	if err != nil {
		a.close(logger)
		return nil, err
	}
	advisor := conversation.NewSalesAdvisor(llm, conversation.AdvisorConfig{
		BusinessName: cfg.BusinessName,
		MaxTokens:    cfg.LLMMaxTokens,
		Temperature:  cfg.LLMTemperature,
	}, logger, routerMetrics)

	if a.publisher, err = bootstrap.BuildPublisher(cfg, awsCfg, logger); err != nil {
		a.close(logger)
		return nil, err
	}

	resolver := channels.NewResolver(table, logger)
	flowRouter := flows.NewRouter(flows.Options{
		Sender:          whatsapp.NewClient(cfg.WhatsAppGraphBaseURL, logger),
		Channels:        resolver,
		Catalog:         catalogStore,
		Completer:       advisor,
		CatalogDocument: cfg.CatalogDocument,
		SystemPrompt:    advisor.SystemPrompt(),
		Timezone:        loc.String(),
		Logger:          logger,
		Metrics:         routerMetrics,
	})

	var notifier recorder.LeadNotifier
	if n := bootstrap.BuildLeadNotifier(cfg, bootstrap.BuildEmailSender(cfg, awsCfg, logger), loc, logger); n != nil {
		notifier = n
	}
	coordinator := recorder.NewCoordinator(recorder.Options{
		Probe:     recorder.NewConnectivityProbe(leadRepo, logger),
		Leads:     leadRepo,
		Logs:      logStore,
		Notifier:  notifier,
		Publisher: a.publisher,
		Logger:    logger,
		Metrics:   routerMetrics,
	})

	webhook := handlers.NewWhatsAppWebhookHandler(handlers.WhatsAppWebhookConfig{
		VerifyToken: cfg.WhatsAppVerifyToken,
		AppSecret:   cfg.WhatsAppAppSecret,
		Resolver:    resolver,
		Router:      flowRouter,
		Recorder:    coordinator,
		Dedupe:      bootstrap.BuildDeduplicator(cfg, a.redis, a.pool, logger),
		Logger:      logger,
		Metrics:     routerMetrics,
	})
	if cfg.WhatsAppAppSecret == "" {
		logger.Warn("WHATSAPP_APP_SECRET not set; webhook signatures are not verified")
	}

	a.handler = router.New(&router.Config{
		Logger:             logger,
		WhatsApp:           webhook,
		LeadsHandler:       leads.NewHandler(leadRepo, logger),
		Interactions:       interactions.NewHandler(logStore, logger),
		Catalog:            catalog.NewHandler(catalogStore),
		MetricsHandler:     metricsHandler,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminRateLimiter:   httpmiddleware.NewRateLimiter(cfg.AdminRateLimit, cfg.AdminRateBurst),
	})
	return a, nil
}

func setupMetrics() (http.Handler, *observemetrics.RouterMetrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), observemetrics.NewRouterMetrics(registry)
}
