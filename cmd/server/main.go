package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-reports/internal/adapter/cache"
	"github.com/seu-repo/sigec-reports/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/sigec-reports/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/sigec-reports/internal/adapter/queue"
	"github.com/seu-repo/sigec-reports/internal/adapter/source"
	"github.com/seu-repo/sigec-reports/internal/adapter/vault"
	"github.com/seu-repo/sigec-reports/internal/observability/telemetry"
	"github.com/seu-repo/sigec-reports/internal/service/auth"
	"github.com/seu-repo/sigec-reports/internal/service/health"
	"github.com/seu-repo/sigec-reports/internal/service/report"
	"github.com/seu-repo/sigec-reports/pkg/config"
)

const serviceName = "sigec-reports"

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// 2. Initialize Logger
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	logger.Info("Starting SIGEC-VE owner reports",
		zap.String("service", serviceName),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("source", cfg.Reports.Source),
	)

	// 3. Resolve secrets from Vault
	if err := vault.ResolveSecrets(context.Background(), cfg, logger); err != nil {
		logger.Fatal("Failed to resolve secrets", zap.Error(err))
	}
	if cfg.JWT.Secret == "" {
		logger.Fatal("jwt.secret is required")
	}

	// 4. Initialize OpenTelemetry
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(serviceName, cfg.App.Version, cfg.OpenTelemetry.Jaeger.Endpoint, cfg.OpenTelemetry.Jaeger.SamplerParam)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 5. Session and station sources
	sources, err := source.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize report source", zap.Error(err))
	}
	defer sources.Close()

	// 6. Cache (Redis, local fallback)
	reportCache := cache.NewFromConfig(cfg.Redis, logger)
	defer reportCache.Close()

	// 7. Message Queue
	messageQueue, err := queue.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to message queue", zap.Error(err))
	}
	if messageQueue != nil {
		defer messageQueue.Close()
	}

	// 8. Services
	loc, _ := cfg.Reports.Location()
	reportService := report.NewService(sources.Sessions, sources.Stations, reportCache, messageQueue, report.ServiceConfig{
		Paginator: report.PaginatorConfig{
			PageSize:    cfg.Reports.PageSize,
			MaxPages:    cfg.Reports.MaxPages,
			NewestFirst: cfg.Reports.NewestFirst,
		},
		CacheTTL: cfg.Reports.CacheTTL,
		Location: loc,
	}, logger)
	authService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenDuration, reportCache, logger)

	healthConfig := &health.Config{Version: cfg.App.Version, Cache: reportCache, Source: sources.Ping}
	if sources.DB != nil {
		if sqlDB, err := sources.DB.DB(); err == nil {
			healthConfig.DB = sqlDB
		}
	}
	healthService := health.NewService(healthConfig, logger)

	// 9. Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.NewCORS(cfg.CORS))
	if cfg.CircuitBreaker.Enabled {
		app.Use(middleware.CircuitBreaker(cfg.CircuitBreaker, logger))
	}

	health.NewFiberHandler(healthService).RegisterRoutes(app)

	if cfg.Prometheus.Enabled {
		metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			metricsHandler(c.Context())
			return nil
		})
	}

	v1 := app.Group("/api/v1")
	protected := v1.Group("", middleware.AuthRequired(authService, logger))
	handlers.NewReportHandler(reportService, logger).Register(protected)

	// 10. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 11. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	if cfg.Level == "debug" || cfg.Format == "console" {
		return zap.NewDevelopment()
	}

	zcfg := zap.NewProductionConfig()
	if level, err := zap.ParseAtomicLevel(cfg.Level); err == nil {
		zcfg.Level = level
	}
	return zcfg.Build()
}
