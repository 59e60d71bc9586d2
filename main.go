package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/onurcolak/sms-sender/environments"
	"github.com/onurcolak/sms-sender/handlers"
	"github.com/onurcolak/sms-sender/internal/middlewares"
	"github.com/onurcolak/sms-sender/internal/repository"
	"github.com/onurcolak/sms-sender/internal/scheduler"
	"github.com/onurcolak/sms-sender/internal/service"
	"github.com/onurcolak/sms-sender/pkg/database"
	"github.com/onurcolak/sms-sender/pkg/httpadapter"
	"github.com/onurcolak/sms-sender/pkg/logger"
	"github.com/onurcolak/sms-sender/pkg/redis"
	"github.com/onurcolak/sms-sender/pkg/validator"
	"github.com/onurcolak/sms-sender/pkg/webhook"
	"github.com/onurcolak/sms-sender/routes"

	_ "github.com/onurcolak/sms-sender/docs" // swagger docs
)

// @title SMS Sender API
// @version 1.0
// @description Sends SMS through pluggable gateway providers, with a delayed queue and a send log
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @schemes http https
func main() {
	// Load config
	cfg := environments.Load()

	logger.Init(cfg.Log.Env, cfg.Log.Level)

	// Hard-fail if required secrets are missing
	if cfg.Auth.SMSAPIKey == "" {
		logger.Fatalf("SMS_API_KEY is required but not set")
	}
	if cfg.Auth.SchedulerAPIKey == "" {
		logger.Fatalf("SCHEDULER_API_KEY is required but not set")
	}

	logger.Infof("Starting SMS Sender...")

	// Init DB
	db, err := database.NewMySQLDB(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Init redis; the service takes a nil interface when caching is off
	redisClient, err := redis.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Warnf("Redis not available, result cache disabled: %v", err)
		redisClient = nil
	}

	// Gateways share one transport
	adapter := httpadapter.New(
		httpadapter.WithTimeout(cfg.HTTP.Timeout),
		httpadapter.WithRetryCount(cfg.HTTP.RetryCount),
		httpadapter.WithMaxRedirects(cfg.HTTP.MaxRedirects),
	)

	providers := buildProviders(cfg.Providers, adapter)
	if len(providers) == 0 {
		logger.Fatalf("No SMS provider configured: set provider credentials or SMS_ENABLE_DUMMY=true")
	}

	dispatcher, delayedSender := buildSender(cfg, providers)

	active, err := dispatcher.Provider()
	if err != nil {
		logger.Fatalf("Failed to select provider: %v", err)
	}
	logger.Infof("Registered %d providers, active: %s", len(providers), active.Name())

	// Initialize repository
	smsRepo := repository.NewSMSLogRepository(db)

	// Initialize service
	var smsService *service.SMSService
	switch {
	case delayedSender != nil && redisClient != nil:
		smsService = service.NewSMSService(dispatcher, delayedSender, smsRepo, redisClient, cfg.Sender)
	case delayedSender != nil:
		smsService = service.NewSMSService(dispatcher, delayedSender, smsRepo, nil, cfg.Sender)
	case redisClient != nil:
		smsService = service.NewSMSService(dispatcher, nil, smsRepo, redisClient, cfg.Sender)
	default:
		smsService = service.NewSMSService(dispatcher, nil, smsRepo, nil, cfg.Sender)
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize scheduler with the alert webhook client
	alertClient := webhook.NewWebhookClient(cfg.HTTP.Timeout)
	sched := scheduler.NewScheduler(smsService, alertClient, cfg.Sender.FlushInterval)
	sched.SetAlerting(cfg.Alert.WebhookURL, cfg.Alert.IterationCount)
	if cfg.Alert.WebhookURL != "" {
		logger.Infof("Alert webhook configured: %s", cfg.Alert.WebhookURL)
	}

	// Initialize handlers
	var healthHandler *handlers.HealthHandler
	if redisClient != nil {
		healthHandler = handlers.NewHealthHandler(db, redisClient, smsService.ActiveProvider)
	} else {
		healthHandler = handlers.NewHealthHandler(db, nil, smsService.ActiveProvider)
	}
	smsHandler := handlers.NewSMSHandler(smsService)
	providerHandler := handlers.NewProviderHandler(smsService)
	schedulerHandler := handlers.NewSchedulerHandler(sched, smsService, ctx, cfg)

	// Auto-start scheduler when sends are delayed
	if cfg.Sender.Delayed && os.Getenv("AUTO_START_SCHEDULER") != "false" {
		logger.Infof("Auto-starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			logger.Warnf("Failed to auto-start scheduler: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			middlewares.APIKeyHeader,
		},
	}))

	// Setup routes
	routes.RegisterRoutes(e, healthHandler, smsHandler, providerHandler, schedulerHandler, cfg)

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		logger.Infof("Swagger docs available at http://localhost%s/swagger/index.html", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	// Cancel context to signal all goroutines to stop
	cancel()

	// Stop scheduler first (with timeout)
	if sched.IsRunning() {
		logger.Infof("Stopping scheduler...")
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()

		done := make(chan error, 1)
		go func() {
			done <- sched.Stop()
		}()

		select {
		case err := <-done:
			if err != nil {
				logger.Errorf("Error stopping scheduler: %v", err)
			} else {
				logger.Infof("Scheduler stopped successfully")
			}
		case <-stopCtx.Done():
			logger.Warnf("Scheduler stop timeout, forcing shutdown")
		}
	}

	// Shutdown HTTP server (with timeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	// Messages still queued are lost on exit; send them now
	if delayedSender != nil && delayedSender.Pending() > 0 {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 30*time.Second)
		report, err := smsService.Flush(flushCtx)
		flushCancel()
		if err != nil {
			logger.Errorf("Final flush failed: %v", err)
		} else {
			logger.Infof("Final flush: %d sent, %d failed", report.Sent, report.Failed)
		}
	}

	// Close database connection
	logger.Infof("Closing database connection...")
	if err := db.Close(); err != nil {
		logger.Errorf("Error closing database: %v", err)
	}

	// Close Redis connection
	if redisClient != nil {
		logger.Infof("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			logger.Errorf("Error closing Redis: %v", err)
		}
	}

	logger.Infof("Graceful shutdown completed")
}
