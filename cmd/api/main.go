package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	_ "github.com/sjperalta/arrendando-api/docs" // Swagger docs
	"github.com/sjperalta/arrendando-api/internal/cache"
	"github.com/sjperalta/arrendando-api/internal/config"
	"github.com/sjperalta/arrendando-api/internal/database"
	"github.com/sjperalta/arrendando-api/internal/events"
	"github.com/sjperalta/arrendando-api/internal/handlers"
	"github.com/sjperalta/arrendando-api/internal/jobs"
	"github.com/sjperalta/arrendando-api/internal/repository"
	"github.com/sjperalta/arrendando-api/internal/services"
	"github.com/sjperalta/arrendando-api/pkg/logger"
)

// @title Arrendando API
// @version 1.0
// @description REST API for the Arrendando property rental console: tenants, properties, lease contracts, payments and income reports
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email soporte@arrendando.app

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment, cfg.LogLevel)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if !cfg.EmailConfigured() {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set")
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, database.OptionsFrom(cfg))
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if cfg.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Report cache: Redis when reachable, the report_cache table otherwise
	var store cache.Store = cache.NewDBStore(repos.ReportCache)
	rdb := cache.ConnectRedis(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		store = cache.NewRedisStore(rdb)
	}

	// Lifecycle events
	publisher := events.Connect(cfg.AMQPURL, cfg.AMQPExchange)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services and schedule recurring jobs
	svcs := services.NewServices(repos, worker, store, publisher, cfg, db)
	svcs.Job.Start()
	logger.Info("Scheduled recurring jobs")

	router := handlers.NewRouter(handlers.NewHandlers(svcs), cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if err := publisher.Close(); err != nil {
		logger.Warn("Failed to close event publisher", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}
