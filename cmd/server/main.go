package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/engagement-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewStdoutHandler(os.Stdout),
		pgLogHandler,
	)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetain, cleanupDone)

	// Event publisher
	var publisher events.Publisher = events.Noop{}
	if cfg.RabbitMQURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsExchange, cfg.EventsTimeout)
		if err != nil {
			slog.Error("rabbitmq unavailable, events disabled", "error", err)
		} else {
			publisher = amqpPublisher
			slog.Info("event publisher connected", "exchange", cfg.EventsExchange)
		}
	}

	// Shared rate-limit storage
	probes := map[string]handlers.Probe{}
	var limiterStorage fiber.Storage
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			slog.Error("redis unavailable, using in-memory rate limits", "error", err)
		} else {
			limiterStorage = cache.NewRedisStorage(redisClient, "ratelimit:")
			probes["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}

	// Upload URLs
	var uploads storage.UploadURLIssuer
	if cfg.MinioEndpoint != "" {
		issuer, err := storage.NewMinioIssuer(storage.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			Region:    cfg.MinioRegion,
			UseSSL:    cfg.MinioUseSSL,
			TTL:       cfg.UploadURLTTL,
		})
		if err != nil {
			slog.Error("object storage unavailable, uploads disabled", "error", err)
		} else {
			uploads = issuer
		}
	}

	// Services
	filter := services.NewContentFilter()
	catalogService := services.NewCatalogService(database.DB, publisher, filter)
	engagementService := services.NewEngagementService(database.DB, publisher)
	sessionService := services.NewLiveSessionService(database.DB)
	commentService := services.NewCommentService(database.DB, publisher)
	reactionService := services.NewReactionService(database.DB, publisher)
	moderationService := services.NewModerationService(database.DB, publisher, filter)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, routes.Handlers{
		Health:     handlers.NewHealthHandler(probes),
		Video:      handlers.NewVideoHandler(catalogService, uploads),
		Engagement: handlers.NewEngagementHandler(engagementService),
		Live:       handlers.NewLiveHandler(sessionService, commentService, reactionService),
		Moderation: handlers.NewModerationHandler(moderationService),
	}, limiterStorage)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	if err := publisher.Close(); err != nil {
		slog.Error("event publisher close error", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}
