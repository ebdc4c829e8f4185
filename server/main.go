package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinebook/api/routes"
	"cinebook/internal/booking"
	"cinebook/internal/notifications"
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/database"
	"cinebook/internal/shared/middleware"
	"cinebook/pkg/logger"
	"cinebook/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// The per-showing lock serializes every seat-acquiring operation; its
	// release script is preloaded so the hot path never ships Lua source.
	locker := booking.NewRedisShowingLocker(db.Redis, cfg.Booking.LockTimeout, cfg.Booking.LockTTL)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := locker.PreloadScripts(ctx); err != nil {
			// Scripts load lazily on first use, so this is not fatal.
			appLogger.Error("failed to preload Redis Lua scripts", slog.Any("error", err))
		}
		cancel()
	}

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedis(), &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			PublicRequests:  cfg.RateLimit.PublicRequests,
			BookingRequests: cfg.RateLimit.BookingRequests,
			HealthRequests:  cfg.RateLimit.HealthRequests,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("booking_requests", cfg.RateLimit.BookingRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	producer, err := notifications.NewProducer(cfg.Kafka, appLogger)
	if err != nil {
		appLogger.Error("failed to initialize ticket event producer", slog.Any("error", err))
		os.Exit(1)
	}
	defer producer.Close()

	appRouter := routes.NewRouter(cfg, db, locker, producer, appLogger)
	engine := setupEngine(cfg, appLogger, rateLimiter)
	appRouter.SetupRoutes(engine)

	reaper, err := booking.NewReaper(appRouter.BookingService(), appLogger, cfg.Booking)
	if err != nil {
		appLogger.Error("failed to create expiry reaper", slog.Any("error", err))
		os.Exit(1)
	}
	if err := reaper.Start(); err != nil {
		appLogger.Error("failed to start expiry reaper", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := reaper.Stop(); err != nil {
			appLogger.Error("error stopping expiry reaper", slog.Any("error", err))
		}
	}()

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("version", cfg.APIVersion),
			slog.Duration("hold_ttl", cfg.Booking.HoldTTL),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupEngine(cfg *config.Config, appLogger *logger.Logger, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestLogger(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}
	return engine
}
