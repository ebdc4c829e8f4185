// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"cinebook/internal/booking"
	"cinebook/internal/catalog"
	"cinebook/internal/inventory"
	"cinebook/internal/payments"
	"cinebook/internal/pricing"
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/database"
	"cinebook/pkg/cache"
	"cinebook/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	locker   booking.ShowingLocker
	notifier booking.Notifier
	log      *logger.Logger

	// Kept after wiring so main can hand it to the reaper.
	bookingService booking.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, locker booking.ShowingLocker, notifier booking.Notifier, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		locker:   locker,
		notifier: notifier,
		log:      log,
	}
}

// BookingService exposes the wired booking service. Valid after SetupRoutes.
func (r *Router) BookingService() booking.Service {
	return r.bookingService
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		catalogRepo := catalog.NewRepository(r.db.PostgreSQL)
		cacheService := cache.NewService(r.db.Redis)

		// Browse surface
		catalogService := catalog.NewService(catalogRepo)
		catalog.SetupCatalogRoutes(api, catalog.NewController(catalogService))

		// Seat availability grid
		inventoryRepo := inventory.NewRepository(r.db.PostgreSQL)
		inventoryService := inventory.NewService(inventoryRepo, catalogRepo, cacheService, r.config.Redis.GridCacheTTL)
		inventory.SetupInventoryRoutes(api, inventory.NewController(inventoryService))

		// Dynamic pricing
		pricingRepo := pricing.NewRepository(r.db.PostgreSQL)
		pricingService := pricing.NewService(pricingRepo, catalogRepo, pricing.NewEngine(r.config.Pricing))
		pricing.SetupPricingRoutes(api, pricing.NewController(pricingService))

		// Reservation lifecycle
		bookingRepo := booking.NewRepository(r.db.PostgreSQL)
		tokens := booking.NewTokenManager(r.config.GuestToken)
		gateway := payments.NewMockGateway(r.log)
		r.bookingService = booking.NewService(
			bookingRepo,
			catalogRepo,
			pricingService,
			r.locker,
			tokens,
			gateway,
			r.notifier,
			r.log,
			r.config.Booking,
		)
		booking.SetupBookingRoutes(api, booking.NewController(r.bookingService))

		// Gateway callback
		payments.SetupPaymentRoutes(api, payments.NewController(r.bookingService))
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "cinebook",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "cinebook",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
