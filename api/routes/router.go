package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ProRenterv1/Renter-sub002/internal/auth"
	"github.com/ProRenterv1/Renter-sub002/internal/bookings"
	"github.com/ProRenterv1/Renter-sub002/internal/disputes"
	"github.com/ProRenterv1/Renter-sub002/internal/listings"
	"github.com/ProRenterv1/Renter-sub002/internal/notifications"
	"github.com/ProRenterv1/Renter-sub002/internal/payments"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/config"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/database"
	"github.com/ProRenterv1/Renter-sub002/internal/uploads"
	"github.com/ProRenterv1/Renter-sub002/internal/users"
	"github.com/ProRenterv1/Renter-sub002/pkg/cache"
)

// Router holds all route dependencies
type Router struct {
	config        *config.Config
	db            *database.DB
	notifications notifications.NotificationService

	// Shared across route groups so the dispute service can reuse the
	// booking and payment layers.
	cacheService   cache.Service
	userRepo       users.Repository
	listingService listings.Service
	bookingRepo    bookings.Repository
	paymentService payments.Service
	disputeService disputes.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, notificationService notifications.NotificationService) *Router {
	return &Router{
		config:        cfg,
		db:            db,
		notifications: notificationService,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.cacheService = cache.NewService(r.db.GetRedis())

	r.setupHealthRoutes(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupListingRoutes(api)
		r.setupBookingRoutes(api)
		r.setupDisputeRoutes(api)
		r.setupPaymentRoutes(api)
	}
}

// DisputeService exposes the wired dispute service so the deadline job
// can share it.
func (r *Router) DisputeService() disputes.Service {
	return r.disputeService
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "prorenter-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "prorenter-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController, r.config)

	authRouter.SetupRoutes(rg)

	r.userRepo = users.NewRepository(r.db.GetPostgreSQL())
}

func (r *Router) setupListingRoutes(rg *gin.RouterGroup) {
	listingRepo := listings.NewRepository(r.db.GetPostgreSQL())
	listingService := listings.NewService(listingRepo, r.cacheService)
	listingController := listings.NewController(listingService)
	listingRouter := listings.NewRouter(listingController, r.config)

	r.listingService = listingService

	listingRouter.SetupRoutes(rg)
	listingRouter.SetupOperatorRoutes(rg)
}

func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	listingRepo := listings.NewRepository(r.db.GetPostgreSQL())
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	paymentRepo := payments.NewRepository(r.db.GetPostgreSQL())
	paymentService := payments.NewService(paymentRepo)

	bookingService := bookings.NewService(
		bookingRepo,
		listingRepo,
		r.userRepo,
		paymentService,
		r.notifications,
		r.cacheService,
	)
	bookingController := bookings.NewController(bookingService)
	bookingRouter := bookings.NewRouter(bookingController, r.config)

	r.bookingRepo = bookingRepo
	r.paymentService = paymentService

	bookingRouter.SetupRoutes(rg)
}

func (r *Router) setupDisputeRoutes(rg *gin.RouterGroup) {
	disputeRepo := disputes.NewRepository(r.db.GetPostgreSQL())
	signer := uploads.NewSigner(r.config.Storage)

	disputeService := disputes.NewService(
		disputeRepo,
		r.bookingRepo,
		r.userRepo,
		r.paymentService,
		signer,
		r.notifications,
		r.cacheService,
		r.config,
	)
	disputeController := disputes.NewController(disputeService, r.config.Storage.SigningKey)
	disputeRouter := disputes.NewRouter(disputeController, r.config)

	r.disputeService = disputeService

	disputeRouter.SetupRoutes(rg)
	disputeRouter.SetupOperatorRoutes(rg)
	disputeRouter.SetupInternalRoutes(rg)
}

func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	paymentController := payments.NewController(r.paymentService, bookingPartyAdapter{repo: r.bookingRepo})
	paymentRouter := payments.NewRouter(paymentController, r.config)

	paymentRouter.SetupRoutes(rg)
}

// bookingPartyAdapter narrows the booking repository to the membership
// check the ledger endpoint needs.
type bookingPartyAdapter struct {
	repo bookings.Repository
}

func (a bookingPartyAdapter) IsParty(ctx context.Context, bookingID, userID uuid.UUID) (bool, error) {
	booking, err := a.repo.GetByID(ctx, bookingID)
	if err != nil {
		return false, err
	}
	return booking.IsParty(userID), nil
}
