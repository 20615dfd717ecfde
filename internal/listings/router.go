package listings

import (
	"github.com/gin-gonic/gin"

	"github.com/ProRenterv1/Renter-sub002/internal/shared/config"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/middleware"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/policy"
)

// Router handles listing-related routes
type Router struct {
	controller *Controller
	config     *config.Config
}

func NewRouter(controller *Controller, cfg *config.Config) *Router {
	return &Router{
		controller: controller,
		config:     cfg,
	}
}

// SetupRoutes registers all listing routes
func (listingRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	listings := rg.Group("/listings")
	{
		// Public browsing
		listings.GET("", listingRouter.controller.ListListings)
		listings.GET("/:id", listingRouter.controller.GetListing)

		// Owner-managed routes
		protected := listings.Group("")
		protected.Use(middleware.JWTAuthWithConfig(listingRouter.config))
		{
			protected.POST("", listingRouter.controller.CreateListing)
			protected.PUT("/:id", listingRouter.controller.UpdateListing)
			protected.DELETE("/:id", listingRouter.controller.DelistListing)
			protected.POST("/:id/photos", listingRouter.controller.AddPhoto)
		}
	}
}

// SetupOperatorRoutes registers operator-only listing routes
func (listingRouter *Router) SetupOperatorRoutes(rg *gin.RouterGroup) {
	operator := rg.Group("/operator/listings")
	operator.Use(middleware.JWTAuthWithConfig(listingRouter.config))
	{
		operator.POST("/:id/suspend",
			middleware.RequireAction(policy.ActionListingSuspend),
			listingRouter.controller.SuspendListing,
		)
	}
}
