package payments

import (
	"github.com/gin-gonic/gin"

	"github.com/ProRenterv1/Renter-sub002/internal/shared/config"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/middleware"
)

// Router handles payment-related routes
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

// SetupRoutes registers the ledger route underneath the booking resource.
func (paymentRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	ledger := rg.Group("/bookings")
	ledger.Use(middleware.JWTAuthWithConfig(paymentRouter.config))
	{
		ledger.GET("/:id/ledger", paymentRouter.controller.GetLedger)
	}
}
