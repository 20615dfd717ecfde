package bookings

import (
	"github.com/gin-gonic/gin"

	"github.com/ProRenterv1/Renter-sub002/internal/shared/config"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/middleware"
)

// Router handles booking-related routes
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

// SetupRoutes registers all booking routes. Everything requires auth.
func (bookingRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuthWithConfig(bookingRouter.config))
	{
		bookings.POST("", bookingRouter.controller.CreateBooking)
		bookings.GET("", bookingRouter.controller.ListBookings)
		bookings.GET("/:id", bookingRouter.controller.GetBooking)
		bookings.POST("/:id/confirm", bookingRouter.controller.ConfirmBooking)
		bookings.POST("/:id/pay", bookingRouter.controller.PayBooking)
		bookings.POST("/:id/pickup", bookingRouter.controller.ConfirmPickup)
		bookings.POST("/:id/return", bookingRouter.controller.ConfirmReturn)
		bookings.POST("/:id/complete", bookingRouter.controller.CompleteBooking)
		bookings.POST("/:id/cancel", bookingRouter.controller.CancelBooking)
	}
}
