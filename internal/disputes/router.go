package disputes

import (
	"github.com/gin-gonic/gin"

	"github.com/ProRenterv1/Renter-sub002/internal/shared/config"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/middleware"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/policy"
)

// Router handles dispute-related routes
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

// SetupRoutes registers the party-facing dispute routes. Everything
// requires auth; party membership is enforced in the service.
func (disputeRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	disputes := rg.Group("/disputes")
	disputes.Use(middleware.JWTAuthWithConfig(disputeRouter.config))
	{
		disputes.POST("", disputeRouter.controller.CreateDispute)
		disputes.GET("", disputeRouter.controller.ListDisputes)
		disputes.GET("/:id", disputeRouter.controller.GetDispute)
		disputes.POST("/:id/messages", disputeRouter.controller.AppendMessage)
		disputes.POST("/:id/evidence/presign", disputeRouter.controller.PresignEvidence)
		disputes.POST("/:id/evidence/complete", disputeRouter.controller.CompleteEvidence)
		disputes.POST("/:id/appeal", disputeRouter.controller.Appeal)
	}
}

// SetupOperatorRoutes registers operator-only dispute routes. Resolve is
// restricted separately because it moves money.
func (disputeRouter *Router) SetupOperatorRoutes(rg *gin.RouterGroup) {
	operator := rg.Group("/operator/disputes")
	operator.Use(middleware.JWTAuthWithConfig(disputeRouter.config))
	{
		operator.POST("/:id/request-evidence",
			middleware.RequireAction(policy.ActionDisputeRequestEvidence),
			disputeRouter.controller.RequestEvidence,
		)
		operator.POST("/:id/open-review",
			middleware.RequireAction(policy.ActionDisputeOpenReview),
			disputeRouter.controller.OpenReview,
		)
		operator.POST("/:id/resolve",
			middleware.RequireAction(policy.ActionDisputeResolve),
			disputeRouter.controller.Resolve,
		)
		operator.POST("/:id/close",
			middleware.RequireAction(policy.ActionDisputeClose),
			disputeRouter.controller.Close,
		)
	}
}

// SetupInternalRoutes registers machine-to-machine callbacks. These are
// token-gated in the handler, not JWT-gated.
func (disputeRouter *Router) SetupInternalRoutes(rg *gin.RouterGroup) {
	internal := rg.Group("/internal")
	{
		internal.POST("/av/callback", disputeRouter.controller.AVCallback)
	}
}
