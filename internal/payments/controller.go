package payments

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ProRenterv1/Renter-sub002/internal/shared/middleware"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/policy"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/utils/response"
)

// BookingPartyChecker is the slice of the booking store the ledger
// endpoint needs for access control.
type BookingPartyChecker interface {
	IsParty(ctx context.Context, bookingID, userID uuid.UUID) (bool, error)
}

type Controller struct {
	service Service
	parties BookingPartyChecker
}

func NewController(service Service, parties BookingPartyChecker) *Controller {
	return &Controller{
		service: service,
		parties: parties,
	}
}

// GetLedger handles GET /bookings/:id/ledger. Parties to the booking and
// operator roles may read it.
func (ctrl *Controller) GetLedger(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	raw, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Invalid user identity", nil)
		return
	}

	if !policy.Allows(middleware.UserRole(c), policy.ActionDisputeOpenReview) {
		isParty, err := ctrl.parties.IsParty(c.Request.Context(), bookingID, userID)
		if err != nil {
			ctrl.handleServiceError(c, err)
			return
		}
		if !isParty {
			response.Error(c, http.StatusForbidden, "You are not a party to this booking", nil)
			return
		}
	}

	ledger, err := ctrl.service.GetLedger(c.Request.Context(), bookingID)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Ledger retrieved successfully", ledger)
}

func (ctrl *Controller) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPaymentNotFound):
		response.Error(c, http.StatusNotFound, "No payment records for this booking", nil)
	default:
		response.Error(c, http.StatusInternalServerError, "Something went wrong", nil)
	}
}
