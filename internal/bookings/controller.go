package bookings

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ProRenterv1/Renter-sub002/internal/listings"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/middleware"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/utils/response"
	"github.com/ProRenterv1/Renter-sub002/internal/users"
)

type Controller struct {
	service  Service
	validate *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:  service,
		validate: validator.New(),
	}
}

// CreateBooking handles POST /bookings
func (ctrl *Controller) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	actorID, ok := actorUUID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	booking, err := ctrl.service.CreateBooking(c.Request.Context(), actorID, req)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Booking requested successfully", booking)
}

// GetBooking handles GET /bookings/:id
func (ctrl *Controller) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	actorID, ok := actorUUID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	isOperator := middleware.UserRole(c) != users.RoleUser

	booking, err := ctrl.service.GetBooking(c.Request.Context(), id, actorID, isOperator)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Booking retrieved successfully", booking)
}

// ListBookings handles GET /bookings
func (ctrl *Controller) ListBookings(c *gin.Context) {
	var query BookingListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	actorID, ok := actorUUID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	result, err := ctrl.service.ListBookings(c.Request.Context(), actorID, query)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Bookings retrieved successfully", result)
}

// ConfirmBooking handles POST /bookings/:id/confirm
func (ctrl *Controller) ConfirmBooking(c *gin.Context) {
	ctrl.runTransition(c, ctrl.service.ConfirmBooking, "Booking confirmed")
}

// PayBooking handles POST /bookings/:id/pay
func (ctrl *Controller) PayBooking(c *gin.Context) {
	ctrl.runTransition(c, ctrl.service.PayBooking, "Booking paid")
}

// CompleteBooking handles POST /bookings/:id/complete
func (ctrl *Controller) CompleteBooking(c *gin.Context) {
	ctrl.runTransition(c, ctrl.service.CompleteBooking, "Booking completed")
}

// ConfirmPickup handles POST /bookings/:id/pickup
func (ctrl *Controller) ConfirmPickup(c *gin.Context) {
	id, actorID, ok := ctrl.bookingActor(c)
	if !ok {
		return
	}

	var req ConfirmPickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	booking, err := ctrl.service.ConfirmPickup(c.Request.Context(), id, actorID, req.PhotoKeys)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Pickup confirmed", booking)
}

// ConfirmReturn handles POST /bookings/:id/return
func (ctrl *Controller) ConfirmReturn(c *gin.Context) {
	id, actorID, ok := ctrl.bookingActor(c)
	if !ok {
		return
	}

	var req ConfirmReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	booking, err := ctrl.service.ConfirmReturn(c.Request.Context(), id, actorID, req.PhotoKeys)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Return confirmed", booking)
}

// CancelBooking handles POST /bookings/:id/cancel
func (ctrl *Controller) CancelBooking(c *gin.Context) {
	id, actorID, ok := ctrl.bookingActor(c)
	if !ok {
		return
	}

	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	booking, err := ctrl.service.CancelBooking(c.Request.Context(), id, actorID, req.Reason)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Booking canceled", booking)
}

func (ctrl *Controller) runTransition(c *gin.Context, op func(ctx context.Context, id, actorID uuid.UUID) (*BookingResponse, error), message string) {
	id, actorID, ok := ctrl.bookingActor(c)
	if !ok {
		return
	}

	booking, err := op(c.Request.Context(), id, actorID)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, message, booking)
}

func (ctrl *Controller) bookingActor(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid booking ID", nil)
		return uuid.Nil, uuid.Nil, false
	}

	actorID, ok := actorUUID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return uuid.Nil, uuid.Nil, false
	}

	return id, actorID, true
}

func (ctrl *Controller) handleServiceError(c *gin.Context, err error) {
	var transitionErr *InvalidTransitionError

	switch {
	case errors.Is(err, ErrBookingNotFound):
		response.Error(c, http.StatusNotFound, "Booking not found", nil)
	case errors.Is(err, listings.ErrListingNotFound):
		response.Error(c, http.StatusNotFound, "Listing not found", nil)
	case errors.Is(err, ErrNotBookingParty), errors.Is(err, ErrWrongActor):
		response.Error(c, http.StatusForbidden, "You are not allowed to act on this booking", nil)
	case errors.Is(err, ErrOwnBooking):
		response.Error(c, http.StatusBadRequest, "Owners cannot book their own listings", nil)
	case errors.Is(err, ErrInvalidDateRange), errors.Is(err, ErrListingNotActive):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ErrDatesUnavailable):
		response.Conflict(c, "Listing is not available for the requested dates")
	case errors.Is(err, ErrStaleStatus):
		response.Conflict(c, "Booking changed while processing, retry the request")
	case errors.As(err, &transitionErr):
		response.Error(c, http.StatusBadRequest, transitionErr.Error(), nil)
	default:
		response.Error(c, http.StatusInternalServerError, "Something went wrong", nil)
	}
}

func actorUUID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
