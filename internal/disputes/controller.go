package disputes

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ProRenterv1/Renter-sub002/internal/bookings"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/middleware"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/policy"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/utils/response"
	"github.com/ProRenterv1/Renter-sub002/internal/uploads"
	"github.com/ProRenterv1/Renter-sub002/pkg/money"
)

type Controller struct {
	service      Service
	validate     *validator.Validate
	scannerToken string
}

func NewController(service Service, scannerToken string) *Controller {
	return &Controller{
		service:      service,
		validate:     validator.New(),
		scannerToken: scannerToken,
	}
}

func disputeActor(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return uuid.Nil, false
	}
	actorID, err := uuid.Parse(raw)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Invalid user identity", nil)
		return uuid.Nil, false
	}
	return actorID, true
}

// operatorView reports whether the caller may see cases they are not a
// party to.
func operatorView(c *gin.Context) bool {
	return policy.Allows(middleware.UserRole(c), policy.ActionDisputeOpenReview)
}

// CreateDispute handles POST /disputes
func (ctrl *Controller) CreateDispute(c *gin.Context) {
	var req CreateDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	actorID, ok := disputeActor(c)
	if !ok {
		return
	}

	dispute, err := ctrl.service.CreateDispute(c.Request.Context(), actorID, req)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Dispute opened successfully", dispute)
}

// GetDispute handles GET /disputes/:id
func (ctrl *Controller) GetDispute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid dispute ID", nil)
		return
	}
	actorID, ok := disputeActor(c)
	if !ok {
		return
	}

	dispute, err := ctrl.service.GetDispute(c.Request.Context(), id, actorID, operatorView(c))
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Dispute retrieved successfully", dispute)
}

// ListDisputes handles GET /disputes
func (ctrl *Controller) ListDisputes(c *gin.Context) {
	var query DisputeListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}
	actorID, ok := disputeActor(c)
	if !ok {
		return
	}

	result, err := ctrl.service.ListDisputes(c.Request.Context(), actorID, operatorView(c), query)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Disputes retrieved successfully", result)
}

// AppendMessage handles POST /disputes/:id/messages
func (ctrl *Controller) AppendMessage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid dispute ID", nil)
		return
	}
	var req AppendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	actorID, ok := disputeActor(c)
	if !ok {
		return
	}

	dispute, err := ctrl.service.AppendMessage(c.Request.Context(), id, actorID, operatorView(c), req.Text)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Message added successfully", dispute)
}

// PresignEvidence handles POST /disputes/:id/evidence/presign
func (ctrl *Controller) PresignEvidence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid dispute ID", nil)
		return
	}
	var req PresignEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	actorID, ok := disputeActor(c)
	if !ok {
		return
	}

	result, err := ctrl.service.PresignEvidence(c.Request.Context(), id, actorID, req)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Upload URL issued", result)
}

// CompleteEvidence handles POST /disputes/:id/evidence/complete
func (ctrl *Controller) CompleteEvidence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid dispute ID", nil)
		return
	}
	var req CompleteEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	actorID, ok := disputeActor(c)
	if !ok {
		return
	}

	result, err := ctrl.service.CompleteEvidence(c.Request.Context(), id, actorID, req)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Evidence recorded successfully", result)
}

// RequestEvidence handles POST /operator/disputes/:id/request-evidence
func (ctrl *Controller) RequestEvidence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid dispute ID", nil)
		return
	}
	var req RequestEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	operatorID, ok := disputeActor(c)
	if !ok {
		return
	}

	dispute, err := ctrl.service.RequestMoreEvidence(c.Request.Context(), id, operatorID, req)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Evidence requested", dispute)
}

// OpenReview handles POST /operator/disputes/:id/open-review
func (ctrl *Controller) OpenReview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid dispute ID", nil)
		return
	}
	operatorID, ok := disputeActor(c)
	if !ok {
		return
	}

	dispute, err := ctrl.service.OpenReview(c.Request.Context(), id, operatorID)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Case moved to review", dispute)
}

// Resolve handles POST /operator/disputes/:id/resolve
func (ctrl *Controller) Resolve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid dispute ID", nil)
		return
	}
	var req ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	operatorID, ok := disputeActor(c)
	if !ok {
		return
	}

	dispute, err := ctrl.service.Resolve(c.Request.Context(), id, operatorID, req)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Dispute resolved", dispute)
}

// Close handles POST /operator/disputes/:id/close
func (ctrl *Controller) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid dispute ID", nil)
		return
	}
	var req CloseDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	operatorID, ok := disputeActor(c)
	if !ok {
		return
	}

	dispute, err := ctrl.service.Close(c.Request.Context(), id, operatorID, req)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Dispute closed", dispute)
}

// Appeal handles POST /disputes/:id/appeal
func (ctrl *Controller) Appeal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid dispute ID", nil)
		return
	}
	var req AppealDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	actorID, ok := disputeActor(c)
	if !ok {
		return
	}

	dispute, err := ctrl.service.Appeal(c.Request.Context(), id, actorID, operatorView(c), req)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Appeal recorded", dispute)
}

// AVCallback handles POST /internal/av/callback. The scanner gateway
// authenticates with a shared token, not a user JWT.
func (ctrl *Controller) AVCallback(c *gin.Context) {
	token := c.GetHeader("X-Scanner-Token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(ctrl.scannerToken)) != 1 {
		response.Error(c, http.StatusUnauthorized, "Invalid scanner token", nil)
		return
	}

	var req AVCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	if err := ctrl.service.UpdateEvidenceAV(c.Request.Context(), req); err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Scan result recorded", nil)
}

func (ctrl *Controller) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrDisputeNotFound) || errors.Is(err, ErrEvidenceNotFound):
		response.Error(c, http.StatusNotFound, "Dispute not found", nil)
	case errors.Is(err, bookings.ErrBookingNotFound):
		response.Error(c, http.StatusNotFound, "Booking not found", nil)
	case errors.Is(err, ErrNotParty):
		response.Error(c, http.StatusForbidden, "You are not a party to this dispute", nil)
	case errors.Is(err, ErrStaleTransition):
		response.Conflict(c, "The case changed while you were working. Reload and try again.")
	case errors.Is(err, ErrDisputeExists):
		response.Conflict(c, "A dispute already exists for this booking.")
	case errors.Is(err, ErrCaseReadOnly):
		response.Error(c, http.StatusConflict, "This case is read-only", nil)
	case errors.Is(err, ErrBadConfirmToken):
		response.Error(c, http.StatusBadRequest, "Confirmation token mismatch", nil)
	case errors.Is(err, ErrReasonRequired):
		response.Error(c, http.StatusBadRequest, "A reason is required", nil)
	case errors.Is(err, ErrResolutionNotReady) || errors.Is(err, ErrReviewNotReady):
		response.Error(c, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, ErrCaptureExceedsHold) || errors.Is(err, ErrDenyCarriesMoney) ||
		errors.Is(err, ErrInvalidCategory) || errors.Is(err, ErrBookingNotEligible):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, money.ErrNegativeAmount) || errors.Is(err, money.ErrInvalidAmount):
		response.Error(c, http.StatusBadRequest, "Invalid monetary amount", err.Error())
	case errors.Is(err, uploads.ErrFileTooLarge) || errors.Is(err, uploads.ErrUnsupportedContent):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		var invalidTransition *InvalidTransitionError
		if errors.As(err, &invalidTransition) {
			response.Error(c, http.StatusUnprocessableEntity, invalidTransition.Error(), nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Something went wrong", nil)
	}
}
