package listings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ProRenterv1/Renter-sub002/internal/shared/middleware"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/utils/response"
	"github.com/ProRenterv1/Renter-sub002/pkg/money"
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

// CreateListing handles POST /listings
func (ctrl *Controller) CreateListing(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "Invalid user identity", nil)
		return
	}

	listing, err := ctrl.service.CreateListing(c.Request.Context(), ownerID, req)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Listing created successfully", listing)
}

// GetListing handles GET /listings/:id
func (ctrl *Controller) GetListing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid listing ID", nil)
		return
	}

	listing, err := ctrl.service.GetListing(c.Request.Context(), id)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Listing retrieved successfully", listing)
}

// ListListings handles GET /listings
func (ctrl *Controller) ListListings(c *gin.Context) {
	var query ListingListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
		return
	}

	result, err := ctrl.service.ListListings(c.Request.Context(), query)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Listings retrieved successfully", result)
}

// UpdateListing handles PUT /listings/:id
func (ctrl *Controller) UpdateListing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid listing ID", nil)
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	actorID, ok := actorUUID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	listing, err := ctrl.service.UpdateListing(c.Request.Context(), id, actorID, req)
	if err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Listing updated successfully", listing)
}

// DelistListing handles DELETE /listings/:id
func (ctrl *Controller) DelistListing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid listing ID", nil)
		return
	}

	actorID, ok := actorUUID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if err := ctrl.service.DelistListing(c.Request.Context(), id, actorID); err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Listing delisted successfully", nil)
}

// SuspendListing handles POST /operator/listings/:id/suspend
func (ctrl *Controller) SuspendListing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid listing ID", nil)
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required,min=3"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := ctrl.service.SuspendListing(c.Request.Context(), id, req.Reason); err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Listing suspended", nil)
}

// AddPhoto handles POST /listings/:id/photos
func (ctrl *Controller) AddPhoto(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid listing ID", nil)
		return
	}

	var req struct {
		StorageKey string `json:"storage_key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	actorID, ok := actorUUID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if err := ctrl.service.AddPhoto(c.Request.Context(), id, actorID, req.StorageKey); err != nil {
		ctrl.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Photo added", nil)
}

func (ctrl *Controller) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrListingNotFound):
		response.Error(c, http.StatusNotFound, "Listing not found", nil)
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "Only the owner can modify this listing", nil)
	case errors.Is(err, ErrInvalidCategory):
		response.Error(c, http.StatusBadRequest, "Invalid listing category", ValidCategories)
	case errors.Is(err, money.ErrInvalidAmount), errors.Is(err, money.ErrNegativeAmount):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
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
