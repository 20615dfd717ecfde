package bookings

type CreateBookingRequest struct {
	ListingID string `json:"listing_id" binding:"required,uuid"`
	StartDate string `json:"start_date" binding:"required"` // RFC 3339 date
	EndDate   string `json:"end_date" binding:"required"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=255"`
}

type ConfirmPickupRequest struct {
	PhotoKeys []string `json:"photo_keys" binding:"omitempty,max=10"`
}

type ConfirmReturnRequest struct {
	PhotoKeys []string `json:"photo_keys" binding:"omitempty,max=10"`
}

type BookingListQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`
	Role   string `form:"role"` // renter | owner, defaults to both
}
