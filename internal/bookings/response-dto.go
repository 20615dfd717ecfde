package bookings

import (
	"time"

	"github.com/ProRenterv1/Renter-sub002/internal/users"
	"github.com/ProRenterv1/Renter-sub002/pkg/money"
)

type BookingResponse struct {
	ID          string `json:"id"`
	ListingID   string `json:"listing_id"`
	ListingName string `json:"listing_name,omitempty"`
	Status      string `json:"status"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	Total       string `json:"total"`
	DepositHold string `json:"deposit_hold"`

	Renter *users.Summary `json:"renter,omitempty"`
	Owner  *users.Summary `json:"owner,omitempty"`

	PickupConfirmedAt *time.Time `json:"pickup_confirmed_at,omitempty"`
	ReturnConfirmedAt *time.Time `json:"return_confirmed_at,omitempty"`
	BeforePhotoKeys   []string   `json:"before_photo_keys,omitempty"`
	AfterPhotoKeys    []string   `json:"after_photo_keys,omitempty"`

	CanceledAt   *time.Time `json:"canceled_at,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BookingListResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

func (b *Booking) ToResponse() BookingResponse {
	resp := BookingResponse{
		ID:                b.ID.String(),
		ListingID:         b.ListingID.String(),
		Status:            string(b.Status),
		StartDate:         b.StartDate,
		EndDate:           b.EndDate,
		Total:             money.Cents(b.TotalCents).Format(),
		DepositHold:       money.Cents(b.DepositHoldCents).Format(),
		PickupConfirmedAt: b.PickupConfirmedAt,
		ReturnConfirmedAt: b.ReturnConfirmedAt,
		BeforePhotoKeys:   b.BeforePhotoKeys,
		AfterPhotoKeys:    b.AfterPhotoKeys,
		CanceledAt:        b.CanceledAt,
		CancelReason:      b.CancelReason,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}

	if b.Listing != nil {
		resp.ListingName = b.Listing.Title
	}
	if b.Renter != nil {
		summary := b.Renter.Summarize()
		resp.Renter = &summary
	}
	if b.Owner != nil {
		summary := b.Owner.Summarize()
		resp.Owner = &summary
	}

	return resp
}
