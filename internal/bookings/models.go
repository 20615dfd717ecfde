package bookings

import (
	"time"

	"github.com/google/uuid"

	"github.com/ProRenterv1/Renter-sub002/internal/listings"
	"github.com/ProRenterv1/Renter-sub002/internal/users"
)

// Booking represents a rental of a listing for a date range. Financial
// fields are integer cents; dispute records reference bookings read-only.
type Booking struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ListingID uuid.UUID `json:"listing_id" gorm:"type:uuid;not null;index"`
	RenterID  uuid.UUID `json:"renter_id" gorm:"type:uuid;not null;index"`
	OwnerID   uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`

	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`
	Status    Status    `json:"status" gorm:"type:varchar(20);not null;default:'REQUESTED';index"`

	TotalCents       int64 `json:"total_cents" gorm:"not null"`
	DepositHoldCents int64 `json:"deposit_hold_cents" gorm:"not null;default:0"`

	PickupConfirmedAt *time.Time `json:"pickup_confirmed_at,omitempty"`
	ReturnConfirmedAt *time.Time `json:"return_confirmed_at,omitempty"`

	BeforePhotoKeys []string `json:"before_photo_keys,omitempty" gorm:"serializer:json"`
	AfterPhotoKeys  []string `json:"after_photo_keys,omitempty" gorm:"serializer:json"`

	CanceledAt   *time.Time `json:"canceled_at,omitempty"`
	CancelReason string     `json:"cancel_reason,omitempty" gorm:"type:varchar(255)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Listing *listings.Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
	Renter  *users.User       `json:"renter,omitempty" gorm:"foreignKey:RenterID"`
	Owner   *users.User       `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

func (Booking) TableName() string {
	return "bookings"
}

// RentalDays returns the billed day count, minimum one day.
func (b *Booking) RentalDays() int {
	days := int(b.EndDate.Sub(b.StartDate).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days
}

// IsParty reports whether the given user is the renter or the owner.
func (b *Booking) IsParty(userID uuid.UUID) bool {
	return b.RenterID == userID || b.OwnerID == userID
}
