package listings

import (
	"time"

	"github.com/google/uuid"

	"github.com/ProRenterv1/Renter-sub002/internal/users"
)

// Listing is a tool offered for rent by an owner. Prices and deposits are
// stored in integer cents.
type Listing struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID         uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`
	Title           string    `gorm:"not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	Category        string    `gorm:"type:varchar(40);index;not null" json:"category"`
	City            string    `gorm:"type:varchar(100);index" json:"city"`
	DailyPriceCents int64     `gorm:"not null" json:"daily_price_cents"`
	DepositCents    int64     `gorm:"not null;default:0" json:"deposit_cents"`
	Status          Status    `gorm:"type:varchar(20);default:'ACTIVE'" json:"status"`

	SuspendedAt     *time.Time `json:"suspended_at,omitempty"`
	SuspendedReason string     `json:"suspended_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Owner  *users.User    `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Photos []ListingPhoto `json:"photos,omitempty" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE;"`
}

// ListingPhoto is a stored photo attached to a listing
type ListingPhoto struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ListingID  uuid.UUID `gorm:"type:uuid;index;not null" json:"listing_id"`
	StorageKey string    `gorm:"not null" json:"storage_key"`
	Position   int       `gorm:"not null;default:0" json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Listing) TableName() string {
	return "listings"
}

func (ListingPhoto) TableName() string {
	return "listing_photos"
}

// ValidCategories are the listing categories accepted at creation
var ValidCategories = []string{
	"power_tools",
	"hand_tools",
	"garden",
	"ladders_scaffolding",
	"cleaning",
	"automotive",
	"other",
}

func IsValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}
