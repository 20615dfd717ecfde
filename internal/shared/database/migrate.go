package database

import (
	"github.com/ProRenterv1/Renter-sub002/internal/bookings"
	"github.com/ProRenterv1/Renter-sub002/internal/disputes"
	"github.com/ProRenterv1/Renter-sub002/internal/listings"
	"github.com/ProRenterv1/Renter-sub002/internal/payments"
	"github.com/ProRenterv1/Renter-sub002/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&listings.Listing{},
		&listings.ListingPhoto{},
		&bookings.Booking{},
		&payments.Payment{},
		&payments.DepositHold{},
		&payments.Refund{},
		&disputes.DisputeCase{},
		&disputes.DisputeMessage{},
		&disputes.DisputeEvidence{},
		&disputes.Resolution{},
	)
}
