package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrDatesUnavailable = errors.New("listing is not available for the requested dates")
	ErrStaleStatus      = errors.New("booking status changed concurrently")
)

type Repository interface {
	CreateWithAvailabilityCheck(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListForUser(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, expected, next Status, mutate func(tx *gorm.DB, b *Booking) error) (*Booking, error)
	Update(ctx context.Context, booking *Booking) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateWithAvailabilityCheck inserts the booking only if no confirmed or
// paid booking overlaps the requested date range. The overlap check and
// insert run in one transaction with the listing's booking rows locked, so
// two concurrent requests for the same dates cannot both succeed.
func (r *repository) CreateWithAvailabilityCheck(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var overlapping int64
		err := tx.Model(&Booking{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("listing_id = ?", booking.ListingID).
			Where("status IN ?", []Status{StatusConfirmed, StatusPaid}).
			Where("start_date < ? AND end_date > ?", booking.EndDate, booking.StartDate).
			Count(&overlapping).Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return ErrDatesUnavailable
		}

		return tx.Create(booking).Error
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Preload("Listing.Photos").
		Preload("Renter").
		Preload("Owner").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	var results []Booking
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).Model(&Booking{})

	switch query.Role {
	case "renter":
		baseQuery = baseQuery.Where("renter_id = ?", userID)
	case "owner":
		baseQuery = baseQuery.Where("owner_id = ?", userID)
	default:
		baseQuery = baseQuery.Where("renter_id = ? OR owner_id = ?", userID, userID)
	}

	if query.Status != "" {
		baseQuery = baseQuery.Where("status = ?", query.Status)
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("Listing").
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&results).Error

	return results, totalCount, err
}

// TransitionStatus moves a booking from expected to next under a row lock.
// The mutate callback runs inside the transaction after the lifecycle check,
// so side effects on the row commit atomically with the status change. If
// the row is no longer in the expected status the transaction aborts with
// ErrStaleStatus.
func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, expected, next Status, mutate func(tx *gorm.DB, b *Booking) error) (*Booking, error) {
	var booking Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&booking).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if booking.Status != expected {
			return ErrStaleStatus
		}
		if err := ValidateTransition(booking.Status, next); err != nil {
			return err
		}

		booking.Status = next
		booking.UpdatedAt = time.Now()
		if mutate != nil {
			if err := mutate(tx, &booking); err != nil {
				return err
			}
		}

		return tx.Save(&booking).Error
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) Update(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}
