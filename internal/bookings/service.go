package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ProRenterv1/Renter-sub002/internal/listings"
	"github.com/ProRenterv1/Renter-sub002/internal/notifications"
	"github.com/ProRenterv1/Renter-sub002/internal/payments"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/constants"
	"github.com/ProRenterv1/Renter-sub002/internal/users"
	"github.com/ProRenterv1/Renter-sub002/pkg/cache"
	"github.com/ProRenterv1/Renter-sub002/pkg/logger"
	"github.com/ProRenterv1/Renter-sub002/pkg/money"
)

var (
	ErrNotBookingParty  = errors.New("user is not a party to this booking")
	ErrOwnBooking       = errors.New("owners cannot book their own listings")
	ErrInvalidDateRange = errors.New("end date must be after start date")
	ErrListingNotActive = errors.New("listing is not available for booking")
	ErrWrongActor       = errors.New("this action belongs to the other party")
)

type Service interface {
	CreateBooking(ctx context.Context, renterID uuid.UUID, req CreateBookingRequest) (*BookingResponse, error)
	GetBooking(ctx context.Context, id, actorID uuid.UUID, isOperator bool) (*BookingResponse, error)
	ListBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) (*BookingListResponse, error)
	ConfirmBooking(ctx context.Context, id, actorID uuid.UUID) (*BookingResponse, error)
	PayBooking(ctx context.Context, id, actorID uuid.UUID) (*BookingResponse, error)
	ConfirmPickup(ctx context.Context, id, actorID uuid.UUID, photoKeys []string) (*BookingResponse, error)
	ConfirmReturn(ctx context.Context, id, actorID uuid.UUID, photoKeys []string) (*BookingResponse, error)
	CompleteBooking(ctx context.Context, id, actorID uuid.UUID) (*BookingResponse, error)
	CancelBooking(ctx context.Context, id, actorID uuid.UUID, reason string) (*BookingResponse, error)
}

type service struct {
	repo          Repository
	listingRepo   listings.Repository
	userRepo      UserReader
	payments      payments.Service
	notifications notifications.NotificationService
	cache         cache.Service
}

// UserReader is the slice of the user store bookings needs for
// notification recipients.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*users.User, error)
}

func NewService(
	repo Repository,
	listingRepo listings.Repository,
	userRepo UserReader,
	paymentService payments.Service,
	notificationService notifications.NotificationService,
	cacheService cache.Service,
) Service {
	return &service{
		repo:          repo,
		listingRepo:   listingRepo,
		userRepo:      userRepo,
		payments:      paymentService,
		notifications: notificationService,
		cache:         cacheService,
	}
}

func (s *service) CreateBooking(ctx context.Context, renterID uuid.UUID, req CreateBookingRequest) (*BookingResponse, error) {
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return nil, fmt.Errorf("invalid listing id: %w", err)
	}

	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date: %w", err)
	}
	endDate, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end_date: %w", err)
	}
	if !endDate.After(startDate) {
		return nil, ErrInvalidDateRange
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.Status.IsBookable() {
		return nil, ErrListingNotActive
	}
	if listing.OwnerID == renterID {
		return nil, ErrOwnBooking
	}

	booking := &Booking{
		ListingID:        listingID,
		RenterID:         renterID,
		OwnerID:          listing.OwnerID,
		StartDate:        startDate,
		EndDate:          endDate,
		Status:           StatusRequested,
		DepositHoldCents: listing.DepositCents,
	}
	booking.TotalCents = int64(booking.RentalDays()) * listing.DailyPriceCents

	if err := s.repo.CreateWithAvailabilityCheck(ctx, booking); err != nil {
		return nil, err
	}

	logger.GetDefault().LogBookingCreated(ctx, booking.ID.String(), listingID.String(), renterID.String())
	s.invalidateBookingCaches(ctx, booking)

	created, err := s.repo.GetByID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	resp := created.ToResponse()
	return &resp, nil
}

func (s *service) GetBooking(ctx context.Context, id, actorID uuid.UUID, isOperator bool) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isOperator && !booking.IsParty(actorID) {
		return nil, ErrNotBookingParty
	}

	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) ListBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) (*BookingListResponse, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 10
	}

	results, totalCount, err := s.repo.ListForUser(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	responses := make([]BookingResponse, 0, len(results))
	for i := range results {
		responses = append(responses, results[i].ToResponse())
	}

	return &BookingListResponse{
		Bookings:   responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
	}, nil
}

// ConfirmBooking is the owner accepting a rental request.
func (s *service) ConfirmBooking(ctx context.Context, id, actorID uuid.UUID) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != actorID {
		return nil, ErrWrongActor
	}

	updated, err := s.repo.TransitionStatus(ctx, id, StatusRequested, StatusConfirmed, nil)
	if err != nil {
		return nil, err
	}

	s.invalidateBookingCaches(ctx, updated)
	s.notifyBooking(ctx, updated, updated.RenterID, notifications.NotificationTypeBookingConfirmed)

	resp := updated.ToResponse()
	return &resp, nil
}

// PayBooking charges the renter and opens the deposit hold. The payment
// rows and the status change commit in one transaction.
func (s *service) PayBooking(ctx context.Context, id, actorID uuid.UUID) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != actorID {
		return nil, ErrWrongActor
	}

	updated, err := s.repo.TransitionStatus(ctx, id, StatusConfirmed, StatusPaid, func(tx *gorm.DB, b *Booking) error {
		_, _, err := s.payments.RecordBookingPayment(ctx, tx, b.ID, b.RenterID, b.TotalCents, b.DepositHoldCents)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBookingCaches(ctx, updated)

	resp := updated.ToResponse()
	return &resp, nil
}

func (s *service) ConfirmPickup(ctx context.Context, id, actorID uuid.UUID, photoKeys []string) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.IsParty(actorID) {
		return nil, ErrNotBookingParty
	}
	if booking.Status != StatusPaid {
		return nil, &InvalidTransitionError{From: booking.Status, To: StatusPaid}
	}

	now := time.Now()
	booking.PickupConfirmedAt = &now
	booking.BeforePhotoKeys = append(booking.BeforePhotoKeys, photoKeys...)
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to confirm pickup: %w", err)
	}

	s.invalidateBookingCaches(ctx, booking)

	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) ConfirmReturn(ctx context.Context, id, actorID uuid.UUID, photoKeys []string) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.IsParty(actorID) {
		return nil, ErrNotBookingParty
	}
	if booking.Status != StatusPaid {
		return nil, &InvalidTransitionError{From: booking.Status, To: StatusPaid}
	}

	now := time.Now()
	booking.ReturnConfirmedAt = &now
	booking.AfterPhotoKeys = append(booking.AfterPhotoKeys, photoKeys...)
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to confirm return: %w", err)
	}

	s.invalidateBookingCaches(ctx, booking)

	resp := booking.ToResponse()
	return &resp, nil
}

// CompleteBooking closes out a rental and releases the deposit when no
// dispute has claimed it.
func (s *service) CompleteBooking(ctx context.Context, id, actorID uuid.UUID) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != actorID {
		return nil, ErrWrongActor
	}

	updated, err := s.repo.TransitionStatus(ctx, id, StatusPaid, StatusCompleted, func(tx *gorm.DB, b *Booking) error {
		return s.payments.ReleaseDeposit(ctx, tx, b.ID)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBookingCaches(ctx, updated)

	resp := updated.ToResponse()
	return &resp, nil
}

func (s *service) CancelBooking(ctx context.Context, id, actorID uuid.UUID, reason string) (*BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.IsParty(actorID) {
		return nil, ErrNotBookingParty
	}
	if booking.Status.IsTerminal() {
		return nil, &InvalidTransitionError{From: booking.Status, To: StatusCanceled}
	}

	updated, err := s.repo.TransitionStatus(ctx, id, booking.Status, StatusCanceled, func(tx *gorm.DB, b *Booking) error {
		now := time.Now()
		b.CanceledAt = &now
		b.CancelReason = reason
		if booking.Status == StatusPaid {
			// paid bookings get the deposit back on cancellation
			return s.payments.ReleaseDeposit(ctx, tx, b.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBookingCaches(ctx, updated)

	otherParty := updated.OwnerID
	if actorID == updated.OwnerID {
		otherParty = updated.RenterID
	}
	s.notifyBooking(ctx, updated, otherParty, notifications.NotificationTypeBookingCanceled)

	resp := updated.ToResponse()
	return &resp, nil
}

// notifyBooking publishes fire-and-forget; delivery problems are logged and
// never fail the request.
func (s *service) notifyBooking(ctx context.Context, booking *Booking, recipientID uuid.UUID, notType notifications.NotificationType) {
	recipient, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to load notification recipient", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
		})
		return
	}

	templateData := map[string]interface{}{
		"start_date": booking.StartDate.Format("2006-01-02"),
		"end_date":   booking.EndDate.Format("2006-01-02"),
		"total":      money.Cents(booking.TotalCents).Format(),
	}
	if booking.Listing != nil {
		templateData["listing_title"] = booking.Listing.Title
	}

	err = s.notifications.SendBookingNotification(ctx, recipient.ID, recipient.Email,
		recipient.FirstName, booking.ID, notType, templateData)
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to publish booking notification", err, map[string]interface{}{
			"booking_id": booking.ID.String(),
			"type":       string(notType),
		})
	}
}

func (s *service) invalidateBookingCaches(ctx context.Context, booking *Booking) {
	keys := []string{
		constants.BuildBookingDetailKey(booking.ID.String()),
	}
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "failed to invalidate booking cache", err, map[string]interface{}{
				"key": key,
			})
		}
	}
	if err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_BOOKINGS_ALL); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to invalidate booking list caches", err, nil)
	}
}
