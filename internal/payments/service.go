package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ProRenterv1/Renter-sub002/pkg/logger"
	"github.com/ProRenterv1/Renter-sub002/pkg/money"
)

var (
	ErrNegativeEffect     = errors.New("resolution amounts must be non-negative")
	ErrCaptureExceedsHold = errors.New("deposit capture exceeds held amount")
)

// ResolutionEffects is the financial side of a dispute resolution: refund
// the renter and capture from the deposit, each possibly zero. Applied in
// the caller's transaction so the money moves commit with the resolution
// row or not at all.
type ResolutionEffects struct {
	BookingID    uuid.UUID
	DisputeID    uuid.UUID
	RefundCents  int64
	CaptureCents int64
	Reason       string
}

type Service interface {
	RecordBookingPayment(ctx context.Context, tx *gorm.DB, bookingID, payerID uuid.UUID, totalCents, depositCents int64) (*Payment, *DepositHold, error)
	ApplyResolution(ctx context.Context, tx *gorm.DB, effects ResolutionEffects) error
	ReleaseDeposit(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error
	GetLedger(ctx context.Context, bookingID uuid.UUID) (*LedgerResponse, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// RecordBookingPayment charges the booking total and opens the deposit
// hold. The sandbox provider always succeeds; swapping in a real gateway
// only changes this method.
func (s *service) RecordBookingPayment(ctx context.Context, tx *gorm.DB, bookingID, payerID uuid.UUID, totalCents, depositCents int64) (*Payment, *DepositHold, error) {
	payment := &Payment{
		BookingID:   bookingID,
		PayerID:     payerID,
		AmountCents: totalCents,
		Status:      PaymentSucceeded,
		Provider:    "sandbox",
		ProviderRef: fmt.Sprintf("sbx_%s", uuid.NewString()),
	}
	if err := s.repo.CreatePayment(ctx, tx, payment); err != nil {
		return nil, nil, fmt.Errorf("failed to record payment: %w", err)
	}

	hold := &DepositHold{
		BookingID:   bookingID,
		AmountCents: depositCents,
		Status:      HoldHeld,
	}
	if err := s.repo.CreateDepositHold(ctx, tx, hold); err != nil {
		return nil, nil, fmt.Errorf("failed to create deposit hold: %w", err)
	}

	return payment, hold, nil
}

// ApplyResolution applies a dispute resolution's refund and deposit capture.
// All writes go through tx; validation failures leave nothing behind.
func (s *service) ApplyResolution(ctx context.Context, tx *gorm.DB, effects ResolutionEffects) error {
	if effects.RefundCents < 0 || effects.CaptureCents < 0 {
		return ErrNegativeEffect
	}

	if effects.RefundCents > 0 {
		refund := &Refund{
			BookingID:   effects.BookingID,
			DisputeID:   &effects.DisputeID,
			AmountCents: effects.RefundCents,
			Reason:      effects.Reason,
			Status:      RefundSucceeded,
		}
		if err := s.repo.CreateRefund(ctx, tx, refund); err != nil {
			return fmt.Errorf("failed to create refund: %w", err)
		}
	}

	hold, err := s.repo.GetDepositHoldForUpdate(ctx, tx, effects.BookingID)
	if err != nil {
		if errors.Is(err, ErrHoldNotFound) && effects.CaptureCents == 0 {
			// no deposit was held and nothing to capture
			return nil
		}
		return err
	}
	if hold.Status != HoldHeld {
		return ErrHoldNotHeld
	}
	if effects.CaptureCents > hold.AmountCents {
		return ErrCaptureExceedsHold
	}

	outcome := SettleDeposit(hold.AmountCents, effects.CaptureCents)
	now := time.Now()

	hold.CapturedCents = outcome.CaptureCents
	hold.DisputeID = &effects.DisputeID
	if outcome.CaptureCents > 0 {
		hold.CapturedAt = &now
	}
	if outcome.Release {
		hold.Status = HoldReleased
		hold.ReleasedAt = &now
	} else {
		hold.Status = HoldCaptured
	}

	if err := s.repo.UpdateDepositHold(ctx, tx, hold); err != nil {
		return fmt.Errorf("failed to settle deposit hold: %w", err)
	}

	logger.GetDefault().LogResolutionApplied(ctx, effects.DisputeID.String(), effects.Reason, effects.RefundCents, effects.CaptureCents)
	return nil
}

// ReleaseDeposit releases a hold in full, used when a booking completes
// without a dispute.
func (s *service) ReleaseDeposit(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) error {
	hold, err := s.repo.GetDepositHoldForUpdate(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, ErrHoldNotFound) {
			return nil
		}
		return err
	}
	if hold.Status != HoldHeld {
		return nil
	}

	now := time.Now()
	hold.Status = HoldReleased
	hold.ReleasedAt = &now
	return s.repo.UpdateDepositHold(ctx, tx, hold)
}

func (s *service) GetLedger(ctx context.Context, bookingID uuid.UUID) (*LedgerResponse, error) {
	paymentRows, hold, refundRows, err := s.repo.GetLedger(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	resp := &LedgerResponse{BookingID: bookingID.String()}
	for _, p := range paymentRows {
		resp.Payments = append(resp.Payments, PaymentEntry{
			ID:        p.ID.String(),
			Amount:    money.Cents(p.AmountCents).Format(),
			Status:    string(p.Status),
			Provider:  p.Provider,
			CreatedAt: p.CreatedAt,
		})
	}
	if hold != nil {
		resp.DepositHold = &DepositHoldEntry{
			ID:         hold.ID.String(),
			Amount:     money.Cents(hold.AmountCents).Format(),
			Captured:   money.Cents(hold.CapturedCents).Format(),
			Status:     string(hold.Status),
			CapturedAt: hold.CapturedAt,
			ReleasedAt: hold.ReleasedAt,
		}
	}
	for _, rf := range refundRows {
		resp.Refunds = append(resp.Refunds, RefundEntry{
			ID:        rf.ID.String(),
			Amount:    money.Cents(rf.AmountCents).Format(),
			Reason:    rf.Reason,
			Status:    string(rf.Status),
			CreatedAt: rf.CreatedAt,
		})
	}
	return resp, nil
}
