package payments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrHoldNotFound    = errors.New("deposit hold not found")
	ErrHoldNotHeld     = errors.New("deposit hold already settled")
	ErrPaymentNotFound = errors.New("payment not found")
)

type Repository interface {
	CreatePayment(ctx context.Context, tx *gorm.DB, payment *Payment) error
	CreateDepositHold(ctx context.Context, tx *gorm.DB, hold *DepositHold) error
	CreateRefund(ctx context.Context, tx *gorm.DB, refund *Refund) error
	GetDepositHoldForUpdate(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (*DepositHold, error)
	UpdateDepositHold(ctx context.Context, tx *gorm.DB, hold *DepositHold) error
	GetLedger(ctx context.Context, bookingID uuid.UUID) ([]Payment, *DepositHold, []Refund, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// conn picks the caller's transaction when one is supplied so writes join
// the surrounding atomic unit.
func (r *repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) CreatePayment(ctx context.Context, tx *gorm.DB, payment *Payment) error {
	return r.conn(tx).WithContext(ctx).Create(payment).Error
}

func (r *repository) CreateDepositHold(ctx context.Context, tx *gorm.DB, hold *DepositHold) error {
	return r.conn(tx).WithContext(ctx).Create(hold).Error
}

func (r *repository) CreateRefund(ctx context.Context, tx *gorm.DB, refund *Refund) error {
	return r.conn(tx).WithContext(ctx).Create(refund).Error
}

func (r *repository) GetDepositHoldForUpdate(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (*DepositHold, error) {
	var hold DepositHold
	err := r.conn(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("booking_id = ?", bookingID).
		First(&hold).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, err
	}
	return &hold, nil
}

func (r *repository) UpdateDepositHold(ctx context.Context, tx *gorm.DB, hold *DepositHold) error {
	return r.conn(tx).WithContext(ctx).Save(hold).Error
}

func (r *repository) GetLedger(ctx context.Context, bookingID uuid.UUID) ([]Payment, *DepositHold, []Refund, error) {
	var paymentRows []Payment
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("created_at").Find(&paymentRows).Error; err != nil {
		return nil, nil, nil, err
	}

	var hold DepositHold
	var holdPtr *DepositHold
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&hold).Error
	if err == nil {
		holdPtr = &hold
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil, err
	}

	var refundRows []Refund
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("created_at").Find(&refundRows).Error; err != nil {
		return nil, nil, nil, err
	}

	return paymentRows, holdPtr, refundRows, nil
}
