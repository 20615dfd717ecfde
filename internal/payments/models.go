package payments

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
)

type HoldStatus string

const (
	HoldHeld     HoldStatus = "HELD"
	HoldCaptured HoldStatus = "CAPTURED"
	HoldReleased HoldStatus = "RELEASED"
)

type RefundStatus string

const (
	RefundPending   RefundStatus = "PENDING"
	RefundSucceeded RefundStatus = "SUCCEEDED"
)

// Payment is a charge against the renter for a booking total.
type Payment struct {
	ID          uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	BookingID   uuid.UUID     `json:"booking_id" gorm:"type:uuid;not null;index"`
	PayerID     uuid.UUID     `json:"payer_id" gorm:"type:uuid;not null;index"`
	AmountCents int64         `json:"amount_cents" gorm:"not null"`
	Status      PaymentStatus `json:"status" gorm:"type:varchar(20);not null"`
	Provider    string        `json:"provider" gorm:"type:varchar(40);not null;default:'sandbox'"`
	ProviderRef string        `json:"provider_ref" gorm:"type:varchar(100)"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// DepositHold is the security deposit held at payment time. A resolution
// may capture part of it for the owner; the remainder is released back to
// the renter.
type DepositHold struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	BookingID     uuid.UUID  `json:"booking_id" gorm:"type:uuid;not null;uniqueIndex"`
	AmountCents   int64      `json:"amount_cents" gorm:"not null"`
	Status        HoldStatus `json:"status" gorm:"type:varchar(20);not null;default:'HELD'"`
	CapturedCents int64      `json:"captured_cents" gorm:"not null;default:0"`
	DisputeID     *uuid.UUID `json:"dispute_id,omitempty" gorm:"type:uuid;index"`
	CapturedAt    *time.Time `json:"captured_at,omitempty"`
	ReleasedAt    *time.Time `json:"released_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (DepositHold) TableName() string {
	return "deposit_holds"
}

// Refund is money returned to the renter, usually as a dispute outcome.
type Refund struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	BookingID   uuid.UUID    `json:"booking_id" gorm:"type:uuid;not null;index"`
	DisputeID   *uuid.UUID   `json:"dispute_id,omitempty" gorm:"type:uuid;index"`
	AmountCents int64        `json:"amount_cents" gorm:"not null"`
	Reason      string       `json:"reason" gorm:"type:varchar(255);not null"`
	Status      RefundStatus `json:"status" gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (Refund) TableName() string {
	return "refunds"
}
