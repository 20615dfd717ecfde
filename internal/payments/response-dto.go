package payments

import "time"

type PaymentEntry struct {
	ID        string    `json:"id"`
	Amount    string    `json:"amount"`
	Status    string    `json:"status"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

type DepositHoldEntry struct {
	ID         string     `json:"id"`
	Amount     string     `json:"amount"`
	Captured   string     `json:"captured"`
	Status     string     `json:"status"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
}

type RefundEntry struct {
	ID        string    `json:"id"`
	Amount    string    `json:"amount"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// LedgerResponse is the per-booking financial view.
type LedgerResponse struct {
	BookingID   string            `json:"booking_id"`
	Payments    []PaymentEntry    `json:"payments"`
	DepositHold *DepositHoldEntry `json:"deposit_hold,omitempty"`
	Refunds     []RefundEntry     `json:"refunds"`
}
