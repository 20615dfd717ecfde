package disputes

import (
	"time"

	"github.com/ProRenterv1/Renter-sub002/pkg/money"
)

type EvidenceResponse struct {
	ID          string    `json:"id"`
	UploadedBy  string    `json:"uploaded_by"`
	Kind        string    `json:"kind"`
	StorageKey  string    `json:"storage_key"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	AVStatus    string    `json:"av_status"`
	CreatedAt   time.Time `json:"created_at"`
}

type MessageResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id,omitempty"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type ResolutionResponse struct {
	Decision             string    `json:"decision"`
	RefundAmount         string    `json:"refund_amount"`
	DepositCaptureAmount string    `json:"deposit_capture_amount"`
	DepositReleased      bool      `json:"deposit_released"`
	Reason               string    `json:"reason"`
	Notes                string    `json:"notes,omitempty"`
	SuspendListing       bool      `json:"suspend_listing"`
	ResolvedBy           string    `json:"resolved_by"`
	ResolvedAt           time.Time `json:"resolved_at"`
}

type DisputeResponse struct {
	ID             string `json:"id"`
	BookingID      string `json:"booking_id"`
	OpenedBy       string `json:"opened_by"`
	OpenedByRole   string `json:"opened_by_role"`
	Category       string `json:"category"`
	DamageFlowKind string `json:"damage_flow_kind,omitempty"`
	Description    string `json:"description"`
	Status         string `json:"status"`

	RebuttalDueAt       *time.Time `json:"rebuttal_due_at,omitempty"`
	RebuttalReceivedAt  *time.Time `json:"rebuttal_received_at,omitempty"`
	AutoRebuttalTimeout bool       `json:"auto_rebuttal_timeout"`
	EvidenceDueAt       *time.Time `json:"evidence_due_at,omitempty"`
	EvidenceDueTarget   string     `json:"evidence_due_target,omitempty"`
	AppealDueAt         *time.Time `json:"appeal_due_at,omitempty"`
	ReviewStartedAt     *time.Time `json:"review_started_at,omitempty"`
	ResolvedAt          *time.Time `json:"resolved_at,omitempty"`

	CloseReason string `json:"close_reason,omitempty"`
	CloseNotes  string `json:"close_notes,omitempty"`

	BookingContext BookingContext `json:"booking_context"`

	Messages   []MessageResponse   `json:"messages,omitempty"`
	Evidence   []EvidenceResponse  `json:"evidence,omitempty"`
	Timeline   []TimelineEntry     `json:"timeline,omitempty"`
	Resolution *ResolutionResponse `json:"resolution,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DisputeListResponse struct {
	Disputes   []DisputeResponse `json:"disputes"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

type PresignEvidenceResponse struct {
	Key       string            `json:"key"`
	UploadURL string            `json:"upload_url"`
	Headers   map[string]string `json:"headers"`
	MaxBytes  int64             `json:"max_bytes"`
	Tagging   string            `json:"tagging"`
}

type CompleteEvidenceResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	ID     string `json:"id"`
}

// toResponse builds the API projection. Evidence is expected to be
// pre-filtered for the viewer before calling this.
func toResponse(d *DisputeCase, evidence []DisputeEvidence, includeDetail bool) DisputeResponse {
	resp := DisputeResponse{
		ID:                  d.ID.String(),
		BookingID:           d.BookingID.String(),
		OpenedBy:            d.OpenedBy.String(),
		OpenedByRole:        string(d.OpenedByRole),
		Category:            string(d.Category),
		DamageFlowKind:      string(d.DamageFlowKind),
		Description:         d.Description,
		Status:              string(d.Status),
		RebuttalDueAt:       d.RebuttalDueAt,
		RebuttalReceivedAt:  d.RebuttalReceivedAt,
		AutoRebuttalTimeout: d.AutoRebuttalTimeout,
		EvidenceDueAt:       d.EvidenceDueAt,
		EvidenceDueTarget:   d.EvidenceDueTarget,
		AppealDueAt:         d.AppealDueAt,
		ReviewStartedAt:     d.ReviewStartedAt,
		ResolvedAt:          d.ResolvedAt,
		CloseReason:         string(d.CloseReason),
		CloseNotes:          d.CloseNotes,
		BookingContext:      d.ResolveBookingContext(),
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}

	if !includeDetail {
		return resp
	}

	for i := range d.Messages {
		m := &d.Messages[i]
		msg := MessageResponse{
			ID:        m.ID.String(),
			Role:      string(m.Role),
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		}
		if m.AuthorID != nil {
			msg.AuthorID = m.AuthorID.String()
		}
		resp.Messages = append(resp.Messages, msg)
	}

	for i := range evidence {
		e := &evidence[i]
		resp.Evidence = append(resp.Evidence, EvidenceResponse{
			ID:          e.ID.String(),
			UploadedBy:  e.UploadedBy.String(),
			Kind:        string(e.Kind),
			StorageKey:  e.StorageKey,
			Filename:    e.Filename,
			ContentType: e.ContentType,
			SizeBytes:   e.SizeBytes,
			AVStatus:    string(e.AVStatus),
			CreatedAt:   e.CreatedAt,
		})
	}

	resp.Timeline = BuildTimeline(d.Messages, evidence)

	if d.Resolution != nil {
		res := d.Resolution
		holdCents := d.ResolveBookingContext().DepositHoldCents
		resp.Resolution = &ResolutionResponse{
			Decision:             string(res.Decision),
			RefundAmount:         money.Cents(res.RefundCents).Format(),
			DepositCaptureAmount: money.Cents(res.DepositCaptureCents).Format(),
			DepositReleased:      res.DepositCaptureCents < holdCents,
			Reason:               res.Reason,
			Notes:                res.Notes,
			SuspendListing:       res.SuspendListing,
			ResolvedBy:           res.ResolvedBy.String(),
			ResolvedAt:           res.ResolvedAt,
		}
	}

	return resp
}
