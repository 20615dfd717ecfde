package disputes

type CreateDisputeRequest struct {
	BookingID      string `json:"booking" binding:"required,uuid"`
	Category       string `json:"category" binding:"required"`
	DamageFlowKind string `json:"damage_flow_kind,omitempty"`
	Description    string `json:"description" binding:"required,min=10"`
}

type AppendMessageRequest struct {
	Text string `json:"text" binding:"required,min=1,max=5000"`
}

type PresignEvidenceRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size" binding:"required,gt=0"`
}

type CompleteEvidenceRequest struct {
	Key            string `json:"key" binding:"required"`
	Filename       string `json:"filename" binding:"required"`
	ContentType    string `json:"content_type"`
	Size           int64  `json:"size" binding:"required,gt=0"`
	ETag           string `json:"etag"`
	Kind           string `json:"kind" binding:"required,oneof=photo video other"`
	Width          *int   `json:"width,omitempty"`
	Height         *int   `json:"height,omitempty"`
	OriginalSize   *int64 `json:"original_size,omitempty"`
	CompressedSize *int64 `json:"compressed_size,omitempty"`
}

type RequestEvidenceRequest struct {
	Target  string `json:"target" binding:"required,oneof=owner renter both"`
	Message string `json:"message" binding:"required,min=3"`
	DueAt   string `json:"due_at,omitempty"` // RFC 3339; defaults to the configured evidence window
	Notify  bool   `json:"notify"`
}

type ResolveDisputeRequest struct {
	Decision             string `json:"decision" binding:"required,oneof=renter owner partial deny"`
	RefundAmount         string `json:"refund_amount"`
	DepositCaptureAmount string `json:"deposit_capture_amount"`
	Reason               string `json:"reason" binding:"required,min=3"`
	Notes                string `json:"notes,omitempty"`
	SuspendListing       bool   `json:"suspend_listing"`
	MarkRenterSuspicious bool   `json:"mark_renter_suspicious"`
	MarkOwnerSuspicious  bool   `json:"mark_owner_suspicious"`
	ConfirmToken         string `json:"confirm_token" binding:"required"`
}

type CloseDisputeRequest struct {
	Reason       string `json:"reason" binding:"required,oneof=late duplicate no_evidence"`
	Notes        string `json:"notes,omitempty"`
	ConfirmToken string `json:"confirm_token" binding:"required"`
}

type AppealDisputeRequest struct {
	Reason              string `json:"reason" binding:"required,min=3"`
	NewEvidenceUploaded bool   `json:"new_evidence_uploaded"`
	DueAt               string `json:"due_at,omitempty"` // RFC 3339; defaults to the configured appeal window
}

type DisputeListQuery struct {
	BookingID string `form:"booking"`
	Status    string `form:"status"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

type AVCallbackRequest struct {
	Key    string `json:"key" binding:"required"`
	Status string `json:"status" binding:"required,oneof=pending clean infected failed"`
}
