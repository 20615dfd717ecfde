package disputes

import (
	"time"

	"github.com/google/uuid"

	"github.com/ProRenterv1/Renter-sub002/internal/bookings"
	"github.com/ProRenterv1/Renter-sub002/internal/users"
)

// PartyRole identifies who authored a message or opened a case.
type PartyRole string

const (
	RoleRenter PartyRole = "renter"
	RoleOwner  PartyRole = "owner"
	RoleAdmin  PartyRole = "admin"
	RoleSystem PartyRole = "system"
)

// Category classifies the complaint.
type Category string

const (
	CategoryDamage           Category = "damage"
	CategoryMissingItem      Category = "missing_item"
	CategoryNotAsDescribed   Category = "not_as_described"
	CategoryLateReturn       Category = "late_return"
	CategoryIncorrectCharges Category = "incorrect_charges"
	CategorySafetyOrFraud    Category = "safety_or_fraud"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryDamage, CategoryMissingItem, CategoryNotAsDescribed,
		CategoryLateReturn, CategoryIncorrectCharges, CategorySafetyOrFraud:
		return true
	}
	return false
}

// DamageFlowKind distinguishes the two damage intake flows.
type DamageFlowKind string

const (
	DamageFlowGeneric        DamageFlowKind = "generic"
	DamageFlowBrokeDuringUse DamageFlowKind = "broke_during_use"
)

// AVStatus is the malware scan state of an uploaded evidence object.
type AVStatus string

const (
	AVPending  AVStatus = "pending"
	AVClean    AVStatus = "clean"
	AVInfected AVStatus = "infected"
	AVFailed   AVStatus = "failed"
)

func (a AVStatus) IsValid() bool {
	switch a {
	case AVPending, AVClean, AVInfected, AVFailed:
		return true
	}
	return false
}

// VisibleToOpposingParty reports whether the evidence may appear in the
// other party's gallery. Infected and failed scans are never shown.
func (a AVStatus) VisibleToOpposingParty() bool {
	return a == AVPending || a == AVClean
}

// CountsTowardGating reports whether the evidence counts as "submitted"
// when deciding stage transitions.
func (a AVStatus) CountsTowardGating() bool {
	return a == AVPending || a == AVClean
}

// EvidenceKind is the media class of an upload.
type EvidenceKind string

const (
	EvidencePhoto EvidenceKind = "photo"
	EvidenceVideo EvidenceKind = "video"
	EvidenceOther EvidenceKind = "other"
)

// DisputeCase is a booking-scoped complaint tracked through the status
// graph to a financial resolution. Created once per complaint, never
// deleted.
type DisputeCase struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	BookingID uuid.UUID `json:"booking_id" gorm:"type:uuid;not null;index"`

	OpenedBy     uuid.UUID `json:"opened_by" gorm:"type:uuid;not null"`
	OpenedByRole PartyRole `json:"opened_by_role" gorm:"type:varchar(10);not null"`

	Category       Category       `json:"category" gorm:"type:varchar(30);not null"`
	DamageFlowKind DamageFlowKind `json:"damage_flow_kind,omitempty" gorm:"type:varchar(20)"`
	Description    string         `json:"description" gorm:"type:text;not null"`

	Status Status `json:"status" gorm:"type:varchar(30);not null;default:'open';index"`

	// Deadlines
	RebuttalDueAt       *time.Time `json:"rebuttal_due_at,omitempty"`
	RebuttalReceivedAt  *time.Time `json:"rebuttal_received_at,omitempty"`
	AutoRebuttalTimeout bool       `json:"auto_rebuttal_timeout" gorm:"not null;default:false"`
	EvidenceDueAt       *time.Time `json:"evidence_due_at,omitempty"`
	EvidenceDueTarget   string     `json:"evidence_due_target,omitempty" gorm:"type:varchar(10)"`
	AppealDueAt         *time.Time `json:"appeal_due_at,omitempty"`
	ReviewStartedAt     *time.Time `json:"review_started_at,omitempty"`
	ResolvedAt          *time.Time `json:"resolved_at,omitempty"`

	// Operator closure bookkeeping
	CloseReason CloseReason `json:"close_reason,omitempty" gorm:"type:varchar(20)"`
	CloseNotes  string      `json:"close_notes,omitempty" gorm:"type:text"`

	// Denormalized booking context captured at creation. The projection
	// falls back to the live booking row when these are empty.
	ListingTitle    string `json:"listing_title,omitempty" gorm:"type:varchar(200)"`
	ListingPhotoKey string `json:"listing_photo_key,omitempty" gorm:"type:varchar(255)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Booking    *bookings.Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
	Messages   []DisputeMessage  `json:"messages,omitempty" gorm:"foreignKey:DisputeID"`
	Evidence   []DisputeEvidence `json:"evidence,omitempty" gorm:"foreignKey:DisputeID"`
	Resolution *Resolution       `json:"resolution,omitempty" gorm:"foreignKey:DisputeID"`
}

func (DisputeCase) TableName() string {
	return "dispute_cases"
}

// RespondentRole is the party expected to rebut the complaint.
func (d *DisputeCase) RespondentRole() PartyRole {
	if d.OpenedByRole == RoleRenter {
		return RoleOwner
	}
	return RoleRenter
}

// PartyRoleOf maps a user to their role on this case, using the booking's
// renter/owner assignment.
func (d *DisputeCase) PartyRoleOf(userID uuid.UUID) (PartyRole, bool) {
	if d.Booking == nil {
		return "", false
	}
	switch userID {
	case d.Booking.RenterID:
		return RoleRenter, true
	case d.Booking.OwnerID:
		return RoleOwner, true
	}
	return "", false
}

// DisputeMessage is one append-only entry in the case conversation. Seq is
// the insertion tie-break for timeline entries sharing a timestamp.
type DisputeMessage struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	DisputeID uuid.UUID  `json:"dispute_id" gorm:"type:uuid;not null;index"`
	AuthorID  *uuid.UUID `json:"author_id,omitempty" gorm:"type:uuid"` // null for system
	Role      PartyRole  `json:"role" gorm:"type:varchar(10);not null"`
	Text      string     `json:"text" gorm:"type:text;not null"`
	Seq       int64      `json:"seq" gorm:"autoIncrement;uniqueIndex"`
	CreatedAt time.Time  `json:"created_at"`
}

func (DisputeMessage) TableName() string {
	return "dispute_messages"
}

// DisputeEvidence records one completed upload against a case.
type DisputeEvidence struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	DisputeID  uuid.UUID    `json:"dispute_id" gorm:"type:uuid;not null;index"`
	UploadedBy uuid.UUID    `json:"uploaded_by" gorm:"type:uuid;not null"`
	Kind       EvidenceKind `json:"kind" gorm:"type:varchar(10);not null"`

	StorageKey  string `json:"storage_key" gorm:"type:varchar(255);not null;uniqueIndex"`
	ETag        string `json:"etag" gorm:"type:varchar(100)"`
	Filename    string `json:"filename" gorm:"type:varchar(255);not null"`
	ContentType string `json:"content_type" gorm:"type:varchar(100)"`
	SizeBytes   int64  `json:"size_bytes" gorm:"not null"`

	Width          *int   `json:"width,omitempty"`
	Height         *int   `json:"height,omitempty"`
	OriginalSize   *int64 `json:"original_size,omitempty"`
	CompressedSize *int64 `json:"compressed_size,omitempty"`

	AVStatus AVStatus `json:"av_status" gorm:"type:varchar(10);not null;default:'pending';index"`

	Seq       int64     `json:"seq" gorm:"autoIncrement;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

func (DisputeEvidence) TableName() string {
	return "dispute_evidence"
}

// Resolution is the terminal financial decision, 1:1 with a resolved case.
type Resolution struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	DisputeID uuid.UUID `json:"dispute_id" gorm:"type:uuid;not null;uniqueIndex"`

	Decision            Decision `json:"decision" gorm:"type:varchar(10);not null"`
	RefundCents         int64    `json:"refund_cents" gorm:"not null"`
	DepositCaptureCents int64    `json:"deposit_capture_cents" gorm:"not null"`
	Reason              string   `json:"reason" gorm:"type:text;not null"`
	Notes               string   `json:"notes,omitempty" gorm:"type:text"`

	SuspendListing       bool `json:"suspend_listing" gorm:"not null;default:false"`
	MarkRenterSuspicious bool `json:"mark_renter_suspicious" gorm:"not null;default:false"`
	MarkOwnerSuspicious  bool `json:"mark_owner_suspicious" gorm:"not null;default:false"`

	ResolvedBy uuid.UUID `json:"resolved_by" gorm:"type:uuid;not null"`
	ResolvedAt time.Time `json:"resolved_at" gorm:"not null"`
}

func (Resolution) TableName() string {
	return "dispute_resolutions"
}

// BookingContext is the read-only booking projection attached to a case
// detail. Denormalized case fields win over the live booking row, first
// non-empty value taken, resolved once here rather than at every render
// site.
type BookingContext struct {
	BookingID        string         `json:"booking_id"`
	ListingID        string         `json:"listing_id,omitempty"`
	ListingTitle     string         `json:"listing_title,omitempty"`
	ListingPhotoKey  string         `json:"listing_photo_key,omitempty"`
	StartDate        *time.Time     `json:"start_date,omitempty"`
	EndDate          *time.Time     `json:"end_date,omitempty"`
	TotalCents       int64          `json:"total_cents"`
	DepositHoldCents int64          `json:"deposit_hold_cents"`
	Renter           *users.Summary `json:"renter,omitempty"`
	Owner            *users.Summary `json:"owner,omitempty"`
}

// ResolveBookingContext builds the projection with the fallback order:
// case-level denormalized fields first, then the booking relation.
func (d *DisputeCase) ResolveBookingContext() BookingContext {
	ctx := BookingContext{
		BookingID:       d.BookingID.String(),
		ListingTitle:    d.ListingTitle,
		ListingPhotoKey: d.ListingPhotoKey,
	}

	booking := d.Booking
	if booking == nil {
		return ctx
	}

	ctx.ListingID = booking.ListingID.String()
	ctx.StartDate = &booking.StartDate
	ctx.EndDate = &booking.EndDate
	ctx.TotalCents = booking.TotalCents
	ctx.DepositHoldCents = booking.DepositHoldCents

	if ctx.ListingTitle == "" && booking.Listing != nil {
		ctx.ListingTitle = booking.Listing.Title
	}
	if ctx.ListingPhotoKey == "" && booking.Listing != nil && len(booking.Listing.Photos) > 0 {
		ctx.ListingPhotoKey = booking.Listing.Photos[0].StorageKey
	}

	if booking.Renter != nil {
		summary := booking.Renter.Summarize()
		ctx.Renter = &summary
	}
	if booking.Owner != nil {
		summary := booking.Owner.Summarize()
		ctx.Owner = &summary
	}

	return ctx
}
