package disputes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ProRenterv1/Renter-sub002/internal/bookings"
	"github.com/ProRenterv1/Renter-sub002/internal/listings"
	"github.com/ProRenterv1/Renter-sub002/internal/notifications"
	"github.com/ProRenterv1/Renter-sub002/internal/payments"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/config"
	"github.com/ProRenterv1/Renter-sub002/internal/shared/constants"
	"github.com/ProRenterv1/Renter-sub002/internal/uploads"
	"github.com/ProRenterv1/Renter-sub002/internal/users"
	"github.com/ProRenterv1/Renter-sub002/pkg/cache"
	"github.com/ProRenterv1/Renter-sub002/pkg/logger"
	"github.com/ProRenterv1/Renter-sub002/pkg/money"
)

var (
	ErrNotParty           = errors.New("user is not a party to this dispute")
	ErrDisputeExists      = errors.New("a dispute already exists for this booking")
	ErrBookingNotEligible = errors.New("disputes require a paid or completed booking")
	ErrInvalidCategory    = errors.New("invalid dispute category")
	ErrCaptureExceedsHold = errors.New("deposit capture exceeds the held amount")
	ErrDenyCarriesMoney   = errors.New("a denied resolution cannot move money")
)

type Service interface {
	CreateDispute(ctx context.Context, actorID uuid.UUID, req CreateDisputeRequest) (*DisputeResponse, error)
	GetDispute(ctx context.Context, id, actorID uuid.UUID, isOperator bool) (*DisputeResponse, error)
	ListDisputes(ctx context.Context, actorID uuid.UUID, isOperator bool, query DisputeListQuery) (*DisputeListResponse, error)

	AppendMessage(ctx context.Context, id, actorID uuid.UUID, isOperator bool, text string) (*DisputeResponse, error)
	PresignEvidence(ctx context.Context, id, actorID uuid.UUID, req PresignEvidenceRequest) (*PresignEvidenceResponse, error)
	CompleteEvidence(ctx context.Context, id, actorID uuid.UUID, req CompleteEvidenceRequest) (*CompleteEvidenceResponse, error)
	UpdateEvidenceAV(ctx context.Context, req AVCallbackRequest) error

	RequestMoreEvidence(ctx context.Context, id, operatorID uuid.UUID, req RequestEvidenceRequest) (*DisputeResponse, error)
	OpenReview(ctx context.Context, id, operatorID uuid.UUID) (*DisputeResponse, error)
	Resolve(ctx context.Context, id, operatorID uuid.UUID, req ResolveDisputeRequest) (*DisputeResponse, error)
	Close(ctx context.Context, id, operatorID uuid.UUID, req CloseDisputeRequest) (*DisputeResponse, error)
	Appeal(ctx context.Context, id, actorID uuid.UUID, isOperator bool, req AppealDisputeRequest) (*DisputeResponse, error)

	// Deadline expiry, called by the background job.
	ExpireRebuttals(ctx context.Context, now time.Time) (int, error)
	ExpireEvidenceRequests(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	repo          Repository
	bookingRepo   bookings.Repository
	userRepo      users.Repository
	payments      payments.Service
	signer        *uploads.Signer
	notifications notifications.NotificationService
	cache         cache.Service
	cfg           *config.Config
}

func NewService(
	repo Repository,
	bookingRepo bookings.Repository,
	userRepo users.Repository,
	paymentService payments.Service,
	signer *uploads.Signer,
	notificationService notifications.NotificationService,
	cacheService cache.Service,
	cfg *config.Config,
) Service {
	return &service{
		repo:          repo,
		bookingRepo:   bookingRepo,
		userRepo:      userRepo,
		payments:      paymentService,
		signer:        signer,
		notifications: notificationService,
		cache:         cacheService,
		cfg:           cfg,
	}
}

func (s *service) CreateDispute(ctx context.Context, actorID uuid.UUID, req CreateDisputeRequest) (*DisputeResponse, error) {
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking id: %w", err)
	}

	category := Category(req.Category)
	if !category.IsValid() {
		return nil, ErrInvalidCategory
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsParty(actorID) {
		return nil, ErrNotParty
	}
	if booking.Status != bookings.StatusPaid && booking.Status != bookings.StatusCompleted {
		return nil, ErrBookingNotEligible
	}

	exists, err := s.repo.ExistsForBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDisputeExists
	}

	openedByRole := RoleRenter
	if actorID == booking.OwnerID {
		openedByRole = RoleOwner
	}

	dispute := &DisputeCase{
		BookingID:    bookingID,
		OpenedBy:     actorID,
		OpenedByRole: openedByRole,
		Category:     category,
		Description:  req.Description,
		Status:       StatusOpen,
	}
	if req.DamageFlowKind != "" {
		dispute.DamageFlowKind = DamageFlowKind(req.DamageFlowKind)
	} else if category == CategoryDamage {
		dispute.DamageFlowKind = DamageFlowGeneric
	}

	// Capture booking context at creation so the case survives listing
	// edits unchanged
	if booking.Listing != nil {
		dispute.ListingTitle = booking.Listing.Title
		if len(booking.Listing.Photos) > 0 {
			dispute.ListingPhotoKey = booking.Listing.Photos[0].StorageKey
		}
	}

	if err := s.repo.Create(ctx, dispute); err != nil {
		return nil, fmt.Errorf("failed to create dispute: %w", err)
	}

	s.appendSystemMessage(ctx, dispute.ID, fmt.Sprintf("Dispute opened by %s: %s", openedByRole, category))

	logger.GetDefault().LogDisputeOpened(ctx, dispute.ID.String(), bookingID.String(), actorID.String())
	s.invalidateCaches(ctx, dispute.ID)

	respondentID := booking.RenterID
	if openedByRole == RoleRenter {
		respondentID = booking.OwnerID
	}
	s.notifyParty(ctx, dispute, respondentID, notifications.NotificationTypeDisputeOpened, map[string]interface{}{
		"listing_title": dispute.ListingTitle,
		"reason":        string(category),
	})

	return s.GetDispute(ctx, dispute.ID, actorID, false)
}

func (s *service) GetDispute(ctx context.Context, id, actorID uuid.UUID, isOperator bool) (*DisputeResponse, error) {
	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isOperator {
		if _, ok := dispute.PartyRoleOf(actorID); !ok {
			return nil, ErrNotParty
		}
	}

	evidence := FilterEvidenceForViewer(dispute.Evidence, actorID.String(), isOperator)
	resp := toResponse(dispute, evidence, true)
	return &resp, nil
}

func (s *service) ListDisputes(ctx context.Context, actorID uuid.UUID, isOperator bool, query DisputeListQuery) (*DisputeListResponse, error) {
	filter := ListFilter{
		Page:  query.Page,
		Limit: query.Limit,
	}
	if query.Status != "" {
		filter.Status = Status(query.Status)
	}
	if query.BookingID != "" {
		bookingID, err := uuid.Parse(query.BookingID)
		if err != nil {
			return nil, fmt.Errorf("invalid booking filter: %w", err)
		}
		filter.BookingID = &bookingID
	}
	if !isOperator {
		filter.PartyID = &actorID
	}

	results, totalCount, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list disputes: %w", err)
	}

	responses := make([]DisputeResponse, 0, len(results))
	for i := range results {
		responses = append(responses, toResponse(&results[i], nil, false))
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	return &DisputeListResponse{
		Disputes:   responses,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *service) AppendMessage(ctx context.Context, id, actorID uuid.UUID, isOperator bool, text string) (*DisputeResponse, error) {
	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role := RoleAdmin
	if !isOperator {
		partyRole, ok := dispute.PartyRoleOf(actorID)
		if !ok {
			return nil, ErrNotParty
		}
		if err := GuardPartyMutation(dispute.Status); err != nil {
			return nil, err
		}
		role = partyRole
	}

	message := &DisputeMessage{
		DisputeID: id,
		AuthorID:  &actorID,
		Role:      role,
		Text:      text,
	}
	if err := s.repo.AppendMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	// First reply from the respondent counts as the rebuttal
	if role == dispute.RespondentRole() && dispute.RebuttalReceivedAt == nil {
		_, err := s.repo.UpdateLocked(ctx, id, func(tx *gorm.DB, c *DisputeCase) error {
			if c.RebuttalReceivedAt == nil {
				now := time.Now()
				c.RebuttalReceivedAt = &now
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	s.invalidateCaches(ctx, id)
	return s.GetDispute(ctx, id, actorID, isOperator)
}

func (s *service) PresignEvidence(ctx context.Context, id, actorID uuid.UUID, req PresignEvidenceRequest) (*PresignEvidenceResponse, error) {
	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := dispute.PartyRoleOf(actorID); !ok {
		return nil, ErrNotParty
	}
	if err := GuardPartyMutation(dispute.Status); err != nil {
		return nil, err
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	prefix := fmt.Sprintf("disputes/%s/evidence", id)
	result, err := s.signer.Presign(prefix, req.Filename, contentType, req.Size)
	if err != nil {
		return nil, err
	}

	return &PresignEvidenceResponse{
		Key:       result.Key,
		UploadURL: result.UploadURL,
		Headers:   result.Headers,
		MaxBytes:  result.MaxBytes,
		Tagging:   fmt.Sprintf("dispute=%s&uploader=%s", id, actorID),
	}, nil
}

func (s *service) CompleteEvidence(ctx context.Context, id, actorID uuid.UUID, req CompleteEvidenceRequest) (*CompleteEvidenceResponse, error) {
	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	uploaderRole, ok := dispute.PartyRoleOf(actorID)
	if !ok {
		return nil, ErrNotParty
	}
	if err := GuardPartyMutation(dispute.Status); err != nil {
		return nil, err
	}

	evidence := &DisputeEvidence{
		DisputeID:      id,
		UploadedBy:     actorID,
		Kind:           EvidenceKind(req.Kind),
		StorageKey:     req.Key,
		ETag:           req.ETag,
		Filename:       req.Filename,
		ContentType:    req.ContentType,
		SizeBytes:      req.Size,
		Width:          req.Width,
		Height:         req.Height,
		OriginalSize:   req.OriginalSize,
		CompressedSize: req.CompressedSize,
		AVStatus:       AVPending,
	}
	if err := s.repo.AddEvidence(ctx, evidence); err != nil {
		return nil, fmt.Errorf("failed to record evidence: %w", err)
	}

	s.advanceAfterEvidence(ctx, dispute, uploaderRole)
	s.invalidateCaches(ctx, id)

	return &CompleteEvidenceResponse{
		Status: "recorded",
		Key:    req.Key,
		ID:     evidence.ID.String(),
	}, nil
}

// advanceAfterEvidence applies the intake policy after an upload: the
// filer's first evidence opens the rebuttal window, and evidence supplied
// against an intake request moves the case back into the rebuttal stage.
func (s *service) advanceAfterEvidence(ctx context.Context, dispute *DisputeCase, uploaderRole PartyRole) {
	filerUploaded := uploaderRole == dispute.OpenedByRole

	switch {
	case dispute.Status == StatusOpen && filerUploaded:
		s.startRebuttalWindow(ctx, dispute.ID, StatusOpen)

	case dispute.Status == StatusIntakeMissingEvidence &&
		(dispute.EvidenceDueTarget == "both" || string(uploaderRole) == dispute.EvidenceDueTarget):
		s.startRebuttalWindow(ctx, dispute.ID, StatusIntakeMissingEvidence)
	}
}

func (s *service) startRebuttalWindow(ctx context.Context, disputeID uuid.UUID, expected Status) {
	_, err := s.repo.TransitionStatus(ctx, disputeID, expected, StatusAwaitingRebuttal, func(tx *gorm.DB, c *DisputeCase) error {
		if c.RebuttalDueAt == nil {
			due := time.Now().Add(s.cfg.Disputes.RebuttalWindow)
			c.RebuttalDueAt = &due
		}
		c.EvidenceDueAt = nil
		c.EvidenceDueTarget = ""
		return tx.Create(&DisputeMessage{
			DisputeID: c.ID,
			Role:      RoleSystem,
			Text:      "Evidence received. Awaiting the other party's response.",
		}).Error
	})
	if err != nil {
		// A concurrent transition already advanced the case; nothing to do
		if !errors.Is(err, ErrStaleTransition) {
			logger.GetDefault().ErrorWithContext(ctx, "failed to open rebuttal window", err, map[string]interface{}{
				"dispute_id": disputeID.String(),
			})
		}
		return
	}

	logger.GetDefault().LogDisputeTransition(ctx, disputeID.String(), string(expected), string(StatusAwaitingRebuttal), "system")

	full, err := s.repo.GetByID(ctx, disputeID)
	if err != nil || full.Booking == nil || full.RebuttalDueAt == nil {
		return
	}
	respondentID := full.Booking.RenterID
	if full.OpenedByRole == RoleRenter {
		respondentID = full.Booking.OwnerID
	}
	s.notifyParty(ctx, full, respondentID, notifications.NotificationTypeRebuttalDue, map[string]interface{}{
		"due_at": full.RebuttalDueAt.Format(time.RFC3339),
	})
}

func (s *service) UpdateEvidenceAV(ctx context.Context, req AVCallbackRequest) error {
	status := AVStatus(req.Status)
	if !status.IsValid() {
		return fmt.Errorf("invalid av status %q", req.Status)
	}

	evidence, err := s.repo.GetEvidenceByKey(ctx, req.Key)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateEvidenceAV(ctx, req.Key, status); err != nil {
		return err
	}

	s.invalidateCaches(ctx, evidence.DisputeID)
	return nil
}

func (s *service) RequestMoreEvidence(ctx context.Context, id, operatorID uuid.UUID, req RequestEvidenceRequest) (*DisputeResponse, error) {
	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if dispute.Status.IsResolved() || dispute.Status.IsTerminal() {
		return nil, ErrCaseReadOnly
	}

	dueAt, err := s.parseDue(req.DueAt, s.cfg.Disputes.EvidenceWindow)
	if err != nil {
		return nil, err
	}

	narration := fmt.Sprintf("Evidence requested from %s, due %s: %s",
		req.Target, dueAt.Format(time.RFC3339), req.Message)

	targetsFiler := req.Target == "both" || req.Target == string(dispute.OpenedByRole)

	if dispute.Status == StatusOpen && targetsFiler {
		// Incomplete filing: the case formally enters intake
		_, err = s.repo.TransitionStatus(ctx, id, StatusOpen, StatusIntakeMissingEvidence, func(tx *gorm.DB, c *DisputeCase) error {
			c.EvidenceDueAt = &dueAt
			c.EvidenceDueTarget = req.Target
			return tx.Create(&DisputeMessage{
				DisputeID: c.ID,
				Role:      RoleSystem,
				Text:      narration,
			}).Error
		})
	} else {
		_, err = s.repo.UpdateLocked(ctx, id, func(tx *gorm.DB, c *DisputeCase) error {
			c.EvidenceDueAt = &dueAt
			c.EvidenceDueTarget = req.Target
			return tx.Create(&DisputeMessage{
				DisputeID: c.ID,
				Role:      RoleSystem,
				Text:      narration,
			}).Error
		})
	}
	if err != nil {
		return nil, err
	}

	s.invalidateCaches(ctx, id)

	if req.Notify {
		full, err := s.repo.GetByID(ctx, id)
		if err == nil && full.Booking != nil {
			data := map[string]interface{}{
				"message": req.Message,
				"due_at":  dueAt.Format(time.RFC3339),
			}
			if req.Target == "both" || req.Target == "renter" {
				s.notifyParty(ctx, full, full.Booking.RenterID, notifications.NotificationTypeEvidenceRequested, data)
			}
			if req.Target == "both" || req.Target == "owner" {
				s.notifyParty(ctx, full, full.Booking.OwnerID, notifications.NotificationTypeEvidenceRequested, data)
			}
		}
	}

	return s.GetDispute(ctx, id, operatorID, true)
}

func (s *service) OpenReview(ctx context.Context, id, operatorID uuid.UUID) (*DisputeResponse, error) {
	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := GuardOpenReview(dispute); err != nil {
		return nil, err
	}

	from := dispute.Status
	_, err = s.repo.TransitionStatus(ctx, id, from, StatusUnderReview, func(tx *gorm.DB, c *DisputeCase) error {
		now := time.Now()
		c.ReviewStartedAt = &now
		return tx.Create(&DisputeMessage{
			DisputeID: c.ID,
			Role:      RoleSystem,
			Text:      "Case moved to operator review.",
		}).Error
	})
	if err != nil {
		return nil, err
	}

	logger.GetDefault().LogDisputeTransition(ctx, id.String(), string(from), string(StatusUnderReview), operatorID.String())
	s.invalidateCaches(ctx, id)
	s.notifyBothParties(ctx, id, notifications.NotificationTypeDisputeUnderReview, nil)

	return s.GetDispute(ctx, id, operatorID, true)
}

func (s *service) Resolve(ctx context.Context, id, operatorID uuid.UUID, req ResolveDisputeRequest) (*DisputeResponse, error) {
	if req.ConfirmToken != ConfirmTokenResolve {
		return nil, ErrBadConfirmToken
	}
	if req.Reason == "" {
		return nil, ErrReasonRequired
	}

	decision := Decision(req.Decision)
	refundCents, err := parseOptionalAmount(req.RefundAmount)
	if err != nil {
		return nil, fmt.Errorf("refund_amount: %w", err)
	}
	captureCents, err := parseOptionalAmount(req.DepositCaptureAmount)
	if err != nil {
		return nil, fmt.Errorf("deposit_capture_amount: %w", err)
	}

	if decision == DecisionDeny && (refundCents > 0 || captureCents > 0) {
		return nil, ErrDenyCarriesMoney
	}

	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	target, err := GuardResolve(dispute.Status, decision)
	if err != nil {
		return nil, err
	}

	if dispute.Booking != nil && int64(captureCents) > dispute.Booking.DepositHoldCents {
		return nil, ErrCaptureExceedsHold
	}

	from := dispute.Status
	booking := dispute.Booking

	_, err = s.repo.TransitionStatus(ctx, id, from, target, func(tx *gorm.DB, c *DisputeCase) error {
		now := time.Now()
		c.ResolvedAt = &now

		resolution := &Resolution{
			DisputeID:            c.ID,
			Decision:             decision,
			RefundCents:          int64(refundCents),
			DepositCaptureCents:  int64(captureCents),
			Reason:               req.Reason,
			Notes:                req.Notes,
			SuspendListing:       req.SuspendListing,
			MarkRenterSuspicious: req.MarkRenterSuspicious,
			MarkOwnerSuspicious:  req.MarkOwnerSuspicious,
			ResolvedBy:           operatorID,
			ResolvedAt:           now,
		}
		if err := tx.Create(resolution).Error; err != nil {
			return fmt.Errorf("failed to persist resolution: %w", err)
		}

		// Denied complaints move no money and leave the deposit hold to
		// the booking lifecycle
		if decision != DecisionDeny {
			err := s.payments.ApplyResolution(ctx, tx, payments.ResolutionEffects{
				BookingID:    c.BookingID,
				DisputeID:    c.ID,
				RefundCents:  int64(refundCents),
				CaptureCents: int64(captureCents),
				Reason:       req.Reason,
			})
			if err != nil {
				return err
			}
		}

		if req.SuspendListing && booking != nil {
			now := time.Now()
			err := tx.Model(&listings.Listing{}).
				Where("id = ?", booking.ListingID).
				Updates(map[string]interface{}{
					"status":           listings.StatusSuspended,
					"suspended_at":     now,
					"suspended_reason": fmt.Sprintf("dispute %s: %s", c.ID, req.Reason),
				}).Error
			if err != nil {
				return fmt.Errorf("failed to suspend listing: %w", err)
			}
		}

		if booking != nil {
			if req.MarkRenterSuspicious {
				if err := s.userRepo.FlagSuspicious(ctx, tx, booking.RenterID); err != nil {
					return fmt.Errorf("failed to flag renter: %w", err)
				}
			}
			if req.MarkOwnerSuspicious {
				if err := s.userRepo.FlagSuspicious(ctx, tx, booking.OwnerID); err != nil {
					return fmt.Errorf("failed to flag owner: %w", err)
				}
			}
		}

		return tx.Create(&DisputeMessage{
			DisputeID: c.ID,
			Role:      RoleSystem,
			Text: fmt.Sprintf("Case resolved: decision=%s, refund=%s, deposit captured=%s. %s",
				decision, refundCents.Format(), captureCents.Format(), req.Reason),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	logger.GetDefault().LogDisputeTransition(ctx, id.String(), string(from), string(target), operatorID.String())
	s.invalidateCaches(ctx, id)
	s.notifyBothParties(ctx, id, notifications.NotificationTypeDisputeResolved, map[string]interface{}{
		"decision":         string(decision),
		"refund":           refundCents.Format(),
		"deposit_captured": captureCents.Format(),
	})

	return s.GetDispute(ctx, id, operatorID, true)
}

func (s *service) Close(ctx context.Context, id, operatorID uuid.UUID, req CloseDisputeRequest) (*DisputeResponse, error) {
	if req.ConfirmToken != ConfirmTokenClose {
		return nil, ErrBadConfirmToken
	}
	reason := CloseReason(req.Reason)
	if !reason.IsValid() {
		return nil, ErrReasonRequired
	}

	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := dispute.Status
	_, err = s.repo.TransitionStatus(ctx, id, from, StatusClosedAuto, func(tx *gorm.DB, c *DisputeCase) error {
		c.CloseReason = reason
		c.CloseNotes = req.Notes
		return tx.Create(&DisputeMessage{
			DisputeID: c.ID,
			Role:      RoleSystem,
			Text:      fmt.Sprintf("Case closed by operator: %s. %s", reason, req.Notes),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	logger.GetDefault().LogDisputeTransition(ctx, id.String(), string(from), string(StatusClosedAuto), operatorID.String())
	s.invalidateCaches(ctx, id)
	s.notifyBothParties(ctx, id, notifications.NotificationTypeDisputeClosed, map[string]interface{}{
		"reason": string(reason),
	})

	return s.GetDispute(ctx, id, operatorID, true)
}

func (s *service) Appeal(ctx context.Context, id, actorID uuid.UUID, isOperator bool, req AppealDisputeRequest) (*DisputeResponse, error) {
	if req.Reason == "" {
		return nil, ErrReasonRequired
	}

	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isOperator {
		if _, ok := dispute.PartyRoleOf(actorID); !ok {
			return nil, ErrNotParty
		}
	}

	if err := GuardAppeal(dispute.Status); err != nil {
		return nil, err
	}

	dueAt, err := s.parseDue(req.DueAt, s.cfg.Disputes.AppealWindow)
	if err != nil {
		return nil, err
	}

	from := dispute.Status
	_, err = s.repo.TransitionStatus(ctx, id, from, StatusAppealed, func(tx *gorm.DB, c *DisputeCase) error {
		c.AppealDueAt = &dueAt
		return tx.Create(&DisputeMessage{
			DisputeID: c.ID,
			Role:      RoleSystem,
			Text:      fmt.Sprintf("Resolution appealed: %s", req.Reason),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	logger.GetDefault().LogDisputeTransition(ctx, id.String(), string(from), string(StatusAppealed), actorID.String())
	s.invalidateCaches(ctx, id)
	s.notifyBothParties(ctx, id, notifications.NotificationTypeDisputeAppealed, map[string]interface{}{
		"reason": req.Reason,
	})

	return s.GetDispute(ctx, id, actorID, isOperator)
}

// ExpireRebuttals advances cases whose rebuttal window elapsed silently:
// the respondent forfeits and the case defaults to the filer's claim in
// review. The status-guarded transition makes a second firing a no-op.
func (s *service) ExpireRebuttals(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.ListExpiredRebuttals(ctx, now, 100)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range expired {
		disputeID := expired[i].ID
		_, err := s.repo.TransitionStatus(ctx, disputeID, StatusAwaitingRebuttal, StatusUnderReview, func(tx *gorm.DB, c *DisputeCase) error {
			reviewStart := time.Now()
			c.AutoRebuttalTimeout = true
			c.ReviewStartedAt = &reviewStart
			return tx.Create(&DisputeMessage{
				DisputeID: c.ID,
				Role:      RoleSystem,
				Text:      "Rebuttal window elapsed with no response. Case moved to review.",
			}).Error
		})
		if err != nil {
			if errors.Is(err, ErrStaleTransition) {
				continue
			}
			return processed, err
		}

		logger.GetDefault().LogDeadlineExpired(ctx, disputeID.String(), "rebuttal_timeout")
		s.invalidateCaches(ctx, disputeID)
		s.notifyBothParties(ctx, disputeID, notifications.NotificationTypeDisputeUnderReview, nil)
		processed++
	}
	return processed, nil
}

// ExpireEvidenceRequests closes cases where the filer never supplied the
// requested evidence.
func (s *service) ExpireEvidenceRequests(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.ListExpiredEvidenceRequests(ctx, now, 100)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range expired {
		disputeID := expired[i].ID
		_, err := s.repo.TransitionStatus(ctx, disputeID, StatusIntakeMissingEvidence, StatusClosedAuto, func(tx *gorm.DB, c *DisputeCase) error {
			c.CloseReason = CloseReasonNoEvidence
			c.CloseNotes = "Requested evidence was not provided by the due date."
			return tx.Create(&DisputeMessage{
				DisputeID: c.ID,
				Role:      RoleSystem,
				Text:      "Evidence due date passed with nothing submitted. Case closed.",
			}).Error
		})
		if err != nil {
			if errors.Is(err, ErrStaleTransition) {
				continue
			}
			return processed, err
		}

		logger.GetDefault().LogDeadlineExpired(ctx, disputeID.String(), "no_evidence")
		s.invalidateCaches(ctx, disputeID)
		s.notifyBothParties(ctx, disputeID, notifications.NotificationTypeDisputeClosed, map[string]interface{}{
			"reason": string(CloseReasonNoEvidence),
		})
		processed++
	}
	return processed, nil
}

func (s *service) parseDue(raw string, fallback time.Duration) (time.Time, error) {
	if raw == "" {
		return time.Now().Add(fallback), nil
	}
	dueAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due_at: %w", err)
	}
	return dueAt, nil
}

func (s *service) appendSystemMessage(ctx context.Context, disputeID uuid.UUID, text string) {
	err := s.repo.AppendMessage(ctx, &DisputeMessage{
		DisputeID: disputeID,
		Role:      RoleSystem,
		Text:      text,
	})
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to append system message", err, map[string]interface{}{
			"dispute_id": disputeID.String(),
		})
	}
}

func (s *service) notifyBothParties(ctx context.Context, disputeID uuid.UUID, notType notifications.NotificationType, data map[string]interface{}) {
	dispute, err := s.repo.GetByID(ctx, disputeID)
	if err != nil || dispute.Booking == nil {
		return
	}
	s.notifyParty(ctx, dispute, dispute.Booking.RenterID, notType, data)
	s.notifyParty(ctx, dispute, dispute.Booking.OwnerID, notType, data)
}

// notifyParty is fire-and-forget: the state machine never blocks on
// delivery.
func (s *service) notifyParty(ctx context.Context, dispute *DisputeCase, recipientID uuid.UUID, notType notifications.NotificationType, data map[string]interface{}) {
	recipient, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to load dispute notification recipient", err, map[string]interface{}{
			"dispute_id": dispute.ID.String(),
		})
		return
	}

	if data == nil {
		data = map[string]interface{}{}
	}
	if _, ok := data["listing_title"]; !ok && dispute.ListingTitle != "" {
		data["listing_title"] = dispute.ListingTitle
	}

	err = s.notifications.SendDisputeNotification(ctx, recipient.ID, recipient.Email,
		recipient.FirstName, dispute.ID, dispute.BookingID, notType, data)
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to publish dispute notification", err, map[string]interface{}{
			"dispute_id": dispute.ID.String(),
			"type":       string(notType),
		})
	}
}

func (s *service) invalidateCaches(ctx context.Context, disputeID uuid.UUID) {
	if err := s.cache.Delete(ctx, constants.BuildDisputeDetailKey(disputeID.String())); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to invalidate dispute cache", err, map[string]interface{}{
			"dispute_id": disputeID.String(),
		})
	}
	if err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_DISPUTES_ALL); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to invalidate dispute list caches", err, nil)
	}
}

// parseOptionalAmount treats the empty string as zero; negative and
// malformed inputs are rejected, never clamped.
func parseOptionalAmount(raw string) (money.Cents, error) {
	if raw == "" {
		return 0, nil
	}
	return money.ParseAmount(raw)
}
