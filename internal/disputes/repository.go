package disputes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDisputeNotFound  = errors.New("dispute case not found")
	ErrEvidenceNotFound = errors.New("evidence not found")
	// ErrStaleTransition means the case moved out of the expected status
	// while the request was in flight; the caller should reload and retry.
	ErrStaleTransition = errors.New("dispute status changed concurrently")
)

type ListFilter struct {
	BookingID *uuid.UUID
	Status    Status
	// PartyID scopes the list to cases whose booking involves this user.
	// Nil for operator listings.
	PartyID *uuid.UUID
	Page    int
	Limit   int
}

type Repository interface {
	Create(ctx context.Context, dispute *DisputeCase) error
	GetByID(ctx context.Context, id uuid.UUID) (*DisputeCase, error)
	List(ctx context.Context, filter ListFilter) ([]DisputeCase, int64, error)
	ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error)

	AppendMessage(ctx context.Context, message *DisputeMessage) error
	AddEvidence(ctx context.Context, evidence *DisputeEvidence) error
	GetEvidenceByKey(ctx context.Context, storageKey string) (*DisputeEvidence, error)
	UpdateEvidenceAV(ctx context.Context, storageKey string, status AVStatus) error

	// TransitionStatus locks the case row, verifies it is still in the
	// expected status, validates the edge, applies the mutation, and
	// commits. The apply callback runs inside the transaction so
	// resolution rows, financial effects, and the status change are one
	// atomic unit.
	TransitionStatus(ctx context.Context, id uuid.UUID, expected, next Status, apply func(tx *gorm.DB, c *DisputeCase) error) (*DisputeCase, error)

	// UpdateLocked mutates case fields without a status change, under the
	// same row lock discipline.
	UpdateLocked(ctx context.Context, id uuid.UUID, apply func(tx *gorm.DB, c *DisputeCase) error) (*DisputeCase, error)

	// Deadline scans for the expiry job.
	ListExpiredRebuttals(ctx context.Context, now time.Time, limit int) ([]DisputeCase, error)
	ListExpiredEvidenceRequests(ctx context.Context, now time.Time, limit int) ([]DisputeCase, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, dispute *DisputeCase) error {
	return r.db.WithContext(ctx).Create(dispute).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*DisputeCase, error) {
	var dispute DisputeCase
	err := r.db.WithContext(ctx).
		Preload("Booking").
		Preload("Booking.Listing").
		Preload("Booking.Renter").
		Preload("Booking.Owner").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, seq ASC")
		}).
		Preload("Evidence", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, seq ASC")
		}).
		Preload("Resolution").
		Where("id = ?", id).
		First(&dispute).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDisputeNotFound
		}
		return nil, err
	}
	return &dispute, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]DisputeCase, int64, error) {
	var results []DisputeCase
	var totalCount int64

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	query := r.db.WithContext(ctx).Model(&DisputeCase{})

	if filter.BookingID != nil {
		query = query.Where("booking_id = ?", *filter.BookingID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PartyID != nil {
		query = query.
			Joins("JOIN bookings ON bookings.id = dispute_cases.booking_id").
			Where("bookings.renter_id = ? OR bookings.owner_id = ?", *filter.PartyID, *filter.PartyID)
	}

	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.
		Preload("Booking").
		Preload("Booking.Listing").
		Order("dispute_cases.created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&results).Error

	return results, totalCount, err
}

func (r *repository) ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&DisputeCase{}).
		Where("booking_id = ?", bookingID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) AppendMessage(ctx context.Context, message *DisputeMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repository) AddEvidence(ctx context.Context, evidence *DisputeEvidence) error {
	return r.db.WithContext(ctx).Create(evidence).Error
}

func (r *repository) GetEvidenceByKey(ctx context.Context, storageKey string) (*DisputeEvidence, error) {
	var evidence DisputeEvidence
	err := r.db.WithContext(ctx).Where("storage_key = ?", storageKey).First(&evidence).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEvidenceNotFound
		}
		return nil, err
	}
	return &evidence, nil
}

func (r *repository) UpdateEvidenceAV(ctx context.Context, storageKey string, status AVStatus) error {
	result := r.db.WithContext(ctx).
		Model(&DisputeEvidence{}).
		Where("storage_key = ?", storageKey).
		Update("av_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEvidenceNotFound
	}
	return nil
}

func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, expected, next Status, apply func(tx *gorm.DB, c *DisputeCase) error) (*DisputeCase, error) {
	var dispute DisputeCase

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&dispute).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDisputeNotFound
			}
			return err
		}

		if dispute.Status != expected {
			return ErrStaleTransition
		}
		if err := ValidateTransition(dispute.Status, next); err != nil {
			return err
		}

		dispute.Status = next
		dispute.UpdatedAt = time.Now()
		if apply != nil {
			if err := apply(tx, &dispute); err != nil {
				return err
			}
		}

		return tx.Save(&dispute).Error
	})
	if err != nil {
		return nil, err
	}
	return &dispute, nil
}

func (r *repository) UpdateLocked(ctx context.Context, id uuid.UUID, apply func(tx *gorm.DB, c *DisputeCase) error) (*DisputeCase, error) {
	var dispute DisputeCase

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&dispute).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDisputeNotFound
			}
			return err
		}

		dispute.UpdatedAt = time.Now()
		if err := apply(tx, &dispute); err != nil {
			return err
		}

		return tx.Save(&dispute).Error
	})
	if err != nil {
		return nil, err
	}
	return &dispute, nil
}

func (r *repository) ListExpiredRebuttals(ctx context.Context, now time.Time, limit int) ([]DisputeCase, error) {
	var results []DisputeCase
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusAwaitingRebuttal).
		Where("rebuttal_due_at IS NOT NULL AND rebuttal_due_at < ?", now).
		Where("rebuttal_received_at IS NULL").
		Where("auto_rebuttal_timeout = ?", false).
		Limit(limit).
		Find(&results).Error
	return results, err
}

func (r *repository) ListExpiredEvidenceRequests(ctx context.Context, now time.Time, limit int) ([]DisputeCase, error) {
	var results []DisputeCase
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusIntakeMissingEvidence).
		Where("evidence_due_at IS NOT NULL AND evidence_due_at < ?", now).
		Limit(limit).
		Find(&results).Error
	return results, err
}
