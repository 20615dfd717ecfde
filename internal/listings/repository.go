package listings

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ProRenterv1/Renter-sub002/pkg/money"
)

var ErrListingNotFound = errors.New("listing not found")

type Repository interface {
	Create(ctx context.Context, listing *Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	Update(ctx context.Context, listing *Listing) error
	List(ctx context.Context, query ListingListQuery) ([]Listing, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, reason string) error
	AddPhoto(ctx context.Context, photo *ListingPhoto) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, listing *Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	var listing Listing
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Photos").
		Where("id = ?", id).
		First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

func (r *repository) Update(ctx context.Context, listing *Listing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

func (r *repository) List(ctx context.Context, query ListingListQuery) ([]Listing, int64, error) {
	var results []Listing
	var totalCount int64

	// Set defaults
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).Model(&Listing{})
	baseQuery = r.applyFilters(baseQuery, query)

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("Owner").
		Preload("Photos").
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&results).Error

	return results, totalCount, err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, reason string) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}

	if status == StatusSuspended {
		updates["suspended_at"] = time.Now()
		updates["suspended_reason"] = reason
	}

	result := r.db.WithContext(ctx).
		Model(&Listing{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *repository) AddPhoto(ctx context.Context, photo *ListingPhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

// applyFilters applies query filters to the GORM query
func (r *repository) applyFilters(query *gorm.DB, filters ListingListQuery) *gorm.DB {
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}

	if filters.City != "" {
		query = query.Where("city ILIKE ?", filters.City)
	}

	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	if filters.MaxPrice != "" {
		if maxCents, err := money.ParseAmount(filters.MaxPrice); err == nil {
			query = query.Where("daily_price_cents <= ?", int64(maxCents))
		}
	}

	if filters.OwnerID != "" {
		if ownerID, err := uuid.Parse(filters.OwnerID); err == nil {
			query = query.Where("owner_id = ?", ownerID)
		}
	} else {
		// Public browsing only surfaces active listings; owners see all of
		// their own through the owner_id filter
		query = query.Where("status = ?", StatusActive)
	}

	return query
}

// CalculateTotalPages computes pagination page count
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
