package listings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ProRenterv1/Renter-sub002/internal/shared/constants"
	"github.com/ProRenterv1/Renter-sub002/pkg/cache"
	"github.com/ProRenterv1/Renter-sub002/pkg/logger"
	"github.com/ProRenterv1/Renter-sub002/pkg/money"
)

var (
	ErrInvalidCategory = errors.New("invalid listing category")
	ErrNotOwner        = errors.New("only the owner can modify this listing")
	ErrListingInactive = errors.New("listing is not active")
)

type Service interface {
	CreateListing(ctx context.Context, ownerID uuid.UUID, req CreateListingRequest) (*ListingResponse, error)
	GetListing(ctx context.Context, id uuid.UUID) (*ListingResponse, error)
	UpdateListing(ctx context.Context, id, actorID uuid.UUID, req UpdateListingRequest) (*ListingResponse, error)
	ListListings(ctx context.Context, query ListingListQuery) (*ListingListResponse, error)
	SuspendListing(ctx context.Context, id uuid.UUID, reason string) error
	DelistListing(ctx context.Context, id, actorID uuid.UUID) error
	AddPhoto(ctx context.Context, id, actorID uuid.UUID, storageKey string) error
}

type service struct {
	repo  Repository
	cache cache.Service
}

func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{
		repo:  repo,
		cache: cacheService,
	}
}

func (s *service) CreateListing(ctx context.Context, ownerID uuid.UUID, req CreateListingRequest) (*ListingResponse, error) {
	if !IsValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}

	dailyPrice, err := money.ParseAmount(req.DailyPrice)
	if err != nil {
		return nil, fmt.Errorf("daily_price: %w", err)
	}

	var deposit money.Cents
	if req.Deposit != "" {
		deposit, err = money.ParseAmount(req.Deposit)
		if err != nil {
			return nil, fmt.Errorf("deposit: %w", err)
		}
	}

	listing := &Listing{
		OwnerID:         ownerID,
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		City:            req.City,
		DailyPriceCents: int64(dailyPrice),
		DepositCents:    int64(deposit),
		Status:          StatusActive,
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.invalidateListCaches(ctx)

	created, err := s.repo.GetByID(ctx, listing.ID)
	if err != nil {
		return nil, err
	}

	resp := created.ToResponse()
	return &resp, nil
}

func (s *service) GetListing(ctx context.Context, id uuid.UUID) (*ListingResponse, error) {
	cacheKey := constants.BuildListingDetailKey(id.String())

	var resp ListingResponse
	err := s.cache.GetOrSet(ctx, cacheKey, constants.TTL_LISTING_DETAIL, func() (interface{}, error) {
		listing, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return listing.ToResponse(), nil
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *service) UpdateListing(ctx context.Context, id, actorID uuid.UUID, req UpdateListingRequest) (*ListingResponse, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != actorID {
		return nil, ErrNotOwner
	}

	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Category != nil {
		if !IsValidCategory(*req.Category) {
			return nil, ErrInvalidCategory
		}
		listing.Category = *req.Category
	}
	if req.City != nil {
		listing.City = *req.City
	}
	if req.DailyPrice != nil {
		price, err := money.ParseAmount(*req.DailyPrice)
		if err != nil {
			return nil, fmt.Errorf("daily_price: %w", err)
		}
		listing.DailyPriceCents = int64(price)
	}
	if req.Deposit != nil {
		deposit, err := money.ParseAmount(*req.Deposit)
		if err != nil {
			return nil, fmt.Errorf("deposit: %w", err)
		}
		listing.DepositCents = int64(deposit)
	}

	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}

	s.invalidateDetailCache(ctx, id)
	s.invalidateListCaches(ctx)

	resp := listing.ToResponse()
	return &resp, nil
}

func (s *service) ListListings(ctx context.Context, query ListingListQuery) (*ListingListResponse, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 10
	}

	listings, totalCount, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}

	responses := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		responses = append(responses, listings[i].ToResponse())
	}

	return &ListingListResponse{
		Listings:   responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: CalculateTotalPages(totalCount, query.Limit),
	}, nil
}

// SuspendListing takes a listing off the marketplace. Called by operators
// directly and as a resolution side effect when an item is found damaged.
func (s *service) SuspendListing(ctx context.Context, id uuid.UUID, reason string) error {
	if err := s.repo.UpdateStatus(ctx, id, StatusSuspended, reason); err != nil {
		return err
	}

	logger.GetDefault().InfoWithContext(ctx, "listing suspended", map[string]interface{}{
		"listing_id": id.String(),
		"reason":     reason,
	})

	s.invalidateDetailCache(ctx, id)
	s.invalidateListCaches(ctx)
	return nil
}

func (s *service) DelistListing(ctx context.Context, id, actorID uuid.UUID) error {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.OwnerID != actorID {
		return ErrNotOwner
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusDelisted, ""); err != nil {
		return err
	}

	s.invalidateDetailCache(ctx, id)
	s.invalidateListCaches(ctx)
	return nil
}

func (s *service) AddPhoto(ctx context.Context, id, actorID uuid.UUID, storageKey string) error {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.OwnerID != actorID {
		return ErrNotOwner
	}

	photo := &ListingPhoto{
		ListingID:  id,
		StorageKey: storageKey,
		Position:   len(listing.Photos),
	}
	if err := s.repo.AddPhoto(ctx, photo); err != nil {
		return fmt.Errorf("failed to add photo: %w", err)
	}

	s.invalidateDetailCache(ctx, id)
	return nil
}

func (s *service) invalidateDetailCache(ctx context.Context, id uuid.UUID) {
	key := constants.BuildListingDetailKey(id.String())
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to invalidate listing cache", err, map[string]interface{}{
			"listing_id": id.String(),
		})
	}
}

func (s *service) invalidateListCaches(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, constants.PATTERN_INVALIDATE_LISTINGS_ALL); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to invalidate listing list caches", err, nil)
	}
}
