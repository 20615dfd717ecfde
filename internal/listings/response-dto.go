package listings

import (
	"time"

	"github.com/ProRenterv1/Renter-sub002/internal/users"
	"github.com/ProRenterv1/Renter-sub002/pkg/money"
)

type ListingResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	City        string         `json:"city,omitempty"`
	DailyPrice  string         `json:"daily_price"`
	Deposit     string         `json:"deposit"`
	Status      string         `json:"status"`
	Owner       *users.Summary `json:"owner,omitempty"`
	PhotoKeys   []string       `json:"photo_keys,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type ListingListResponse struct {
	Listings   []ListingResponse `json:"listings"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// ToResponse converts a listing to its API projection. Money fields leave
// cents only here, at the boundary.
func (l *Listing) ToResponse() ListingResponse {
	resp := ListingResponse{
		ID:          l.ID.String(),
		Title:       l.Title,
		Description: l.Description,
		Category:    l.Category,
		City:        l.City,
		DailyPrice:  money.Cents(l.DailyPriceCents).Format(),
		Deposit:     money.Cents(l.DepositCents).Format(),
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}

	if l.Owner != nil {
		summary := l.Owner.Summarize()
		resp.Owner = &summary
	}

	for _, photo := range l.Photos {
		resp.PhotoKeys = append(resp.PhotoKeys, photo.StorageKey)
	}

	return resp
}
