package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTL values for the ProRenter backend.
// Pattern: prorenter:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Static data (long TTL: rarely changes)
const (
	TTL_STATIC_LONG  = 24 * time.Hour
	TTL_STATIC_SHORT = 6 * time.Hour
)

// Semi-static data (medium TTL: changes occasionally)
const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour
	TTL_SEMI_STATIC_SHORT  = 1 * time.Hour
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute
)

// Dynamic data (short TTL: changes frequently)
const (
	TTL_DYNAMIC_MEDIUM = 10 * time.Minute
	TTL_DYNAMIC_SHORT  = 5 * time.Minute
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "prorenter"
)

// ================== LISTINGS MODULE ==================

const (
	CACHE_KEY_LISTINGS_LIST   = CACHE_PREFIX + ":listings:list"         // + :page:X:limit:Y:category:Z
	CACHE_KEY_LISTING_DETAIL  = CACHE_PREFIX + ":listings:detail:uuid:" // + listing-id
	CACHE_KEY_LISTINGS_SEARCH = CACHE_PREFIX + ":listings:search"       // + :query:X:page:Y
)

const (
	TTL_LISTING_LIST   = TTL_SEMI_STATIC_SHORT // 1 hour
	TTL_LISTING_DETAIL = TTL_SEMI_STATIC_MEDIUM
	TTL_LISTING_SEARCH = TTL_SEMI_STATIC_QUICK
)

// ================== BOOKINGS MODULE ==================

const (
	CACHE_KEY_USER_BOOKINGS  = CACHE_PREFIX + ":bookings:user:uuid:"   // + user-id:page:X
	CACHE_KEY_BOOKING_DETAIL = CACHE_PREFIX + ":bookings:detail:uuid:" // + booking-id
)

const (
	TTL_USER_BOOKINGS  = TTL_DYNAMIC_MEDIUM
	TTL_BOOKING_DETAIL = TTL_DYNAMIC_MEDIUM
)

// ================== DISPUTES MODULE ==================

// Dispute detail is intentionally short-lived: operator actions and
// scheduler expiries both mutate cases out of band.
const (
	CACHE_KEY_DISPUTE_DETAIL = CACHE_PREFIX + ":disputes:detail:uuid:" // + dispute-id
	CACHE_KEY_DISPUTE_LIST   = CACHE_PREFIX + ":disputes:list"         // + :booking:X / :user:X
)

const (
	TTL_DISPUTE_DETAIL = TTL_DYNAMIC_SHORT
	TTL_DISPUTE_LIST   = TTL_DYNAMIC_SHORT
)

// ================== AUTH MODULE ==================

const (
	CACHE_KEY_USER_PROFILE = CACHE_PREFIX + ":auth:user:profile:uuid:" // + user-id
)

const (
	TTL_USER_PROFILE = TTL_STATIC_SHORT
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_LISTINGS_ALL = CACHE_PREFIX + ":listings:*"
	PATTERN_INVALIDATE_BOOKINGS_ALL = CACHE_PREFIX + ":bookings:*"
	PATTERN_INVALIDATE_DISPUTES_ALL = CACHE_PREFIX + ":disputes:*"
)

// ================== HELPER FUNCTIONS ==================

func BuildListingListKey(page, limit int, category string) string {
	if category != "" {
		return fmt.Sprintf("%s:page:%d:limit:%d:category:%s", CACHE_KEY_LISTINGS_LIST, page, limit, category)
	}
	return fmt.Sprintf("%s:page:%d:limit:%d", CACHE_KEY_LISTINGS_LIST, page, limit)
}

func BuildListingDetailKey(listingID string) string {
	return CACHE_KEY_LISTING_DETAIL + listingID
}

func BuildBookingDetailKey(bookingID string) string {
	return CACHE_KEY_BOOKING_DETAIL + bookingID
}

func BuildUserBookingsKey(userID string, page int) string {
	return fmt.Sprintf("%s%s:page:%d", CACHE_KEY_USER_BOOKINGS, userID, page)
}

func BuildDisputeDetailKey(disputeID string) string {
	return CACHE_KEY_DISPUTE_DETAIL + disputeID
}
