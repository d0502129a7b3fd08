package query

import (
	"context"
	"fmt"
	"time"

	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
	"github.com/tair/restaurant-discovery/internal/restaurant/rating"
)

// DetailCache stores the caller-independent part of a detail payload
type DetailCache interface {
	Get(ctx context.Context, restaurantID uint, dest interface{}) bool
	Set(ctx context.Context, restaurantID uint, value interface{})
}

// GetRestaurantQuery represents the restaurant detail query
type GetRestaurantQuery struct {
	RestaurantID uint
	UserID       uint
	Now          time.Time
}

// RestaurantDetail is the full detail payload of a restaurant
type RestaurantDetail struct {
	Restaurant  domain.Restaurant   `json:"restaurant"`
	RatingStats rating.Distribution `json:"rating_stats"`
	IsOpenNow   bool                `json:"is_open_now"`
	Bookmarked  bool                `json:"bookmarked"`
	Visited     bool                `json:"visited"`
}

type cachedDetail struct {
	Restaurant  domain.Restaurant   `json:"restaurant"`
	RatingStats rating.Distribution `json:"rating_stats"`
}

// GetRestaurantHandler handles the restaurant detail query
type GetRestaurantHandler struct {
	restaurants domain.RestaurantRepository
	reviews     domain.ReviewRepository
	bookmarks   domain.BookmarkRepository
	visits      domain.VisitedRepository
	cache       DetailCache
}

// NewGetRestaurantHandler creates a new get restaurant handler
func NewGetRestaurantHandler(
	restaurants domain.RestaurantRepository,
	reviews domain.ReviewRepository,
	bookmarks domain.BookmarkRepository,
	visits domain.VisitedRepository,
	cache DetailCache,
) *GetRestaurantHandler {
	return &GetRestaurantHandler{
		restaurants: restaurants,
		reviews:     reviews,
		bookmarks:   bookmarks,
		visits:      visits,
		cache:       cache,
	}
}

// Handle executes the get restaurant query
func (h *GetRestaurantHandler) Handle(ctx context.Context, query GetRestaurantQuery) (*RestaurantDetail, error) {
	var base cachedDetail
	if !h.cache.Get(ctx, query.RestaurantID, &base) {
		restaurant, err := h.restaurants.FindByID(ctx, query.RestaurantID)
		if err != nil {
			return nil, err
		}
		counts, err := h.reviews.RatingCounts(ctx, query.RestaurantID)
		if err != nil {
			return nil, fmt.Errorf("failed to load rating stats: %w", err)
		}
		base = cachedDetail{Restaurant: *restaurant, RatingStats: rating.NewDistribution(counts)}
		h.cache.Set(ctx, query.RestaurantID, base)
	}

	now := query.Now
	if now.IsZero() {
		now = time.Now()
	}

	detail := &RestaurantDetail{
		Restaurant:  base.Restaurant,
		RatingStats: base.RatingStats,
		IsOpenNow:   base.Restaurant.IsOpenAt(now),
	}
	if query.UserID == 0 {
		return detail, nil
	}

	var err error
	if detail.Bookmarked, err = h.bookmarks.Exists(ctx, query.UserID, query.RestaurantID); err != nil {
		return nil, fmt.Errorf("failed to load bookmark: %w", err)
	}
	if detail.Visited, err = h.visits.Exists(ctx, query.UserID, query.RestaurantID); err != nil {
		return nil, fmt.Errorf("failed to load visit: %w", err)
	}
	return detail, nil
}
