package query

import (
	"context"
	"fmt"

	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
	"github.com/tair/restaurant-discovery/internal/restaurant/filter"
)

// ListRestaurantsQuery represents one page of the filtered restaurant list.
// UserID 0 means an anonymous caller.
type ListRestaurantsQuery struct {
	Criteria filter.Criteria
	Page     int
	UserID   uint
}

// RestaurantSummary is a list item annotated with the caller's flags
type RestaurantSummary struct {
	domain.Restaurant
	Bookmarked bool `json:"bookmarked"`
	Visited    bool `json:"visited"`
}

// RestaurantPage is one page of restaurants
type RestaurantPage struct {
	Restaurants []RestaurantSummary `json:"restaurants"`
	PageInfo
}

// ListRestaurantsHandler handles the restaurant list query
type ListRestaurantsHandler struct {
	restaurants domain.RestaurantRepository
	bookmarks   domain.BookmarkRepository
	visits      domain.VisitedRepository
}

// NewListRestaurantsHandler creates a new list restaurants handler
func NewListRestaurantsHandler(restaurants domain.RestaurantRepository, bookmarks domain.BookmarkRepository, visits domain.VisitedRepository) *ListRestaurantsHandler {
	return &ListRestaurantsHandler{restaurants: restaurants, bookmarks: bookmarks, visits: visits}
}

// Handle executes the list restaurants query
func (h *ListRestaurantsHandler) Handle(ctx context.Context, query ListRestaurantsQuery) (*RestaurantPage, error) {
	offset, err := offsetFor(query.Page)
	if err != nil {
		return nil, err
	}

	restaurants, total, err := h.restaurants.List(ctx, filter.Build(query.Criteria), PageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}

	info, err := newPageInfo(query.Page, total)
	if err != nil {
		return nil, err
	}

	items, err := annotate(ctx, h.bookmarks, h.visits, query.UserID, restaurants)
	if err != nil {
		return nil, err
	}
	return &RestaurantPage{Restaurants: items, PageInfo: info}, nil
}

// annotate attaches the caller's bookmark and visited flags with one query
// per association table.
func annotate(ctx context.Context, bookmarks domain.BookmarkRepository, visits domain.VisitedRepository, userID uint, restaurants []domain.Restaurant) ([]RestaurantSummary, error) {
	ids := make([]uint, len(restaurants))
	for i, r := range restaurants {
		ids[i] = r.ID
	}

	bookmarked, err := bookmarks.Flags(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookmarks: %w", err)
	}
	visited, err := visits.Flags(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load visits: %w", err)
	}

	items := make([]RestaurantSummary, len(restaurants))
	for i, r := range restaurants {
		items[i] = RestaurantSummary{
			Restaurant: r,
			Bookmarked: bookmarked[r.ID],
			Visited:    visited[r.ID],
		}
	}
	return items, nil
}
