package query

import (
	"context"
	"fmt"

	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
)

// ListUserRestaurantsQuery represents one page of a user's bookmarked or
// visited restaurants
type ListUserRestaurantsQuery struct {
	UserID uint
	Page   int
}

// ListBookmarksHandler lists the restaurants a user bookmarked, newest first
type ListBookmarksHandler struct {
	bookmarks domain.BookmarkRepository
	visits    domain.VisitedRepository
}

// NewListBookmarksHandler creates a new list bookmarks handler
func NewListBookmarksHandler(bookmarks domain.BookmarkRepository, visits domain.VisitedRepository) *ListBookmarksHandler {
	return &ListBookmarksHandler{bookmarks: bookmarks, visits: visits}
}

// Handle executes the list bookmarks query
func (h *ListBookmarksHandler) Handle(ctx context.Context, query ListUserRestaurantsQuery) (*RestaurantPage, error) {
	return listSaved(ctx, h.bookmarks, h.bookmarks, h.visits, query)
}

// ListVisitedHandler lists the restaurants a user visited, most recent first
type ListVisitedHandler struct {
	bookmarks domain.BookmarkRepository
	visits    domain.VisitedRepository
}

// NewListVisitedHandler creates a new list visited handler
func NewListVisitedHandler(bookmarks domain.BookmarkRepository, visits domain.VisitedRepository) *ListVisitedHandler {
	return &ListVisitedHandler{bookmarks: bookmarks, visits: visits}
}

// Handle executes the list visited query
func (h *ListVisitedHandler) Handle(ctx context.Context, query ListUserRestaurantsQuery) (*RestaurantPage, error) {
	return listSaved(ctx, h.visits, h.bookmarks, h.visits, query)
}

func listSaved(ctx context.Context, source domain.AssociationRepository, bookmarks domain.BookmarkRepository, visits domain.VisitedRepository, query ListUserRestaurantsQuery) (*RestaurantPage, error) {
	if query.UserID == 0 {
		return nil, fmt.Errorf("%w: user is required", domain.ErrInvalidInput)
	}

	offset, err := offsetFor(query.Page)
	if err != nil {
		return nil, err
	}

	restaurants, total, err := source.ListRestaurants(ctx, query.UserID, PageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved restaurants: %w", err)
	}

	info, err := newPageInfo(query.Page, total)
	if err != nil {
		return nil, err
	}

	items, err := annotate(ctx, bookmarks, visits, query.UserID, restaurants)
	if err != nil {
		return nil, err
	}
	return &RestaurantPage{Restaurants: items, PageInfo: info}, nil
}
