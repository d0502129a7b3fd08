package query

import (
	"context"
	"fmt"

	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
)

// ListReviewsQuery represents one page of a restaurant's reviews
type ListReviewsQuery struct {
	RestaurantID uint
	Page         int
}

// ReviewPage is one page of reviews, newest first
type ReviewPage struct {
	Reviews []domain.ReviewView `json:"reviews"`
	PageInfo
}

// ListReviewsHandler handles the review list query
type ListReviewsHandler struct {
	restaurants domain.RestaurantRepository
	reviews     domain.ReviewRepository
}

// NewListReviewsHandler creates a new list reviews handler
func NewListReviewsHandler(restaurants domain.RestaurantRepository, reviews domain.ReviewRepository) *ListReviewsHandler {
	return &ListReviewsHandler{restaurants: restaurants, reviews: reviews}
}

// Handle executes the list reviews query
func (h *ListReviewsHandler) Handle(ctx context.Context, query ListReviewsQuery) (*ReviewPage, error) {
	exists, err := h.restaurants.Exists(ctx, query.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: restaurant %d", domain.ErrNotFound, query.RestaurantID)
	}

	offset, err := offsetFor(query.Page)
	if err != nil {
		return nil, err
	}

	reviews, total, err := h.reviews.FindByRestaurant(ctx, query.RestaurantID, PageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	info, err := newPageInfo(query.Page, total)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.ReviewView{}
	}
	return &ReviewPage{Reviews: reviews, PageInfo: info}, nil
}
