package command

import (
	"context"

	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
	"github.com/tair/restaurant-discovery/kafka"
	"github.com/tair/restaurant-discovery/pkg/logger"
)

// DeleteReviewCommand removes a review owned by UserID
type DeleteReviewCommand struct {
	ReviewID uint `json:"review_id" validate:"required"`
	UserID   uint `json:"user_id" validate:"required"`
}

// DeleteReviewHandler handles review deletion
type DeleteReviewHandler struct {
	reviews   domain.ReviewRepository
	cache     CacheInvalidator
	publisher kafka.EventPublisher
}

// NewDeleteReviewHandler creates a new delete review handler
func NewDeleteReviewHandler(reviews domain.ReviewRepository, cache CacheInvalidator, publisher kafka.EventPublisher) *DeleteReviewHandler {
	return &DeleteReviewHandler{reviews: reviews, cache: cache, publisher: publisher}
}

// Handle deletes the review and returns the restaurant's new average
func (h *DeleteReviewHandler) Handle(ctx context.Context, cmd DeleteReviewCommand) (float64, error) {
	if err := validate(cmd); err != nil {
		return 0, err
	}

	restaurantID, avg, err := h.reviews.Delete(ctx, cmd.ReviewID, cmd.UserID)
	if err != nil {
		return 0, err
	}

	h.cache.Invalidate(ctx, restaurantID)

	event := kafka.ReviewChangedEvent{
		Action:        kafka.ReviewDeleted,
		ReviewID:      cmd.ReviewID,
		RestaurantID:  restaurantID,
		UserID:        cmd.UserID,
		AverageRating: avg,
	}
	if err := h.publisher.PublishReviewChanged(ctx, event); err != nil {
		logger.Warn(ctx).Err(err).Uint("review_id", cmd.ReviewID).Msg("Review deleted but event not published")
	}
	return avg, nil
}
