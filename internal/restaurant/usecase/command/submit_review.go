package command

import (
	"context"

	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
	"github.com/tair/restaurant-discovery/kafka"
	"github.com/tair/restaurant-discovery/pkg/logger"
)

// SubmitReviewCommand creates or replaces the caller's review of a restaurant
type SubmitReviewCommand struct {
	UserID       uint   `json:"user_id" validate:"required"`
	RestaurantID uint   `json:"restaurant_id" validate:"required"`
	Rating       int    `json:"rating" validate:"gte=1,lte=5"`
	Comment      string `json:"comment" validate:"max=2000"`
}

// SubmitReviewHandler handles the review upsert command
type SubmitReviewHandler struct {
	reviews   domain.ReviewRepository
	cache     CacheInvalidator
	publisher kafka.EventPublisher
}

// NewSubmitReviewHandler creates a new submit review handler
func NewSubmitReviewHandler(reviews domain.ReviewRepository, cache CacheInvalidator, publisher kafka.EventPublisher) *SubmitReviewHandler {
	return &SubmitReviewHandler{reviews: reviews, cache: cache, publisher: publisher}
}

// Handle upserts the review; the restaurant's average is recomputed in the
// same transaction.
func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (*domain.UpsertResult, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}

	result, err := h.reviews.Upsert(ctx, cmd.UserID, cmd.RestaurantID, cmd.Rating, cmd.Comment)
	if err != nil {
		return nil, err
	}

	h.cache.Invalidate(ctx, cmd.RestaurantID)

	action := kafka.ReviewUpdated
	if result.Created {
		action = kafka.ReviewCreated
	}
	event := kafka.ReviewChangedEvent{
		Action:        action,
		ReviewID:      result.Review.ID,
		RestaurantID:  cmd.RestaurantID,
		UserID:        cmd.UserID,
		Rating:        cmd.Rating,
		AverageRating: result.AverageRating,
	}
	if err := h.publisher.PublishReviewChanged(ctx, event); err != nil {
		logger.Warn(ctx).Err(err).Uint("review_id", result.Review.ID).Msg("Review saved but event not published")
	}

	return result, nil
}
