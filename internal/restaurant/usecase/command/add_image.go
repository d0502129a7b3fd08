package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
)

// AddImageCommand attaches a stored image path to a restaurant
type AddImageCommand struct {
	RestaurantID uint   `json:"restaurant_id" validate:"required"`
	Image        string `json:"image" validate:"required,max=500"`
}

// AddImageHandler handles image registration
type AddImageHandler struct {
	restaurants domain.RestaurantRepository
	cache       CacheInvalidator
}

// NewAddImageHandler creates a new add image handler
func NewAddImageHandler(restaurants domain.RestaurantRepository, cache CacheInvalidator) *AddImageHandler {
	return &AddImageHandler{restaurants: restaurants, cache: cache}
}

// Handle executes the add image command
func (h *AddImageHandler) Handle(ctx context.Context, cmd AddImageCommand) (*domain.RestaurantImage, error) {
	cmd.Image = strings.TrimSpace(cmd.Image)
	if err := validate(cmd); err != nil {
		return nil, err
	}

	exists, err := h.restaurants.Exists(ctx, cmd.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("restaurant %d: %w", cmd.RestaurantID, domain.ErrNotFound)
	}

	image := &domain.RestaurantImage{RestaurantID: cmd.RestaurantID, Image: cmd.Image}
	if err := h.restaurants.AddImage(ctx, image); err != nil {
		return nil, err
	}
	h.cache.Invalidate(ctx, cmd.RestaurantID)
	return image, nil
}
