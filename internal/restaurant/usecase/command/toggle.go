package command

import (
	"context"
	"fmt"

	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
	"github.com/tair/restaurant-discovery/pkg/logger"
)

// ToggleCommand flips one (user, restaurant) association
type ToggleCommand struct {
	UserID       uint `json:"user_id" validate:"required"`
	RestaurantID uint `json:"restaurant_id" validate:"required"`
}

// ToggleBookmarkHandler handles the bookmark toggle command
type ToggleBookmarkHandler struct {
	restaurants domain.RestaurantRepository
	bookmarks   domain.BookmarkRepository
}

// NewToggleBookmarkHandler creates a new toggle bookmark handler
func NewToggleBookmarkHandler(restaurants domain.RestaurantRepository, bookmarks domain.BookmarkRepository) *ToggleBookmarkHandler {
	return &ToggleBookmarkHandler{restaurants: restaurants, bookmarks: bookmarks}
}

// Handle toggles the bookmark and returns whether it is now bookmarked
func (h *ToggleBookmarkHandler) Handle(ctx context.Context, cmd ToggleCommand) (bool, error) {
	return toggle(ctx, "bookmark", h.restaurants, h.bookmarks, cmd)
}

// ToggleVisitedHandler handles the visited toggle command
type ToggleVisitedHandler struct {
	restaurants domain.RestaurantRepository
	visits      domain.VisitedRepository
}

// NewToggleVisitedHandler creates a new toggle visited handler
func NewToggleVisitedHandler(restaurants domain.RestaurantRepository, visits domain.VisitedRepository) *ToggleVisitedHandler {
	return &ToggleVisitedHandler{restaurants: restaurants, visits: visits}
}

// Handle toggles the visit and returns whether it is now marked visited
func (h *ToggleVisitedHandler) Handle(ctx context.Context, cmd ToggleCommand) (bool, error) {
	return toggle(ctx, "visited", h.restaurants, h.visits, cmd)
}

func toggle(ctx context.Context, kind string, restaurants domain.RestaurantRepository, store domain.AssociationRepository, cmd ToggleCommand) (bool, error) {
	if err := validate(cmd); err != nil {
		return false, err
	}

	exists, err := restaurants.Exists(ctx, cmd.RestaurantID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, fmt.Errorf("%w: restaurant %d does not exist", domain.ErrInvalidInput, cmd.RestaurantID)
	}

	on, err := store.Toggle(ctx, cmd.UserID, cmd.RestaurantID)
	if err != nil {
		return false, err
	}

	logger.Info(ctx).
		Str("kind", kind).
		Uint("user_id", cmd.UserID).
		Uint("restaurant_id", cmd.RestaurantID).
		Bool("state", on).
		Msg("Association toggled")
	return on, nil
}
