package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/restaurant-discovery/internal/restaurant/diet"
	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
)

// AddFoodCommand adds a menu item to a restaurant
type AddFoodCommand struct {
	RestaurantID uint      `json:"restaurant_id" validate:"required"`
	Name         string    `json:"name" validate:"required,max=200"`
	Price        float64   `json:"price" validate:"gte=0,lt=1000000"`
	DietType     diet.Type `json:"diet_type" validate:"required"`
	Description  string    `json:"description"`
}

// AddFoodHandler handles menu item creation
type AddFoodHandler struct {
	restaurants domain.RestaurantRepository
	foods       domain.FoodRepository
}

// NewAddFoodHandler creates a new add food handler
func NewAddFoodHandler(restaurants domain.RestaurantRepository, foods domain.FoodRepository) *AddFoodHandler {
	return &AddFoodHandler{restaurants: restaurants, foods: foods}
}

// Handle executes the add food command
func (h *AddFoodHandler) Handle(ctx context.Context, cmd AddFoodCommand) (*domain.Food, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	if err := validate(cmd); err != nil {
		return nil, err
	}
	if !cmd.DietType.Valid() {
		return nil, fmt.Errorf("%w: unknown diet type %d", domain.ErrInvalidInput, int(cmd.DietType))
	}

	exists, err := h.restaurants.Exists(ctx, cmd.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("restaurant %d: %w", cmd.RestaurantID, domain.ErrNotFound)
	}

	food := &domain.Food{
		RestaurantID: cmd.RestaurantID,
		Name:         cmd.Name,
		Price:        cmd.Price,
		DietType:     cmd.DietType,
		Description:  cmd.Description,
	}
	if err := h.foods.Create(ctx, food); err != nil {
		return nil, err
	}
	return food, nil
}
