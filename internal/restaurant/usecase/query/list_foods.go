package query

import (
	"context"
	"fmt"

	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
)

// ListFoodsQuery represents the menu query of one restaurant
type ListFoodsQuery struct {
	RestaurantID uint
}

// Menu is a restaurant with its foods
type Menu struct {
	Restaurant domain.Restaurant `json:"restaurant"`
	Foods      []domain.Food     `json:"foods"`
}

// ListFoodsHandler handles the menu query
type ListFoodsHandler struct {
	restaurants domain.RestaurantRepository
	foods       domain.FoodRepository
}

// NewListFoodsHandler creates a new list foods handler
func NewListFoodsHandler(restaurants domain.RestaurantRepository, foods domain.FoodRepository) *ListFoodsHandler {
	return &ListFoodsHandler{restaurants: restaurants, foods: foods}
}

// Handle loads the restaurant once and lists its foods by name
func (h *ListFoodsHandler) Handle(ctx context.Context, query ListFoodsQuery) (*Menu, error) {
	restaurant, err := h.restaurants.FindByID(ctx, query.RestaurantID)
	if err != nil {
		return nil, err
	}

	foods, err := h.foods.FindByRestaurant(ctx, query.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list foods: %w", err)
	}
	if foods == nil {
		foods = []domain.Food{}
	}

	return &Menu{Restaurant: *restaurant, Foods: foods}, nil
}
