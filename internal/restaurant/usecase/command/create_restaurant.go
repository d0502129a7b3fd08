package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/restaurant-discovery/internal/restaurant/diet"
	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
)

// CreateRestaurantCommand represents the command to create a restaurant
type CreateRestaurantCommand struct {
	Name        string    `json:"name" validate:"required,max=200"`
	City        string    `json:"city" validate:"required,max=100"`
	Address     string    `json:"address" validate:"max=500"`
	CostForTwo  int       `json:"cost_for_two" validate:"gte=0"`
	DietType    diet.Type `json:"diet_type" validate:"required"`
	OpeningTime string    `json:"opening_time"`
	ClosingTime string    `json:"closing_time"`
	IsSpotlight bool      `json:"is_spotlight"`
	CuisineIDs  []uint    `json:"cuisine_ids"`
}

// CreateRestaurantHandler handles restaurant creation
type CreateRestaurantHandler struct {
	repo domain.RestaurantRepository
}

// NewCreateRestaurantHandler creates a new create restaurant handler
func NewCreateRestaurantHandler(repo domain.RestaurantRepository) *CreateRestaurantHandler {
	return &CreateRestaurantHandler{repo: repo}
}

// Handle executes the create restaurant command
func (h *CreateRestaurantHandler) Handle(ctx context.Context, cmd CreateRestaurantCommand) (*domain.Restaurant, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.City = strings.TrimSpace(cmd.City)
	if err := validate(cmd); err != nil {
		return nil, err
	}
	if !cmd.DietType.Valid() {
		return nil, fmt.Errorf("%w: unknown diet type %d", domain.ErrInvalidInput, int(cmd.DietType))
	}
	if err := domain.ValidateHours(cmd.OpeningTime, cmd.ClosingTime); err != nil {
		return nil, err
	}

	restaurant := &domain.Restaurant{
		Name:        cmd.Name,
		City:        cmd.City,
		Address:     cmd.Address,
		CostForTwo:  cmd.CostForTwo,
		DietType:    cmd.DietType,
		OpeningTime: cmd.OpeningTime,
		ClosingTime: cmd.ClosingTime,
		IsSpotlight: cmd.IsSpotlight,
	}
	if err := h.repo.Create(ctx, restaurant, cmd.CuisineIDs); err != nil {
		return nil, err
	}
	return restaurant, nil
}
