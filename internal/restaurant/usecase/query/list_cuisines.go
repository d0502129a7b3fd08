package query

import (
	"context"
	"fmt"

	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
)

// ListCuisinesHandler handles the cuisine list query
type ListCuisinesHandler struct {
	repo domain.CuisineRepository
}

// NewListCuisinesHandler creates a new list cuisines handler
func NewListCuisinesHandler(repo domain.CuisineRepository) *ListCuisinesHandler {
	return &ListCuisinesHandler{repo: repo}
}

// Handle returns every cuisine ordered by name
func (h *ListCuisinesHandler) Handle(ctx context.Context) ([]domain.Cuisine, error) {
	cuisines, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cuisines: %w", err)
	}
	if cuisines == nil {
		cuisines = []domain.Cuisine{}
	}
	return cuisines, nil
}
