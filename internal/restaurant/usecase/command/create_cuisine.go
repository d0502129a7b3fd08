package command

import (
	"context"
	"strings"

	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
)

// CreateCuisineCommand represents the command to create a cuisine
type CreateCuisineCommand struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CreateCuisineHandler handles cuisine creation
type CreateCuisineHandler struct {
	repo domain.CuisineRepository
}

// NewCreateCuisineHandler creates a new create cuisine handler
func NewCreateCuisineHandler(repo domain.CuisineRepository) *CreateCuisineHandler {
	return &CreateCuisineHandler{repo: repo}
}

// Handle executes the create cuisine command
func (h *CreateCuisineHandler) Handle(ctx context.Context, cmd CreateCuisineCommand) (*domain.Cuisine, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	if err := validate(cmd); err != nil {
		return nil, err
	}

	cuisine := &domain.Cuisine{Name: cmd.Name}
	if err := h.repo.Create(ctx, cuisine); err != nil {
		return nil, err
	}
	return cuisine, nil
}
