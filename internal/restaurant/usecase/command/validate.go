package command

import (
	"context"
	"fmt"

	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
	"github.com/tair/restaurant-discovery/pkg/validation"
)

// CacheInvalidator drops cached restaurant detail payloads
type CacheInvalidator interface {
	Invalidate(ctx context.Context, restaurantID uint)
}

func validate(cmd interface{}) error {
	if err := validation.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
