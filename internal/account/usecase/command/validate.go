package command

import (
	"fmt"

	"github.com/tair/restaurant-discovery/internal/account/domain"
	"github.com/tair/restaurant-discovery/pkg/validation"
)

func validate(cmd interface{}) error {
	if err := validation.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}
