package command

import (
	"context"
	"fmt"

	"github.com/tair/restaurant-discovery/internal/account/domain"
	"github.com/tair/restaurant-discovery/pkg/auth"
	"github.com/tair/restaurant-discovery/pkg/logger"
)

// ChangePasswordCommand changes the password of a logged-in user
type ChangePasswordCommand struct {
	UserID             uint   `json:"-" validate:"required"`
	OldPassword        string `json:"old_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8,max=128"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

// ChangePasswordHandler handles password changes
type ChangePasswordHandler struct {
	repo domain.UserRepository
}

// NewChangePasswordHandler creates a new change password handler
func NewChangePasswordHandler(repo domain.UserRepository) *ChangePasswordHandler {
	return &ChangePasswordHandler{repo: repo}
}

// Handle verifies the old password and stores the new one
func (h *ChangePasswordHandler) Handle(ctx context.Context, cmd ChangePasswordCommand) error {
	if err := validate(cmd); err != nil {
		return err
	}

	user, err := h.repo.FindByID(ctx, cmd.UserID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, cmd.OldPassword) {
		return fmt.Errorf("%w: old password is incorrect", domain.ErrInvalidInput)
	}

	hash, err := auth.HashPassword(cmd.NewPassword)
	if err != nil {
		return err
	}
	if err := h.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	logger.Info(ctx).Uint("user_id", user.ID).Msg("Password changed")
	return nil
}
