package command

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tair/restaurant-discovery/internal/account/domain"
	"github.com/tair/restaurant-discovery/kafka"
	"github.com/tair/restaurant-discovery/pkg/auth"
	"github.com/tair/restaurant-discovery/pkg/logger"
)

// ResetTokenTTL is how long a reset link stays valid
type ResetTokenTTL time.Duration

// RequestPasswordResetCommand asks for a reset link by email
type RequestPasswordResetCommand struct {
	Email string `json:"email" validate:"required,email"`
}

// RequestPasswordResetHandler issues reset tokens and hands them to the mailer
type RequestPasswordResetHandler struct {
	repo      domain.UserRepository
	tokens    domain.ResetTokenStore
	publisher kafka.EventPublisher
	ttl       time.Duration
	now       func() time.Time
}

// NewRequestPasswordResetHandler creates a new request password reset handler
func NewRequestPasswordResetHandler(repo domain.UserRepository, tokens domain.ResetTokenStore, publisher kafka.EventPublisher, ttl ResetTokenTTL) *RequestPasswordResetHandler {
	d := time.Duration(ttl)
	if d <= 0 {
		d = time.Hour
	}
	return &RequestPasswordResetHandler{repo: repo, tokens: tokens, publisher: publisher, ttl: d, now: time.Now}
}

// Handle issues a token when the email belongs to an active user. Unknown
// addresses succeed silently so that accounts cannot be enumerated, and
// delivery failures for known ones are logged rather than returned.
func (h *RequestPasswordResetHandler) Handle(ctx context.Context, cmd RequestPasswordResetCommand) error {
	cmd.Email = strings.ToLower(strings.TrimSpace(cmd.Email))
	if err := validate(cmd); err != nil {
		return err
	}

	user, err := h.repo.FindByEmail(ctx, cmd.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		logger.Debug(ctx).Msg("Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	if !user.IsActive {
		return nil
	}

	token := uuid.NewString()
	if err := h.tokens.Save(ctx, token, user.ID, h.ttl); err != nil {
		logger.Error(ctx).Err(err).Uint("user_id", user.ID).Msg("Failed to store password reset token")
		return nil
	}

	event := kafka.PasswordResetRequestedEvent{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: h.now().Add(h.ttl),
	}
	if err := h.publisher.PublishPasswordResetRequested(ctx, event); err != nil {
		logger.Error(ctx).Err(err).Uint("user_id", user.ID).Msg("Failed to publish password reset event")
		return nil
	}

	logger.Info(ctx).Uint("user_id", user.ID).Msg("Password reset requested")
	return nil
}

// ResetPasswordCommand sets a new password using a reset token
type ResetPasswordCommand struct {
	Token              string `json:"token" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8,max=128"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

// ResetPasswordHandler consumes reset tokens
type ResetPasswordHandler struct {
	repo   domain.UserRepository
	tokens domain.ResetTokenStore
}

// NewResetPasswordHandler creates a new reset password handler
func NewResetPasswordHandler(repo domain.UserRepository, tokens domain.ResetTokenStore) *ResetPasswordHandler {
	return &ResetPasswordHandler{repo: repo, tokens: tokens}
}

// Handle consumes the token and stores the new password. A token works once.
func (h *ResetPasswordHandler) Handle(ctx context.Context, cmd ResetPasswordCommand) error {
	if err := validate(cmd); err != nil {
		return err
	}

	userID, err := h.tokens.Consume(ctx, cmd.Token)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(cmd.NewPassword)
	if err != nil {
		return err
	}
	if err := h.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	logger.Info(ctx).Uint("user_id", userID).Msg("Password reset completed")
	return nil
}
