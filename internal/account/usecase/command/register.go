package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/restaurant-discovery/internal/account/domain"
	"github.com/tair/restaurant-discovery/pkg/auth"
	"github.com/tair/restaurant-discovery/pkg/logger"
)

// RegisterCommand represents the signup form
type RegisterCommand struct {
	Username        string `json:"username" validate:"required,min=3,max=150"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// RegisterHandler handles user signup. New users are logged in right away.
type RegisterHandler struct {
	repo   domain.UserRepository
	tokens *auth.TokenManager
}

// NewRegisterHandler creates a new register handler
func NewRegisterHandler(repo domain.UserRepository, tokens *auth.TokenManager) *RegisterHandler {
	return &RegisterHandler{repo: repo, tokens: tokens}
}

// Handle executes the register command
func (h *RegisterHandler) Handle(ctx context.Context, cmd RegisterCommand) (*LoginResult, error) {
	cmd.Username = strings.TrimSpace(cmd.Username)
	cmd.Email = strings.ToLower(strings.TrimSpace(cmd.Email))
	if err := validate(cmd); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username: cmd.Username,
		Email:    cmd.Email,
		Password: hash,
		Role:     auth.RoleUser,
		IsActive: true,
	}
	if err := h.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Info(ctx).Uint("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	return &LoginResult{Token: token, ExpiresIn: int64(h.tokens.TTL().Seconds()), User: user}, nil
}
