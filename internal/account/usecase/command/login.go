package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tair/restaurant-discovery/internal/account/domain"
	"github.com/tair/restaurant-discovery/pkg/auth"
	"github.com/tair/restaurant-discovery/pkg/logger"
)

// LoginCommand represents the login form
type LoginCommand struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned after signup or login
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"`
	User      *domain.User `json:"user"`
}

// LoginHandler handles user login
type LoginHandler struct {
	repo   domain.UserRepository
	tokens *auth.TokenManager
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(repo domain.UserRepository, tokens *auth.TokenManager) *LoginHandler {
	return &LoginHandler{repo: repo, tokens: tokens}
}

// Handle executes the login command. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (h *LoginHandler) Handle(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	cmd.Username = strings.TrimSpace(cmd.Username)
	if err := validate(cmd); err != nil {
		return nil, err
	}

	user, err := h.repo.FindByUsername(ctx, cmd.Username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.Password, cmd.Password) {
		logger.Warn(ctx).Str("username", cmd.Username).Msg("Failed login attempt")
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrInactive
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Info(ctx).Uint("user_id", user.ID).Msg("User logged in")
	return &LoginResult{Token: token, ExpiresIn: int64(h.tokens.TTL().Seconds()), User: user}, nil
}
