package domain

import (
	"context"
	"errors"
	"time"

	"github.com/tair/restaurant-discovery/pkg/auth"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("account is deactivated")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrInvalidInput       = errors.New("invalid input")
)

// User represents the account entity
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Role      string    `json:"role" gorm:"size:20;not null;default:'user'"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// IsAdmin checks if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == auth.RoleAdmin
}

// UserRepository defines the contract for user data access
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, id uint, hash string) error
}

// ResetTokenStore keeps single-use password reset tokens
type ResetTokenStore interface {
	Save(ctx context.Context, token string, userID uint, ttl time.Duration) error
	// Consume returns the user id bound to token and removes it.
	Consume(ctx context.Context, token string) (uint, error)
}

// Models lists every table of the account module
func Models() []interface{} {
	return []interface{}{&User{}}
}
