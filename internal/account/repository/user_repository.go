package repository

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tair/restaurant-discovery/internal/account/domain"
	"github.com/tair/restaurant-discovery/pkg/tracing"
)

const tracerName = "account-repository"

// AutoMigrate creates or updates the account tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(domain.Models()...)
}

// GormUserRepository implements UserRepository interface using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM user repository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a new user. A taken username or email yields ErrUserExists.
func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, span := tracing.StartSpan(ctx, tracerName, "repository.CreateUser",
		attribute.String("user.username", user.Username))
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.User{}).
			Where("username = ? OR email = ?", user.Username, user.Email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrUserExists
		}
		return tx.Create(user).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = domain.ErrUserExists
	}
	if err != nil {
		tracing.RecordError(span, err)
		if errors.Is(err, domain.ErrUserExists) {
			return err
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	span.SetAttributes(attribute.Int64("user.id", int64(user.ID)))
	return nil
}

// FindByID retrieves a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.findOne(ctx, "FindUserByID", "id = ?", id)
}

// FindByUsername retrieves a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "FindUserByUsername", "username = ?", username)
}

// FindByEmail retrieves a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "FindUserByEmail", "email = ?", email)
}

func (r *GormUserRepository) findOne(ctx context.Context, op, where string, arg interface{}) (*domain.User, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "repository."+op)
	defer span.End()

	var user domain.User
	if err := r.db.WithContext(ctx).Where(where, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// UpdatePassword stores a new password hash
func (r *GormUserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	ctx, span := tracing.StartSpan(ctx, tracerName, "repository.UpdatePassword",
		attribute.Int64("user.id", int64(id)))
	defer span.End()

	result := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("password", hash)
	if result.Error != nil {
		tracing.RecordError(span, result.Error)
		return fmt.Errorf("failed to update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
