package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/restaurant-discovery/internal/account/domain"
)

// RedisResetTokenStore keeps password reset tokens in Redis until they are
// consumed or expire
type RedisResetTokenStore struct {
	redis *redis.Client
}

// NewRedisResetTokenStore creates a reset token store
func NewRedisResetTokenStore(client *redis.Client) *RedisResetTokenStore {
	return &RedisResetTokenStore{redis: client}
}

func resetKey(token string) string {
	return "password_reset:" + token
}

// Save binds token to userID for ttl
func (s *RedisResetTokenStore) Save(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	if s.redis == nil {
		return errors.New("password reset requires redis")
	}
	if err := s.redis.Set(ctx, resetKey(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

// Consume atomically reads and deletes the token
func (s *RedisResetTokenStore) Consume(ctx context.Context, token string) (uint, error) {
	if s.redis == nil {
		return 0, errors.New("password reset requires redis")
	}
	raw, err := s.redis.GetDel(ctx, resetKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, domain.ErrInvalidResetToken
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read reset token: %w", err)
	}

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, domain.ErrInvalidResetToken
	}
	return uint(id), nil
}
