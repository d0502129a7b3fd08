package account

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tair/restaurant-discovery/internal/account/domain"
	"github.com/tair/restaurant-discovery/internal/account/repository"
	"github.com/tair/restaurant-discovery/internal/account/usecase/command"
)

// Repository providers
func ProvideUserRepository(db *gorm.DB) domain.UserRepository {
	return repository.NewGormUserRepository(db)
}

func ProvideResetTokenStore(client *redis.Client) domain.ResetTokenStore {
	return repository.NewRedisResetTokenStore(client)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideUserRepository,
	ProvideResetTokenStore,
)

var CommandHandlerSet = wire.NewSet(
	command.NewRegisterHandler,
	command.NewLoginHandler,
	command.NewChangePasswordHandler,
	command.NewRequestPasswordResetHandler,
	command.NewResetPasswordHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
)
