//go:build wireinject
// +build wireinject

package account

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tair/restaurant-discovery/internal/account/delivery/http"
	"github.com/tair/restaurant-discovery/internal/account/usecase/command"
	"github.com/tair/restaurant-discovery/kafka"
	"github.com/tair/restaurant-discovery/pkg/auth"
	"github.com/tair/restaurant-discovery/pkg/middleware"
)

// InitializeHTTPHandler initializes the account HTTP handler with all dependencies
func InitializeHTTPHandler(
	db *gorm.DB,
	redisClient *redis.Client,
	publisher kafka.EventPublisher,
	tokens *auth.TokenManager,
	authn *middleware.Authenticator,
	limiter *middleware.RateLimiter,
	resetTTL command.ResetTokenTTL,
	secure http.CookieSecure,
	reg prometheus.Registerer,
) (*http.AccountHandler, error) {
	wire.Build(
		AllHandlersSet,
		wire.Struct(new(http.Commands), "*"),
		http.NewAccountHandlerWithDI,
	)
	return nil, nil
}
