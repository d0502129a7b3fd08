//go:build wireinject
// +build wireinject

package restaurant

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/tair/restaurant-discovery/internal/restaurant/cache"
	"github.com/tair/restaurant-discovery/internal/restaurant/delivery/http"
	"github.com/tair/restaurant-discovery/kafka"
	"github.com/tair/restaurant-discovery/pkg/middleware"
)

// InitializeHTTPHandler initializes the restaurant HTTP handler with all dependencies
func InitializeHTTPHandler(
	db *gorm.DB,
	detailCache *cache.DetailCache,
	publisher kafka.EventPublisher,
	authn *middleware.Authenticator,
	limiter *middleware.RateLimiter,
	reg prometheus.Registerer,
) (*http.RestaurantHandler, error) {
	wire.Build(
		AllHandlersSet,
		wire.Struct(new(http.Commands), "*"),
		wire.Struct(new(http.Queries), "*"),
		http.NewRestaurantHandlerWithDI,
	)
	return nil, nil
}
