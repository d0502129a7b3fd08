package restaurant

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/restaurant-discovery/internal/restaurant/cache"
	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
	"github.com/tair/restaurant-discovery/internal/restaurant/repository"
	"github.com/tair/restaurant-discovery/internal/restaurant/usecase/command"
	"github.com/tair/restaurant-discovery/internal/restaurant/usecase/query"
)

// Repository providers
func ProvideRestaurantRepository(db *gorm.DB) domain.RestaurantRepository {
	return repository.NewGormRestaurantRepository(db)
}

func ProvideCuisineRepository(db *gorm.DB) domain.CuisineRepository {
	return repository.NewGormCuisineRepository(db)
}

func ProvideFoodRepository(db *gorm.DB) domain.FoodRepository {
	return repository.NewGormFoodRepository(db)
}

func ProvideReviewRepository(db *gorm.DB) domain.ReviewRepository {
	return repository.NewGormReviewRepository(db)
}

func ProvideBookmarkRepository(db *gorm.DB) domain.BookmarkRepository {
	return repository.NewGormBookmarkRepository(db)
}

func ProvideVisitedRepository(db *gorm.DB) domain.VisitedRepository {
	return repository.NewGormVisitedRepository(db)
}

// Cache adapters; a nil *cache.DetailCache disables caching
func ProvideCacheInvalidator(c *cache.DetailCache) command.CacheInvalidator {
	return c
}

func ProvideDetailCache(c *cache.DetailCache) query.DetailCache {
	return c
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideRestaurantRepository,
	ProvideCuisineRepository,
	ProvideFoodRepository,
	ProvideReviewRepository,
	ProvideBookmarkRepository,
	ProvideVisitedRepository,
)

var CacheSet = wire.NewSet(
	ProvideCacheInvalidator,
	ProvideDetailCache,
)

var CommandHandlerSet = wire.NewSet(
	command.NewToggleBookmarkHandler,
	command.NewToggleVisitedHandler,
	command.NewSubmitReviewHandler,
	command.NewDeleteReviewHandler,
	command.NewCreateCuisineHandler,
	command.NewCreateRestaurantHandler,
	command.NewAddFoodHandler,
	command.NewAddImageHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewListRestaurantsHandler,
	query.NewGetRestaurantHandler,
	query.NewListFoodsHandler,
	query.NewListCuisinesHandler,
	query.NewListReviewsHandler,
	query.NewListBookmarksHandler,
	query.NewListVisitedHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CacheSet,
	CommandHandlerSet,
	QueryHandlerSet,
)
