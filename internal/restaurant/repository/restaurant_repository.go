package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
	"github.com/tair/restaurant-discovery/internal/restaurant/filter"
)

// GormRestaurantRepository implements RestaurantRepository using GORM
type GormRestaurantRepository struct {
	db *gorm.DB
}

// NewGormRestaurantRepository creates a new GORM restaurant repository
func NewGormRestaurantRepository(db *gorm.DB) *GormRestaurantRepository {
	return &GormRestaurantRepository{db: db}
}

// AutoMigrate creates or updates every restaurant module table
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("failed to migrate restaurant tables: %w", err)
	}
	return nil
}

// Create inserts the restaurant and links it to the given cuisines
func (r *GormRestaurantRepository) Create(ctx context.Context, restaurant *domain.Restaurant, cuisineIDs []uint) error {
	ctx, span := startSpan(ctx, "Restaurant.Create",
		attribute.String("restaurant.name", restaurant.Name),
		attribute.Int("restaurant.cuisines", len(cuisineIDs)),
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(cuisineIDs) > 0 {
			var cuisines []domain.Cuisine
			if err := tx.Where("id IN ?", cuisineIDs).Find(&cuisines).Error; err != nil {
				return err
			}
			if len(cuisines) != countDistinct(cuisineIDs) {
				return fmt.Errorf("%w: unknown cuisine id", domain.ErrInvalidInput)
			}
			restaurant.Cuisines = cuisines
		}
		return tx.Create(restaurant).Error
	})
	if err != nil && !errors.Is(err, domain.ErrInvalidInput) {
		err = fmt.Errorf("failed to create restaurant: %w", err)
	}
	if err == nil {
		span.SetAttributes(restaurantAttr(restaurant.ID))
	}
	return finish(span, err)
}

// FindByID loads a restaurant with its images and cuisines
func (r *GormRestaurantRepository) FindByID(ctx context.Context, id uint) (*domain.Restaurant, error) {
	ctx, span := startSpan(ctx, "Restaurant.FindByID", restaurantAttr(id))

	var restaurant domain.Restaurant
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Cuisines", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		First(&restaurant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, finish(span, fmt.Errorf("restaurant %d: %w", id, domain.ErrNotFound))
		}
		return nil, finish(span, fmt.Errorf("failed to find restaurant: %w", err))
	}
	return &restaurant, finish(span, nil)
}

// Exists reports whether a restaurant with id exists
func (r *GormRestaurantRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Restaurant{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check restaurant: %w", err)
	}
	return count > 0, nil
}

// List returns one page of restaurants matching spec plus the total match count
func (r *GormRestaurantRepository) List(ctx context.Context, spec filter.Spec, limit, offset int) ([]domain.Restaurant, int64, error) {
	ctx, span := startSpan(ctx, "Restaurant.List",
		attribute.Int("filter.predicates", len(spec.Predicates)),
		attribute.Int("page.limit", limit),
		attribute.Int("page.offset", offset),
	)

	base := func() *gorm.DB {
		return applyPredicates(r.db, r.db.WithContext(ctx).Model(&domain.Restaurant{}), spec.Predicates)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, finish(span, fmt.Errorf("failed to count restaurants: %w", err))
	}

	var restaurants []domain.Restaurant
	query := applyOrders(base(), spec.Orders).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Cuisines")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&restaurants).Error; err != nil {
		return nil, 0, finish(span, fmt.Errorf("failed to list restaurants: %w", err))
	}

	span.SetAttributes(attribute.Int64("result.total", total))
	return restaurants, total, finish(span, nil)
}

// AddImage stores an image path for an existing restaurant
func (r *GormRestaurantRepository) AddImage(ctx context.Context, image *domain.RestaurantImage) error {
	ctx, span := startSpan(ctx, "Restaurant.AddImage", restaurantAttr(image.RestaurantID))
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return finish(span, fmt.Errorf("failed to add image: %w", err))
	}
	return finish(span, nil)
}

var columns = map[filter.Field]string{
	filter.FieldID:            "id",
	filter.FieldName:          "name",
	filter.FieldCity:          "city",
	filter.FieldCostForTwo:    "cost_for_two",
	filter.FieldDietType:      "diet_type",
	filter.FieldAverageRating: "average_rating",
	filter.FieldSpotlight:     "is_spotlight",
}

// likeEscaper makes user text match literally inside a LIKE pattern
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applyPredicates translates filter predicates into WHERE clauses. root is
// used to build sub-queries without inheriting the statement of db.
func applyPredicates(root, db *gorm.DB, predicates []filter.Predicate) *gorm.DB {
	for _, p := range predicates {
		if p.Field == filter.FieldCuisine {
			sub := root.Table("restaurant_cuisines").Select("restaurant_id").Where("cuisine_id IN ?", p.Set)
			db = db.Where("id IN (?)", sub)
			continue
		}

		col, ok := columns[p.Field]
		if !ok {
			continue
		}
		switch p.Op {
		case filter.OpGTE:
			db = db.Where(col+" >= ?", p.Number)
		case filter.OpLTE:
			db = db.Where(col+" <= ?", p.Number)
		case filter.OpIn:
			db = db.Where(col+" IN ?", p.Set)
		case filter.OpAnyRange:
			parts := make([]string, 0, len(p.Ranges))
			args := make([]interface{}, 0, 2*len(p.Ranges))
			for _, rg := range p.Ranges {
				upper := " < ?"
				if rg.MaxInclusive {
					upper = " <= ?"
				}
				parts = append(parts, "("+col+" >= ? AND "+col+upper+")")
				args = append(args, rg.Min, rg.Max)
			}
			db = db.Where("("+strings.Join(parts, " OR ")+")", args...)
		case filter.OpEqualFold:
			db = db.Where("LOWER("+col+") = ?", strings.ToLower(p.Text))
		case filter.OpContains:
			db = db.Where("LOWER("+col+") LIKE ? ESCAPE '\\'", "%"+likeEscaper.Replace(strings.ToLower(p.Text))+"%")
		case filter.OpIsTrue:
			db = db.Where(col+" = ?", true)
		}
	}
	return db
}

func applyOrders(db *gorm.DB, orders []filter.Order) *gorm.DB {
	for _, o := range orders {
		col, ok := columns[o.Field]
		if !ok {
			continue
		}
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: o.Desc})
	}
	return db
}

func countDistinct(ids []uint) int {
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}

// GormCuisineRepository implements CuisineRepository using GORM
type GormCuisineRepository struct {
	db *gorm.DB
}

// NewGormCuisineRepository creates a new GORM cuisine repository
func NewGormCuisineRepository(db *gorm.DB) *GormCuisineRepository {
	return &GormCuisineRepository{db: db}
}

// Create inserts a cuisine; names are unique case-insensitively
func (r *GormCuisineRepository) Create(ctx context.Context, cuisine *domain.Cuisine) error {
	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&domain.Cuisine{}).Where("LOWER(name) = ?", strings.ToLower(cuisine.Name)).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check cuisine: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("cuisine %q: %w", cuisine.Name, domain.ErrConflict)
	}

	if err := db.Create(cuisine).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("cuisine %q: %w", cuisine.Name, domain.ErrConflict)
		}
		return fmt.Errorf("failed to create cuisine: %w", err)
	}
	return nil
}

// FindAll lists cuisines by name
func (r *GormCuisineRepository) FindAll(ctx context.Context) ([]domain.Cuisine, error) {
	var cuisines []domain.Cuisine
	if err := r.db.WithContext(ctx).Order("name").Find(&cuisines).Error; err != nil {
		return nil, fmt.Errorf("failed to list cuisines: %w", err)
	}
	return cuisines, nil
}

// GormFoodRepository implements FoodRepository using GORM
type GormFoodRepository struct {
	db *gorm.DB
}

// NewGormFoodRepository creates a new GORM food repository
func NewGormFoodRepository(db *gorm.DB) *GormFoodRepository {
	return &GormFoodRepository{db: db}
}

// Create inserts a menu item
func (r *GormFoodRepository) Create(ctx context.Context, food *domain.Food) error {
	ctx, span := startSpan(ctx, "Food.Create", restaurantAttr(food.RestaurantID))
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(food).Error; err != nil {
		return finish(span, fmt.Errorf("failed to create food: %w", err))
	}
	return finish(span, nil)
}

// FindByRestaurant lists the menu of a restaurant ordered by name
func (r *GormFoodRepository) FindByRestaurant(ctx context.Context, restaurantID uint) ([]domain.Food, error) {
	ctx, span := startSpan(ctx, "Food.FindByRestaurant", restaurantAttr(restaurantID))

	var foods []domain.Food
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("name").Order("id").
		Find(&foods).Error
	if err != nil {
		return nil, finish(span, fmt.Errorf("failed to list foods: %w", err))
	}
	return foods, finish(span, nil)
}
