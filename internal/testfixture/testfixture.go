// Package testfixture builds throwaway databases and seed rows for tests.
// Builders take their dependencies explicitly and return plain values.
package testfixture

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	accountdomain "github.com/tair/restaurant-discovery/internal/account/domain"
	"github.com/tair/restaurant-discovery/internal/restaurant/diet"
	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
	"github.com/tair/restaurant-discovery/pkg/auth"
)

// Password is the plaintext password of every fixture user
const Password = "password123"

// NewDB opens a private in-memory SQLite database with every table migrated.
// A single connection serialises transactions the way row locks would.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	models := append(accountdomain.Models(), domain.Models()...)
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// User inserts an active user whose password is Password
func User(t testing.TB, db *gorm.DB, username string) accountdomain.User {
	t.Helper()
	return insertUser(t, db, username, auth.RoleUser)
}

// Admin inserts an active admin user
func Admin(t testing.TB, db *gorm.DB, username string) accountdomain.User {
	t.Helper()
	return insertUser(t, db, username, auth.RoleAdmin)
}

func insertUser(t testing.TB, db *gorm.DB, username, role string) accountdomain.User {
	t.Helper()
	hash, err := auth.HashPassword(Password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := accountdomain.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// Cuisine inserts a cuisine
func Cuisine(t testing.TB, db *gorm.DB, name string) domain.Cuisine {
	t.Helper()
	cuisine := domain.Cuisine{Name: name}
	if err := db.Create(&cuisine).Error; err != nil {
		t.Fatalf("create cuisine %s: %v", name, err)
	}
	return cuisine
}

// RestaurantOption adjusts the default restaurant before insertion
type RestaurantOption func(*domain.Restaurant)

// WithName sets the restaurant name
func WithName(name string) RestaurantOption {
	return func(r *domain.Restaurant) { r.Name = name }
}

// WithCost sets cost_for_two
func WithCost(cost int) RestaurantOption {
	return func(r *domain.Restaurant) { r.CostForTwo = cost }
}

// WithDiet sets the diet type
func WithDiet(d diet.Type) RestaurantOption {
	return func(r *domain.Restaurant) { r.DietType = d }
}

// WithCity sets the city
func WithCity(city string) RestaurantOption {
	return func(r *domain.Restaurant) { r.City = city }
}

// WithRating sets the stored average rating directly
func WithRating(avg float64) RestaurantOption {
	return func(r *domain.Restaurant) { r.AverageRating = avg }
}

// WithCuisines links the restaurant to cuisines
func WithCuisines(cuisines ...domain.Cuisine) RestaurantOption {
	return func(r *domain.Restaurant) { r.Cuisines = append(r.Cuisines, cuisines...) }
}

// WithSpotlight marks the restaurant as spotlighted
func WithSpotlight() RestaurantOption {
	return func(r *domain.Restaurant) { r.IsSpotlight = true }
}

// Restaurant inserts "Burger King" (veg, 400 for two, 09:00-22:00)
// adjusted by opts.
func Restaurant(t testing.TB, db *gorm.DB, opts ...RestaurantOption) domain.Restaurant {
	t.Helper()
	restaurant := domain.Restaurant{
		Name:        "Burger King",
		City:        "Pune",
		Address:     "FC Road",
		CostForTwo:  400,
		DietType:    diet.Veg,
		OpeningTime: "09:00",
		ClosingTime: "22:00",
	}
	for _, opt := range opts {
		opt(&restaurant)
	}
	if err := db.Create(&restaurant).Error; err != nil {
		t.Fatalf("create restaurant %s: %v", restaurant.Name, err)
	}
	return restaurant
}

// Food inserts "Fried Rice" priced 150 on the restaurant's menu
func Food(t testing.TB, db *gorm.DB, restaurantID uint, name string, price float64) domain.Food {
	t.Helper()
	if name == "" {
		name = "Fried Rice"
	}
	if price == 0 {
		price = 150
	}
	food := domain.Food{
		RestaurantID: restaurantID,
		Name:         name,
		Price:        price,
		DietType:     diet.Veg,
		Description:  "House special",
	}
	if err := db.Create(&food).Error; err != nil {
		t.Fatalf("create food %s: %v", name, err)
	}
	return food
}
