package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/tair/restaurant-discovery/internal/restaurant/diet"
	"github.com/tair/restaurant-discovery/internal/restaurant/filter"
)

// ClockLayout is the wall-clock format of opening and closing times
const ClockLayout = "15:04"

// Cuisine represents a cuisine a restaurant can serve
type Cuisine struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:100;not null;uniqueIndex"`
}

// TableName specifies the table name
func (Cuisine) TableName() string {
	return "cuisines"
}

// Restaurant represents the restaurant entity
type Restaurant struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	Name          string            `json:"name" gorm:"size:200;not null;index"`
	City          string            `json:"city" gorm:"size:100;not null;index"`
	Address       string            `json:"address" gorm:"size:500"`
	CostForTwo    int               `json:"cost_for_two" gorm:"not null;index"`
	DietType      diet.Type         `json:"diet_type" gorm:"not null;index"`
	AverageRating float64           `json:"average_rating" gorm:"type:decimal(2,1);not null;default:0;index"`
	OpeningTime   string            `json:"opening_time" gorm:"size:5"`
	ClosingTime   string            `json:"closing_time" gorm:"size:5"`
	IsSpotlight   bool              `json:"is_spotlight" gorm:"not null;default:false"`
	Cuisines      []Cuisine         `json:"cuisines,omitempty" gorm:"many2many:restaurant_cuisines;constraint:OnDelete:CASCADE"`
	Images        []RestaurantImage `json:"images,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// TableName specifies the table name
func (Restaurant) TableName() string {
	return "restaurants"
}

// IsOpenAt reports whether the restaurant is open at the wall-clock time of t.
// Hours that wrap past midnight (22:00-02:00) are supported. Missing or
// malformed hours report closed.
func (r *Restaurant) IsOpenAt(t time.Time) bool {
	open, err := time.Parse(ClockLayout, r.OpeningTime)
	if err != nil {
		return false
	}
	closing, err := time.Parse(ClockLayout, r.ClosingTime)
	if err != nil {
		return false
	}

	now := t.Hour()*60 + t.Minute()
	from := open.Hour()*60 + open.Minute()
	to := closing.Hour()*60 + closing.Minute()

	if from == to {
		return true
	}
	if from < to {
		return now >= from && now < to
	}
	return now >= from || now < to
}

// CuisineIDs returns the ids of the loaded cuisines
func (r *Restaurant) CuisineIDs() []uint {
	ids := make([]uint, 0, len(r.Cuisines))
	for _, c := range r.Cuisines {
		ids = append(ids, c.ID)
	}
	return ids
}

// Subject projects the restaurant onto the attributes filters evaluate
func (r *Restaurant) Subject() filter.Subject {
	return filter.Subject{
		ID:            r.ID,
		Name:          r.Name,
		City:          r.City,
		CostForTwo:    r.CostForTwo,
		DietType:      r.DietType,
		CuisineIDs:    r.CuisineIDs(),
		AverageRating: r.AverageRating,
		IsSpotlight:   r.IsSpotlight,
	}
}

// ValidateHours checks opening and closing times are empty or HH:MM
func ValidateHours(opening, closing string) error {
	for _, v := range []string{opening, closing} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(ClockLayout, v); err != nil {
			return fmt.Errorf("%w: time %q must be HH:MM", ErrInvalidInput, v)
		}
	}
	return nil
}

// Food represents a menu item of a restaurant
type Food struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RestaurantID uint      `json:"restaurant_id" gorm:"not null;index"`
	Name         string    `json:"name" gorm:"size:200;not null"`
	Price        float64   `json:"price" gorm:"type:decimal(8,2);not null"`
	DietType     diet.Type `json:"diet_type" gorm:"not null"`
	Description  string    `json:"description"`

	Restaurant *Restaurant `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name
func (Food) TableName() string {
	return "foods"
}

// RestaurantImage is a stored image path of a restaurant
type RestaurantImage struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	RestaurantID uint   `json:"restaurant_id" gorm:"not null;index"`
	Image        string `json:"image" gorm:"size:500;not null"`
}

// TableName specifies the table name
func (RestaurantImage) TableName() string {
	return "restaurant_images"
}

// RestaurantRepository defines the contract for restaurant data access
type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *Restaurant, cuisineIDs []uint) error
	FindByID(ctx context.Context, id uint) (*Restaurant, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, spec filter.Spec, limit, offset int) ([]Restaurant, int64, error)
	AddImage(ctx context.Context, image *RestaurantImage) error
}

// CuisineRepository defines the contract for cuisine data access
type CuisineRepository interface {
	Create(ctx context.Context, cuisine *Cuisine) error
	FindAll(ctx context.Context) ([]Cuisine, error)
}

// FoodRepository defines the contract for menu data access
type FoodRepository interface {
	Create(ctx context.Context, food *Food) error
	FindByRestaurant(ctx context.Context, restaurantID uint) ([]Food, error)
}
