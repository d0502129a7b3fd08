package domain

import (
	"context"
	"time"
)

// Review is one user's rating of a restaurant. A user holds at most one
// review per restaurant.
type Review struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_review_user_restaurant"`
	RestaurantID uint      `json:"restaurant_id" gorm:"not null;uniqueIndex:idx_review_user_restaurant;index"`
	Rating       int       `json:"rating" gorm:"not null;check:chk_review_rating,rating >= 1 AND rating <= 5"`
	Comment      string    `json:"comment" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Restaurant *Restaurant `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name
func (Review) TableName() string {
	return "reviews"
}

// ReviewView is a review joined with its author's username
type ReviewView struct {
	Review
	Username string `json:"username"`
}

// UpsertResult reports the outcome of a review upsert
type UpsertResult struct {
	Review        *Review
	Created       bool
	AverageRating float64
}

// ReviewRepository defines the contract for review data access. Every
// mutation recomputes the restaurant's average rating in the same
// transaction.
type ReviewRepository interface {
	Upsert(ctx context.Context, userID, restaurantID uint, rating int, comment string) (*UpsertResult, error)
	Delete(ctx context.Context, reviewID, userID uint) (restaurantID uint, average float64, err error)
	FindByID(ctx context.Context, id uint) (*Review, error)
	FindByRestaurant(ctx context.Context, restaurantID uint, limit, offset int) ([]ReviewView, int64, error)
	RatingCounts(ctx context.Context, restaurantID uint) (map[int]int64, error)
}
