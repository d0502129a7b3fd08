package domain

import (
	"context"
	"time"
)

// Bookmark marks a restaurant as a user's favorite. The row's existence is
// the bookmarked state.
type Bookmark struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_bookmark_user_restaurant"`
	RestaurantID uint      `json:"restaurant_id" gorm:"not null;uniqueIndex:idx_bookmark_user_restaurant;index"`
	CreatedAt    time.Time `json:"created_at"`

	Restaurant *Restaurant `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name
func (Bookmark) TableName() string {
	return "bookmarks"
}

// Visited records that a user has been to a restaurant
type Visited struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_visited_user_restaurant"`
	RestaurantID uint      `json:"restaurant_id" gorm:"not null;uniqueIndex:idx_visited_user_restaurant;index"`
	VisitedAt    time.Time `json:"visited_at" gorm:"autoCreateTime"`

	Restaurant *Restaurant `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name
func (Visited) TableName() string {
	return "visited"
}

// AssociationRepository stores one kind of (user, restaurant) toggle row
type AssociationRepository interface {
	// Toggle deletes the row when present, otherwise creates it, and
	// returns the resulting state.
	Toggle(ctx context.Context, userID, restaurantID uint) (bool, error)
	Exists(ctx context.Context, userID, restaurantID uint) (bool, error)
	// Flags returns the subset of restaurantIDs the user has a row for.
	Flags(ctx context.Context, userID uint, restaurantIDs []uint) (map[uint]bool, error)
	ListRestaurants(ctx context.Context, userID uint, limit, offset int) ([]Restaurant, int64, error)
}

// BookmarkRepository is the association store for bookmarks
type BookmarkRepository interface {
	AssociationRepository
}

// VisitedRepository is the association store for visits
type VisitedRepository interface {
	AssociationRepository
}
