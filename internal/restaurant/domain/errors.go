package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("already exists")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Models lists every table of the restaurant module in migration order
func Models() []interface{} {
	return []interface{}{
		&Cuisine{},
		&Restaurant{},
		&RestaurantImage{},
		&Food{},
		&Review{},
		&Bookmark{},
		&Visited{},
	}
}
