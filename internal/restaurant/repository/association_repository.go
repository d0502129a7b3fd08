package repository

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
)

// associationKind describes one (user, restaurant) toggle table
type associationKind struct {
	name        string
	table       string
	orderColumn string
	model       func() interface{}
	newRow      func(userID, restaurantID uint) interface{}
}

var bookmarkKind = associationKind{
	name:        "bookmark",
	table:       "bookmarks",
	orderColumn: "created_at",
	model:       func() interface{} { return &domain.Bookmark{} },
	newRow: func(userID, restaurantID uint) interface{} {
		return &domain.Bookmark{UserID: userID, RestaurantID: restaurantID}
	},
}

var visitedKind = associationKind{
	name:        "visited",
	table:       "visited",
	orderColumn: "visited_at",
	model:       func() interface{} { return &domain.Visited{} },
	newRow: func(userID, restaurantID uint) interface{} {
		return &domain.Visited{UserID: userID, RestaurantID: restaurantID}
	},
}

// GormAssociationRepository stores toggle rows of a single kind
type GormAssociationRepository struct {
	db   *gorm.DB
	kind associationKind
}

// NewGormBookmarkRepository creates the bookmark association repository
func NewGormBookmarkRepository(db *gorm.DB) *GormAssociationRepository {
	return &GormAssociationRepository{db: db, kind: bookmarkKind}
}

// NewGormVisitedRepository creates the visited association repository
func NewGormVisitedRepository(db *gorm.DB) *GormAssociationRepository {
	return &GormAssociationRepository{db: db, kind: visitedKind}
}

// Toggle runs delete-else-insert in one transaction. The insert is guarded
// by the (user_id, restaurant_id) unique index so concurrent toggles never
// leave two rows.
func (r *GormAssociationRepository) Toggle(ctx context.Context, userID, restaurantID uint) (bool, error) {
	ctx, span := startSpan(ctx, "Association.Toggle",
		attribute.String("association.kind", r.kind.name),
		userAttr(userID),
		restaurantAttr(restaurantID),
	)

	var on bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).Delete(r.kind.model())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			on = false
			return nil
		}

		res = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "restaurant_id"}},
			DoNothing: true,
		}).Create(r.kind.newRow(userID, restaurantID))
		if res.Error != nil {
			return res.Error
		}
		on = true
		return nil
	})
	if err != nil {
		return false, finish(span, fmt.Errorf("failed to toggle %s: %w", r.kind.name, err))
	}

	span.SetAttributes(attribute.Bool("association.state", on))
	return on, finish(span, nil)
}

// Exists reports whether the user has a row for the restaurant
func (r *GormAssociationRepository) Exists(ctx context.Context, userID, restaurantID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(r.kind.model()).
		Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", r.kind.name, err)
	}
	return count > 0, nil
}

// Flags returns which of restaurantIDs the user has a row for
func (r *GormAssociationRepository) Flags(ctx context.Context, userID uint, restaurantIDs []uint) (map[uint]bool, error) {
	flags := make(map[uint]bool, len(restaurantIDs))
	if userID == 0 || len(restaurantIDs) == 0 {
		return flags, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).Model(r.kind.model()).
		Where("user_id = ? AND restaurant_id IN ?", userID, restaurantIDs).
		Pluck("restaurant_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s flags: %w", r.kind.name, err)
	}
	for _, id := range ids {
		flags[id] = true
	}
	return flags, nil
}

// ListRestaurants lists the user's restaurants of this kind, most recent first
func (r *GormAssociationRepository) ListRestaurants(ctx context.Context, userID uint, limit, offset int) ([]domain.Restaurant, int64, error) {
	ctx, span := startSpan(ctx, "Association.ListRestaurants",
		attribute.String("association.kind", r.kind.name),
		userAttr(userID),
	)

	join := fmt.Sprintf("JOIN %s a ON a.restaurant_id = restaurants.id AND a.user_id = ?", r.kind.table)
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.Restaurant{}).Joins(join, userID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, finish(span, fmt.Errorf("failed to count %s: %w", r.kind.name, err))
	}

	var restaurants []domain.Restaurant
	query := base().
		Select("restaurants.*").
		Order(fmt.Sprintf("a.%s DESC", r.kind.orderColumn)).
		Order("restaurants.id").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&restaurants).Error; err != nil {
		return nil, 0, finish(span, fmt.Errorf("failed to list %s: %w", r.kind.name, err))
	}
	return restaurants, total, finish(span, nil)
}
