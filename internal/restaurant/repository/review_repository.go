package repository

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/restaurant-discovery/internal/restaurant/domain"
	"github.com/tair/restaurant-discovery/internal/restaurant/rating"
)

// GormReviewRepository implements ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GORM review repository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Upsert creates or updates the user's review of a restaurant and
// recomputes the restaurant's average rating in the same transaction.
func (r *GormReviewRepository) Upsert(ctx context.Context, userID, restaurantID uint, stars int, comment string) (*domain.UpsertResult, error) {
	ctx, span := startSpan(ctx, "Review.Upsert",
		userAttr(userID),
		restaurantAttr(restaurantID),
		attribute.Int("review.rating", stars),
	)

	if !rating.Valid(stars) {
		return nil, finish(span, domain.ErrInvalidRating)
	}

	result := &domain.UpsertResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRestaurant(tx, restaurantID); err != nil {
			return err
		}

		var review domain.Review
		err := tx.Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).First(&review).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			review = domain.Review{UserID: userID, RestaurantID: restaurantID, Rating: stars, Comment: comment}
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "restaurant_id"}},
				DoNothing: true,
			}).Create(&review)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				result.Created = true
				break
			}
			// a concurrent request inserted first; fall through to update it
			if err := tx.Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).First(&review).Error; err != nil {
				return err
			}
			if err := updateReview(tx, &review, stars, comment); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := updateReview(tx, &review, stars, comment); err != nil {
				return err
			}
		}

		avg, err := recomputeAverage(tx, restaurantID)
		if err != nil {
			return err
		}
		result.Review = &review
		result.AverageRating = avg
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			err = fmt.Errorf("failed to save review: %w", err)
		}
		return nil, finish(span, err)
	}

	span.SetAttributes(
		attribute.Bool("review.created", result.Created),
		attribute.Float64("restaurant.average_rating", result.AverageRating),
	)
	return result, finish(span, nil)
}

func updateReview(tx *gorm.DB, review *domain.Review, stars int, comment string) error {
	review.Rating = stars
	review.Comment = comment
	return tx.Omit(clause.Associations).Save(review).Error
}

// Delete removes the review when userID owns it and recomputes the
// restaurant's average rating.
func (r *GormReviewRepository) Delete(ctx context.Context, reviewID, userID uint) (uint, float64, error) {
	ctx, span := startSpan(ctx, "Review.Delete",
		attribute.Int64("review.id", int64(reviewID)),
		userAttr(userID),
	)

	var restaurantID uint
	var avg float64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review domain.Review
		if err := tx.First(&review, reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("review %d: %w", reviewID, domain.ErrNotFound)
			}
			return err
		}
		if review.UserID != userID {
			return fmt.Errorf("review %d: %w", reviewID, domain.ErrForbidden)
		}
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}

		restaurantID = review.RestaurantID
		var err error
		avg, err = recomputeAverage(tx, restaurantID)
		return err
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrForbidden) {
			err = fmt.Errorf("failed to delete review: %w", err)
		}
		return 0, 0, finish(span, err)
	}
	return restaurantID, avg, finish(span, nil)
}

// FindByID loads a single review
func (r *GormReviewRepository) FindByID(ctx context.Context, id uint) (*domain.Review, error) {
	var review domain.Review
	if err := r.db.WithContext(ctx).First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("review %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return &review, nil
}

// FindByRestaurant lists a restaurant's reviews newest first, with authors
func (r *GormReviewRepository) FindByRestaurant(ctx context.Context, restaurantID uint, limit, offset int) ([]domain.ReviewView, int64, error) {
	ctx, span := startSpan(ctx, "Review.FindByRestaurant", restaurantAttr(restaurantID))
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&domain.Review{}).Where("restaurant_id = ?", restaurantID).Count(&total).Error; err != nil {
		return nil, 0, finish(span, fmt.Errorf("failed to count reviews: %w", err))
	}

	var views []domain.ReviewView
	query := db.Model(&domain.Review{}).
		Select("reviews.*, users.username AS username").
		Joins("LEFT JOIN users ON users.id = reviews.user_id").
		Where("reviews.restaurant_id = ?", restaurantID).
		Order("reviews.created_at DESC").
		Order("reviews.id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Scan(&views).Error; err != nil {
		return nil, 0, finish(span, fmt.Errorf("failed to list reviews: %w", err))
	}
	return views, total, finish(span, nil)
}

// RatingCounts returns the number of reviews per star value
func (r *GormReviewRepository) RatingCounts(ctx context.Context, restaurantID uint) (map[int]int64, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("restaurant_id = ?", restaurantID).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count ratings: %w", err)
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.Rating] = row.Count
	}
	return counts, nil
}

func requireRestaurant(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&domain.Restaurant{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("restaurant %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// recomputeAverage persists the rounded mean of the restaurant's ratings
func recomputeAverage(tx *gorm.DB, restaurantID uint) (float64, error) {
	var ratings []int
	if err := tx.Model(&domain.Review{}).Where("restaurant_id = ?", restaurantID).Pluck("rating", &ratings).Error; err != nil {
		return 0, err
	}

	avg := rating.Average(ratings)
	err := tx.Model(&domain.Restaurant{}).Where("id = ?", restaurantID).Update("average_rating", avg).Error
	return avg, err
}
