package kafka

import "time"

// ReviewChangedEvent is published after a review is created, updated or deleted
type ReviewChangedEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	Action        string    `json:"action"`
	ReviewID      uint      `json:"review_id"`
	RestaurantID  uint      `json:"restaurant_id"`
	UserID        uint      `json:"user_id"`
	Rating        int       `json:"rating,omitempty"`
	AverageRating float64   `json:"average_rating"`
	Timestamp     time.Time `json:"timestamp"`
}

// PasswordResetRequestedEvent hands a reset token to the mailer
type PasswordResetRequestedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Timestamp time.Time `json:"timestamp"`
}

// Review actions
const (
	ReviewCreated = "created"
	ReviewUpdated = "updated"
	ReviewDeleted = "deleted"
)

// Event types
const (
	EventTypeReviewChanged          = "review.changed"
	EventTypePasswordResetRequested = "password_reset.requested"
)

// Kafka topics
const (
	TopicReviewChanged          = "review-changed"
	TopicPasswordResetRequested = "password-reset-requested"
)
