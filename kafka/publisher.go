package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/restaurant-discovery/pkg/logger"
)

// EventPublisher publishes domain events
type EventPublisher interface {
	PublishReviewChanged(ctx context.Context, event ReviewChangedEvent) error
	PublishPasswordResetRequested(ctx context.Context, event PasswordResetRequestedEvent) error
	Close() error
}

// Publisher wraps a Kafka sync producer behind a circuit breaker
type Publisher struct {
	producer sarama.SyncProducer
	breaker  *gobreaker.CircuitBreaker[interface{}]
	now      func() time.Time
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka publisher initialized")

	return NewPublisherWithProducer(producer), nil
}

// NewPublisherWithProducer builds a publisher around an existing producer.
// After five consecutive send failures the breaker opens for 30s and
// publishing fails fast.
func NewPublisherWithProducer(producer sarama.SyncProducer) *Publisher {
	breaker := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "kafka-publisher",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Logger.Warn().
				Str("circuit", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Kafka circuit breaker state changed")
		},
	})

	return &Publisher{producer: producer, breaker: breaker, now: time.Now}
}

// PublishReviewChanged publishes a review change keyed by restaurant
func (p *Publisher) PublishReviewChanged(ctx context.Context, event ReviewChangedEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.EventType = EventTypeReviewChanged
	event.Timestamp = p.now()

	return p.publish(ctx, outgoing{
		topic:     TopicReviewChanged,
		eventType: EventTypeReviewChanged,
		eventID:   event.EventID,
		key:       fmt.Sprintf("restaurant_%d", event.RestaurantID),
		payload:   event,
		attrs: []attribute.KeyValue{
			attribute.Int64("restaurant.id", int64(event.RestaurantID)),
			attribute.Int64("review.id", int64(event.ReviewID)),
			attribute.String("review.action", event.Action),
		},
	})
}

// PublishPasswordResetRequested hands a reset token to the mailer, keyed by user
func (p *Publisher) PublishPasswordResetRequested(ctx context.Context, event PasswordResetRequestedEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.EventType = EventTypePasswordResetRequested
	event.Timestamp = p.now()

	return p.publish(ctx, outgoing{
		topic:     TopicPasswordResetRequested,
		eventType: EventTypePasswordResetRequested,
		eventID:   event.EventID,
		key:       fmt.Sprintf("user_%d", event.UserID),
		payload:   event,
		attrs: []attribute.KeyValue{
			attribute.Int64("user.id", int64(event.UserID)),
		},
	})
}

type outgoing struct {
	topic     string
	eventType string
	eventID   string
	key       string
	payload   interface{}
	attrs     []attribute.KeyValue
}

func (p *Publisher) publish(ctx context.Context, msg outgoing) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish."+msg.eventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.topic),
			attribute.String("messaging.destination_kind", "topic"),
			attribute.String("event.type", msg.eventType),
			attribute.String("event.id", msg.eventID),
		}, msg.attrs...)...),
	)
	defer span.End()

	eventBytes, err := json.Marshal(msg.payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(msg.eventType)},
		{Key: []byte("event_id"), Value: []byte(msg.eventID)},
	}
	for key, value := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
	}

	producerMsg := &sarama.ProducerMessage{
		Topic:   msg.topic,
		Key:     sarama.StringEncoder(msg.key),
		Value:   sarama.ByteEncoder(eventBytes),
		Headers: headers,
	}

	var partition int32
	var offset int64
	_, err = p.breaker.Execute(func() (interface{}, error) {
		var sendErr error
		partition, offset, sendErr = p.producer.SendMessage(producerMsg)
		return nil, sendErr
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Error(ctx).
			Err(err).
			Str("topic", msg.topic).
			Str("event_id", msg.eventID).
			Msg("Failed to publish event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "Event published successfully")

	logger.Info(ctx).
		Str("event_id", msg.eventID).
		Str("event_type", msg.eventType).
		Str("topic", msg.topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Event published")

	return nil
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

// PublishReviewChanged drops the event
func (NoopPublisher) PublishReviewChanged(ctx context.Context, event ReviewChangedEvent) error {
	logger.Debug(ctx).Uint("restaurant_id", event.RestaurantID).Msg("Kafka disabled, review event dropped")
	return nil
}

// PublishPasswordResetRequested drops the event
func (NoopPublisher) PublishPasswordResetRequested(ctx context.Context, event PasswordResetRequestedEvent) error {
	logger.Warn(ctx).Uint("user_id", event.UserID).Msg("Kafka disabled, password reset mail not sent")
	return nil
}

// Close is a no-op
func (NoopPublisher) Close() error { return nil }

// NewEventPublisher returns a Kafka publisher, or a NoopPublisher when
// brokers is empty.
func NewEventPublisher(brokers []string) (EventPublisher, error) {
	if len(brokers) == 0 {
		logger.Logger.Warn().Msg("No Kafka brokers configured, events are disabled")
		return NoopPublisher{}, nil
	}
	return NewPublisher(brokers)
}
