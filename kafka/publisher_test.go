package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func TestPublishReviewChanged(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicReviewChanged {
			t.Errorf("topic = %s", msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "restaurant_42" {
			t.Errorf("key = %s", key)
		}

		value, _ := msg.Value.Encode()
		var event ReviewChangedEvent
		if err := json.Unmarshal(value, &event); err != nil {
			return err
		}
		if event.EventType != EventTypeReviewChanged || event.EventID == "" || event.AverageRating != 4.0 {
			t.Errorf("event = %+v", event)
		}

		var sawType bool
		for _, h := range msg.Headers {
			if string(h.Key) == "event_type" && string(h.Value) == EventTypeReviewChanged {
				sawType = true
			}
		}
		if !sawType {
			t.Error("missing event_type header")
		}
		return nil
	})

	p := NewPublisherWithProducer(producer)
	defer p.Close()

	err := p.PublishReviewChanged(context.Background(), ReviewChangedEvent{
		Action:        ReviewCreated,
		ReviewID:      7,
		RestaurantID:  42,
		UserID:        3,
		Rating:        3,
		AverageRating: 4.0,
	})
	if err != nil {
		t.Fatalf("PublishReviewChanged: %v", err)
	}
}

func TestPublishPasswordResetRequested(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event PasswordResetRequestedEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.Email != "alice@example.com" || event.Token != "tok" {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := NewPublisherWithProducer(producer)
	defer p.Close()

	err := p.PublishPasswordResetRequested(context.Background(), PasswordResetRequestedEvent{
		UserID: 1, Email: "alice@example.com", Token: "tok",
	})
	if err != nil {
		t.Fatalf("PublishPasswordResetRequested: %v", err)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	for i := 0; i < 5; i++ {
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	}

	p := NewPublisherWithProducer(producer)
	defer p.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := p.PublishReviewChanged(ctx, ReviewChangedEvent{RestaurantID: 1}); !errors.Is(err, sarama.ErrOutOfBrokers) {
			t.Fatalf("attempt %d: err = %v, want ErrOutOfBrokers", i, err)
		}
	}

	// the sixth call never reaches the producer
	if err := p.PublishReviewChanged(ctx, ReviewChangedEvent{RestaurantID: 1}); err == nil {
		t.Fatal("expected open breaker error")
	}
}

func TestNoopPublisher(t *testing.T) {
	p, err := NewEventPublisher(nil)
	if err != nil {
		t.Fatalf("NewEventPublisher: %v", err)
	}
	if _, ok := p.(NoopPublisher); !ok {
		t.Fatalf("publisher = %T, want NoopPublisher", p)
	}
	if err := p.PublishReviewChanged(context.Background(), ReviewChangedEvent{}); err != nil {
		t.Errorf("noop publish: %v", err)
	}
}
