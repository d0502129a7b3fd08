package repository

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/restaurant-discovery/pkg/tracing"
)

const tracerName = "restaurant-repository"

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracing.StartSpan(ctx, tracerName, "repository."+name, attrs...)
}

// finish records err on the span, ends it and passes err through
func finish(span trace.Span, err error) error {
	tracing.RecordError(span, err)
	span.End()
	return err
}

func restaurantAttr(id uint) attribute.KeyValue {
	return attribute.Int64("restaurant.id", int64(id))
}

func userAttr(id uint) attribute.KeyValue {
	return attribute.Int64("user.id", int64(id))
}
