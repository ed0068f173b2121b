package storage

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/rezkam/gtf/internal/storage"

type storeMetrics struct {
	fetches     metric.Int64Counter
	commits     metric.Int64Counter
	localWrites metric.Int64Counter
}

func newStoreMetrics(mp metric.MeterProvider) (*storeMetrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	fetches, err := meter.Int64Counter("gtf.storage.remote.fetches",
		metric.WithDescription("Remote document fetches by outcome"))
	if err != nil {
		return nil, err
	}
	commits, err := meter.Int64Counter("gtf.storage.remote.commits",
		metric.WithDescription("Remote document commits by outcome"))
	if err != nil {
		return nil, err
	}
	localWrites, err := meter.Int64Counter("gtf.storage.local.writes",
		metric.WithDescription("Local document writes by outcome"))
	if err != nil {
		return nil, err
	}

	return &storeMetrics{fetches: fetches, commits: commits, localWrites: localWrites}, nil
}

// outcome classifies err for the outcome attribute.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrRemoteNotFound), errors.Is(err, ErrLocalNotFound):
		return "not_found"
	case errors.Is(err, ErrVersionConflict):
		return "conflict"
	case errors.Is(err, ErrRemoteUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrMalformedDocument):
		return "malformed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

func record(ctx context.Context, c metric.Int64Counter, err error) {
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome(err))))
}
