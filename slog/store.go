package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/vidmetrics"
)

// Ensure LoggingStore implements vidmetrics.MetricsStore.
var _ vidmetrics.MetricsStore = (*LoggingStore)(nil)

// LoggingStore wraps a MetricsStore with logging.
type LoggingStore struct {
	next   vidmetrics.MetricsStore
	logger *slog.Logger
}

// NewLoggingStore creates a new LoggingStore.
func NewLoggingStore(next vidmetrics.MetricsStore, logger *slog.Logger) *LoggingStore {
	return &LoggingStore{next: next, logger: logger}
}

// Persist delegates to the wrapped store and logs the operation.
func (s *LoggingStore) Persist(ctx context.Context, records []*vidmetrics.MetricRecord) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("persist",
			"count", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Persist(ctx, records)
}

// Records delegates to the wrapped store.
func (s *LoggingStore) Records(ctx context.Context) ([]*vidmetrics.MetricRecord, error) {
	return s.next.Records(ctx)
}
