package mock

import (
	"context"

	"github.com/fwojciec/vidmetrics"
)

var _ vidmetrics.MetricsStore = (*MetricsStore)(nil)

// MetricsStore is a mock implementation of vidmetrics.MetricsStore.
type MetricsStore struct {
	PersistFn func(ctx context.Context, records []*vidmetrics.MetricRecord) error
	RecordsFn func(ctx context.Context) ([]*vidmetrics.MetricRecord, error)
}

func (s *MetricsStore) Persist(ctx context.Context, records []*vidmetrics.MetricRecord) error {
	return s.PersistFn(ctx, records)
}

func (s *MetricsStore) Records(ctx context.Context) ([]*vidmetrics.MetricRecord, error) {
	return s.RecordsFn(ctx)
}
