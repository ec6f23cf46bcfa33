package vidmetrics

import "context"

// MetricsStore persists records in an append-only table.
type MetricsStore interface {
	// Persist appends records, in order, after all existing rows.
	// The header is written only when the table is first created.
	Persist(ctx context.Context, records []*MetricRecord) error

	// Records returns all persisted records in capture order.
	Records(ctx context.Context) ([]*MetricRecord, error)
}
