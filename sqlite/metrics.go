package sqlite

import (
	"context"
	"fmt"

	"github.com/fwojciec/vidmetrics"
)

// Compile-time interface verification.
var _ vidmetrics.MetricsStore = (*MetricsStore)(nil)

// MetricsStore implements vidmetrics.MetricsStore using SQLite.
type MetricsStore struct {
	db *DB
}

// NewMetricsStore creates a new MetricsStore.
func NewMetricsStore(db *DB) *MetricsStore {
	return &MetricsStore{db: db}
}

// Persist inserts all records in one transaction, in order. Either every
// record of the batch is stored or none is.
func (s *MetricsStore) Persist(ctx context.Context, records []*vidmetrics.MetricRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO metrics (views, likes, comments, shares, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Views, rec.Likes, rec.Comments, rec.Shares, rec.Timestamp); err != nil {
			return fmt.Errorf("inserting record: %w", err)
		}
	}

	return tx.Commit()
}

// Records returns all records in insertion order.
func (s *MetricsStore) Records(ctx context.Context) ([]*vidmetrics.MetricRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT views, likes, comments, shares, timestamp
		FROM metrics
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*vidmetrics.MetricRecord
	for rows.Next() {
		var rec vidmetrics.MetricRecord
		if err := rows.Scan(&rec.Views, &rec.Likes, &rec.Comments, &rec.Shares, &rec.Timestamp); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
