// Package slog provides log/slog decorators for vidmetrics services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/vidmetrics"
)

// Ensure LoggingExtractor implements vidmetrics.Extractor.
var _ vidmetrics.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor, logging a summary of every record and
// the URL of every failed extraction.
type LoggingExtractor struct {
	next   vidmetrics.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next vidmetrics.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the outcome.
func (e *LoggingExtractor) Extract(ctx context.Context, url string) (*vidmetrics.MetricRecord, error) {
	begin := time.Now()
	rec, err := e.next.Extract(ctx, url)
	if err != nil {
		e.logger.Error("extraction failed",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}
	e.logger.Info("extracted",
		"url", url,
		"views", rec.Views,
		"likes", rec.Likes,
		"comments", rec.Comments,
		"shares", rec.Shares,
		"timestamp", rec.Timestamp,
		"duration", time.Since(begin),
	)
	return rec, nil
}
