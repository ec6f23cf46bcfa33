package mock

import (
	"context"

	"github.com/fwojciec/vidmetrics"
)

var _ vidmetrics.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of vidmetrics.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, url string) (*vidmetrics.MetricRecord, error)
}

func (e *Extractor) Extract(ctx context.Context, url string) (*vidmetrics.MetricRecord, error) {
	return e.ExtractFn(ctx, url)
}
