package mock

import (
	"context"

	"github.com/fwojciec/vidmetrics"
)

// Compile-time interface verification.
var (
	_ vidmetrics.Renderer     = (*Renderer)(nil)
	_ vidmetrics.MetricParser = (*MetricParser)(nil)
)

// Renderer is a mock implementation of vidmetrics.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, url string) (string, error)
}

func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	return r.RenderFn(ctx, url)
}

// MetricParser is a mock implementation of vidmetrics.MetricParser.
type MetricParser struct {
	ParseMetricsFn func(html string, sel vidmetrics.Selectors) (vidmetrics.RawMetrics, error)
}

func (p *MetricParser) ParseMetrics(html string, sel vidmetrics.Selectors) (vidmetrics.RawMetrics, error) {
	return p.ParseMetricsFn(html, sel)
}
