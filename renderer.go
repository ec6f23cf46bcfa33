package vidmetrics

import "context"

// Renderer loads a page in a browser and returns the rendered HTML.
type Renderer interface {
	// Render navigates to the URL, waits until the page is considered
	// loaded and the metric elements have appeared, and returns the HTML.
	// Every browser resource opened for the call is released before
	// Render returns. The context controls cancellation.
	Render(ctx context.Context, url string) (html string, err error)
}

// MetricParser reads metric text out of rendered HTML.
type MetricParser interface {
	// ParseMetrics returns the text of the first element matching each
	// selector, or Placeholder where nothing matches.
	ParseMetrics(html string, sel Selectors) (RawMetrics, error)
}

// Extractor produces a timestamped record for a target URL.
type Extractor interface {
	// Extract renders the target and returns its metrics.
	// A returned error means the target is skipped for this tick.
	Extract(ctx context.Context, url string) (*MetricRecord, error)
}

// DomainLimiter controls request rates per domain.
type DomainLimiter interface {
	// Wait blocks until a request to the domain is allowed.
	Wait(ctx context.Context, domain string) error
}
