package track

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/vidmetrics"
)

// Ensure Extractor implements vidmetrics.Extractor at compile time.
var _ vidmetrics.Extractor = (*Extractor)(nil)

// Extractor renders a target, reads its metrics and stamps the result.
// Timestamps handed out by one Extractor never decrease, even if the wall
// clock steps backwards.
type Extractor struct {
	Renderer  vidmetrics.Renderer
	Parser    vidmetrics.MetricParser
	Selectors vidmetrics.Selectors

	// Now returns the capture time. Defaults to time.Now.
	Now func() time.Time

	mu   sync.Mutex
	last time.Time
}

// NewExtractor creates an Extractor using the given renderer, parser and selectors.
func NewExtractor(renderer vidmetrics.Renderer, parser vidmetrics.MetricParser, sel vidmetrics.Selectors) *Extractor {
	return &Extractor{
		Renderer:  renderer,
		Parser:    parser,
		Selectors: sel,
	}
}

// Extract renders the URL and returns a complete record. Any failure is
// returned as an error naming the URL; no record is produced in that case.
func (e *Extractor) Extract(ctx context.Context, url string) (*vidmetrics.MetricRecord, error) {
	if _, err := vidmetrics.ParseTarget(url); err != nil {
		return nil, err
	}

	html, err := e.Renderer.Render(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", url, err)
	}

	raw, err := e.Parser.ParseMetrics(html, e.Selectors)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}

	return raw.Normalize(e.stamp()), nil
}

func (e *Extractor) stamp() time.Time {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	t := now()

	e.mu.Lock()
	defer e.mu.Unlock()
	if t.Before(e.last) {
		t = e.last
	}
	e.last = t
	return t
}
