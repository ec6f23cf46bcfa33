// Package goquery reads metric text from rendered HTML using CSS selectors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/vidmetrics"
)

// Ensure Parser implements vidmetrics.MetricParser at compile time.
var _ vidmetrics.MetricParser = (*Parser)(nil)

// Parser implements vidmetrics.MetricParser over a single DOM snapshot, so
// all four values describe the same moment of the page.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseMetrics returns the trimmed text of the first element matching each
// selector. Selectors matching nothing, or matching only whitespace, yield
// vidmetrics.Placeholder.
func (p *Parser) ParseMetrics(html string, sel vidmetrics.Selectors) (vidmetrics.RawMetrics, error) {
	if err := sel.Validate(); err != nil {
		return vidmetrics.RawMetrics{}, err
	}
	if strings.TrimSpace(html) == "" {
		return vidmetrics.RawMetrics{}, vidmetrics.Errorf(vidmetrics.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return vidmetrics.RawMetrics{}, vidmetrics.Errorf(vidmetrics.EINVALID, "failed to parse HTML: %v", err)
	}

	return vidmetrics.RawMetrics{
		Views:    firstText(doc, sel.Views),
		Likes:    firstText(doc, sel.Likes),
		Comments: firstText(doc, sel.Comments),
		Shares:   firstText(doc, sel.Shares),
	}, nil
}

func firstText(doc *goquery.Document, selector string) string {
	text := strings.TrimSpace(doc.Find(selector).First().Text())
	if text == "" {
		return vidmetrics.Placeholder
	}
	return text
}
