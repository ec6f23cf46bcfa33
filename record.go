package vidmetrics

import (
	"strings"
	"time"
)

// Placeholder is stored in place of a metric that could not be located on
// the page, keeping every column populated with a string.
const Placeholder = "N/A"

// TimestampLayout is the UTC millisecond ISO-8601 layout used for
// MetricRecord.Timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Column describes one column of the persisted table.
type Column struct {
	Header string
	Key    string
	Width  float64
}

// Columns is the fixed table schema, in persisted order.
var Columns = []Column{
	{Header: "Views", Key: "views", Width: 15},
	{Header: "Likes", Key: "likes", Width: 15},
	{Header: "Comments", Key: "comments", Width: 15},
	{Header: "Shares", Key: "shares", Width: 15},
	{Header: "Timestamp", Key: "timestamp", Width: 25},
}

// RawMetrics holds the text read from a rendered page, before a capture
// time is attached.
type RawMetrics struct {
	Views    string
	Likes    string
	Comments string
	Shares   string
}

// Normalize attaches the capture time and returns the resulting record.
// Empty fields become Placeholder; other values pass through unchanged.
func (r RawMetrics) Normalize(at time.Time) *MetricRecord {
	return &MetricRecord{
		Views:     orPlaceholder(r.Views),
		Likes:     orPlaceholder(r.Likes),
		Comments:  orPlaceholder(r.Comments),
		Shares:    orPlaceholder(r.Shares),
		Timestamp: at.UTC().Format(TimestampLayout),
	}
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// MetricRecord is one timestamped observation of a video page.
// Values are the raw rendered text (e.g. "1.2M"). Records are not modified
// after creation.
type MetricRecord struct {
	Views     string `json:"views"`
	Likes     string `json:"likes"`
	Comments  string `json:"comments"`
	Shares    string `json:"shares"`
	Timestamp string `json:"timestamp"`
}

// Values returns the record fields in Columns order.
func (r *MetricRecord) Values() []string {
	return []string{r.Views, r.Likes, r.Comments, r.Shares, r.Timestamp}
}

// RecordFromValues builds a record from a persisted row in Columns order.
// Missing trailing cells become Placeholder.
func RecordFromValues(values []string) *MetricRecord {
	cell := func(i int) string {
		if i < len(values) {
			return orPlaceholder(values[i])
		}
		return Placeholder
	}
	return &MetricRecord{
		Views:     cell(0),
		Likes:     cell(1),
		Comments:  cell(2),
		Shares:    cell(3),
		Timestamp: cell(4),
	}
}

// Selectors holds the CSS selectors locating each metric on a page.
type Selectors struct {
	Views    string
	Likes    string
	Comments string
	Shares   string
}

// DefaultSelectors returns the data-e2e selectors used on TikTok video pages.
func DefaultSelectors() Selectors {
	return Selectors{
		Views:    `strong[data-e2e="like-count"]`,
		Likes:    `strong[data-e2e="comment-count"]`,
		Comments: `strong[data-e2e="undefined-count"]`,
		Shares:   `strong[data-e2e="share-count"]`,
	}
}

// Validate returns an error if any selector is empty.
func (s Selectors) Validate() error {
	if s.Views == "" || s.Likes == "" || s.Comments == "" || s.Shares == "" {
		return Errorf(EINVALID, "all four metric selectors required")
	}
	return nil
}
