package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/vidmetrics"
	"github.com/fwojciec/vidmetrics/mock"
	vmslog "github.com/fwojciec/vidmetrics/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("logs record summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		want := &vidmetrics.MetricRecord{
			Views:     "10K",
			Likes:     "500",
			Comments:  "N/A",
			Shares:    "20",
			Timestamp: "2024-08-20T10:00:00.000Z",
		}
		inner := &mock.Extractor{
			ExtractFn: func(ctx context.Context, url string) (*vidmetrics.MetricRecord, error) {
				return want, nil
			},
		}

		rec, err := vmslog.NewLoggingExtractor(inner, logger).Extract(context.Background(), "https://www.tiktok.com/@a/video/1")

		require.NoError(t, err)
		assert.Equal(t, want, rec)
		output := buf.String()
		assert.Contains(t, output, "extracted")
		assert.Contains(t, output, "url=https://www.tiktok.com/@a/video/1")
		assert.Contains(t, output, "views=10K")
		assert.Contains(t, output, "likes=500")
		assert.Contains(t, output, "comments=N/A")
		assert.Contains(t, output, "shares=20")
		assert.Contains(t, output, "timestamp=2024-08-20T10:00:00.000Z")
	})

	t.Run("logs URL and error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Extractor{
			ExtractFn: func(ctx context.Context, url string) (*vidmetrics.MetricRecord, error) {
				return nil, errors.New("navigation timeout")
			},
		}

		rec, err := vmslog.NewLoggingExtractor(inner, logger).Extract(context.Background(), "https://www.tiktok.com/@a/video/1")

		require.Error(t, err)
		assert.Nil(t, rec)
		output := buf.String()
		assert.Contains(t, output, "level=ERROR")
		assert.Contains(t, output, "extraction failed")
		assert.Contains(t, output, "url=https://www.tiktok.com/@a/video/1")
		assert.Contains(t, output, "err=\"navigation timeout\"")
	})
}
