package xlsx_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/vidmetrics"
	"github.com/fwojciec/vidmetrics/xlsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func record(views, ts string) *vidmetrics.MetricRecord {
	return &vidmetrics.MetricRecord{
		Views:     views,
		Likes:     "500",
		Comments:  vidmetrics.Placeholder,
		Shares:    "20",
		Timestamp: ts,
	}
}

func readRows(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

var header = []string{"Views", "Likes", "Comments", "Shares", "Timestamp"}

func TestStore_Persist(t *testing.T) {
	t.Parallel()

	t.Run("creates file with header and rows", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "metrics.xlsx")
		store := xlsx.NewStore(path)

		err := store.Persist(context.Background(), []*vidmetrics.MetricRecord{
			record("10K", "2024-08-20T10:00:00.000Z"),
		})

		require.NoError(t, err)
		rows := readRows(t, path, xlsx.DefaultSheet)
		require.Len(t, rows, 2)
		assert.Equal(t, header, rows[0])
		assert.Equal(t, []string{"10K", "500", "N/A", "20", "2024-08-20T10:00:00.000Z"}, rows[1])
	})

	t.Run("new file contains only the metrics sheet", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "metrics.xlsx")
		store := xlsx.NewStore(path)

		require.NoError(t, store.Persist(context.Background(), nil))

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, []string{xlsx.DefaultSheet}, f.GetSheetList())
	})

	t.Run("appends N rows in order after existing rows", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "metrics.xlsx")
		store := xlsx.NewStore(path)
		ctx := context.Background()

		require.NoError(t, store.Persist(ctx, []*vidmetrics.MetricRecord{record("1", "T1")}))
		require.NoError(t, store.Persist(ctx, []*vidmetrics.MetricRecord{
			record("2", "T2"),
			record("3", "T3"),
			record("4", "T4"),
		}))

		rows := readRows(t, path, xlsx.DefaultSheet)
		require.Len(t, rows, 5)
		assert.Equal(t, "1", rows[1][0])
		assert.Equal(t, "2", rows[2][0])
		assert.Equal(t, "3", rows[3][0])
		assert.Equal(t, "4", rows[4][0])
	})

	t.Run("writes header once across persists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "metrics.xlsx")
		ctx := context.Background()

		// A new Store per call, like a restarted process.
		require.NoError(t, xlsx.NewStore(path).Persist(ctx, []*vidmetrics.MetricRecord{record("1", "T1")}))
		require.NoError(t, xlsx.NewStore(path).Persist(ctx, []*vidmetrics.MetricRecord{record("2", "T2")}))

		headers := 0
		for _, row := range readRows(t, path, xlsx.DefaultSheet) {
			if assert.ObjectsAreEqual(header, row) {
				headers++
			}
		}
		assert.Equal(t, 1, headers)
	})

	t.Run("reuses existing sheet and keeps other sheets", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "metrics.xlsx")
		f := excelize.NewFile()
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "notes"))
		_, err := f.NewSheet(xlsx.DefaultSheet)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(xlsx.DefaultSheet, "A1", &header))
		require.NoError(t, f.SetSheetRow(xlsx.DefaultSheet, "A2", &[]string{"old", "1", "2", "3", "T0"}))
		require.NoError(t, f.SaveAs(path))
		require.NoError(t, f.Close())

		err = xlsx.NewStore(path).Persist(context.Background(), []*vidmetrics.MetricRecord{record("new", "T1")})

		require.NoError(t, err)
		rows := readRows(t, path, xlsx.DefaultSheet)
		require.Len(t, rows, 3)
		assert.Equal(t, "old", rows[1][0])
		assert.Equal(t, "new", rows[2][0])
		assert.Equal(t, [][]string{{"notes"}}, readRows(t, path, "Sheet1"))
	})

	t.Run("adds sheet with header to workbook without it", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "metrics.xlsx")
		f := excelize.NewFile()
		require.NoError(t, f.SaveAs(path))
		require.NoError(t, f.Close())

		err := xlsx.NewStore(path).Persist(context.Background(), []*vidmetrics.MetricRecord{record("1", "T1")})

		require.NoError(t, err)
		rows := readRows(t, path, xlsx.DefaultSheet)
		require.Len(t, rows, 2)
		assert.Equal(t, header, rows[0])
	})

	t.Run("custom sheet name", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "metrics.xlsx")
		store := xlsx.NewStore(path, xlsx.WithSheet("Video A"))

		require.NoError(t, store.Persist(context.Background(), []*vidmetrics.MetricRecord{record("1", "T1")}))

		assert.Len(t, readRows(t, path, "Video A"), 2)
	})

	t.Run("unreadable file falls back to new workbook", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "metrics.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0o644))
		var buf bytes.Buffer
		store := xlsx.NewStore(path, xlsx.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

		err := store.Persist(context.Background(), []*vidmetrics.MetricRecord{record("1", "T1")})

		require.NoError(t, err)
		assert.Len(t, readRows(t, path, xlsx.DefaultSheet), 2)
		assert.Contains(t, buf.String(), "workbook unreadable")
	})

	t.Run("logs file creation and write", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "metrics.xlsx")
		var buf bytes.Buffer
		store := xlsx.NewStore(path, xlsx.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

		require.NoError(t, store.Persist(context.Background(), []*vidmetrics.MetricRecord{record("1", "T1")}))

		output := buf.String()
		assert.Contains(t, output, "creating new workbook")
		assert.Contains(t, output, "workbook written")
		assert.Contains(t, output, "appended=1")
	})

	t.Run("creates missing parent directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "data", "tiktok", "metrics.xlsx")

		err := xlsx.NewStore(path).Persist(context.Background(), []*vidmetrics.MetricRecord{record("1", "T1")})

		require.NoError(t, err)
		assert.FileExists(t, path)
	})

	t.Run("returns error when file cannot be written", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
		path := filepath.Join(blocker, "metrics.xlsx") // parent is a regular file

		err := xlsx.NewStore(path).Persist(context.Background(), []*vidmetrics.MetricRecord{record("1", "T1")})

		require.Error(t, err)
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "metrics.xlsx")

		require.NoError(t, xlsx.NewStore(path).Persist(context.Background(), []*vidmetrics.MetricRecord{record("1", "T1")}))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "metrics.xlsx", entries[0].Name())
	})

	t.Run("returns error for canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := xlsx.NewStore(filepath.Join(t.TempDir(), "m.xlsx")).Persist(ctx, nil)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStore_Records(t *testing.T) {
	t.Parallel()

	t.Run("round-trips all appended rows", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "metrics.xlsx")
		store := xlsx.NewStore(path)
		ctx := context.Background()
		first := []*vidmetrics.MetricRecord{record("1", "T1"), record("2", "T2")}
		second := []*vidmetrics.MetricRecord{record("3", "T3")}
		require.NoError(t, store.Persist(ctx, first))
		require.NoError(t, store.Persist(ctx, second))

		got, err := xlsx.NewStore(path).Records(ctx)

		require.NoError(t, err)
		assert.Equal(t, append(first, second...), got)
	})

	t.Run("missing file yields no records", func(t *testing.T) {
		t.Parallel()

		got, err := xlsx.NewStore(filepath.Join(t.TempDir(), "none.xlsx")).Records(context.Background())

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("missing sheet yields no records", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "metrics.xlsx")
		f := excelize.NewFile()
		require.NoError(t, f.SaveAs(path))
		require.NoError(t, f.Close())

		got, err := xlsx.NewStore(path).Records(context.Background())

		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
