// Package xlsx stores metric records in a spreadsheet workbook using excelize.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/vidmetrics"
	"github.com/xuri/excelize/v2"
)

// Ensure Store implements vidmetrics.MetricsStore at compile time.
var _ vidmetrics.MetricsStore = (*Store)(nil)

// DefaultSheet is the worksheet holding the metric rows.
const DefaultSheet = "TikTok Metadata"

// DefaultPath is the workbook written when no path is configured.
const DefaultPath = "tiktok_video_metadata.xlsx"

// Store appends records to a worksheet of an .xlsx file. Every Persist reads
// the whole workbook, appends rows and replaces the file through a rename,
// so readers see either the old or the new workbook.
//
// Store assumes it is the only writer of the file.
type Store struct {
	path   string
	sheet  string
	logger *slog.Logger
	mu     sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithSheet sets the worksheet name. Defaults to DefaultSheet.
func WithSheet(name string) Option {
	return func(s *Store) {
		s.sheet = name
	}
}

// WithLogger sets the logger for file diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store writing to path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		sheet:  DefaultSheet,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "xlsx_store", "path", s.path)
	return s
}

// Persist loads the workbook, or starts a new one if the file is missing or
// unreadable, appends one row per record and writes the workbook back.
func (s *Store) Persist(ctx context.Context, records []*vidmetrics.MetricRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.sheet == "" {
		return vidmetrics.Errorf(vidmetrics.EINVALID, "sheet name required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, created := s.load()
	defer f.Close()

	if err := s.ensureSheet(f, created); err != nil {
		return err
	}

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("reading rows of %q: %w", s.sheet, err)
	}
	next := len(rows) + 1
	for i, rec := range records {
		if err := setRow(f, s.sheet, next+i, rec.Values()); err != nil {
			return err
		}
	}

	if err := s.write(f); err != nil {
		return err
	}
	s.logger.Info("workbook written",
		"appended", len(records),
		"rows", len(rows)+len(records),
	)
	return nil
}

// Records returns the data rows of the worksheet in file order. A missing
// file or worksheet yields no records.
func (s *Store) Records(ctx context.Context) ([]*vidmetrics.MetricRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(s.sheet); err != nil || idx == -1 {
		return nil, nil
	}

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("reading rows of %q: %w", s.sheet, err)
	}
	if len(rows) > 0 && isHeader(rows[0]) {
		rows = rows[1:]
	}

	records := make([]*vidmetrics.MetricRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, vidmetrics.RecordFromValues(row))
	}
	return records, nil
}

// load opens the workbook at path. Read failures are not fatal: a fresh
// in-memory workbook is returned instead, reported by created.
func (s *Store) load() (f *excelize.File, created bool) {
	f, err := excelize.OpenFile(s.path)
	if err == nil {
		return f, false
	}
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("creating new workbook")
	} else {
		s.logger.Warn("workbook unreadable, creating new workbook", "err", err)
	}
	return excelize.NewFile(), true
}

// ensureSheet creates the worksheet with its header row unless it exists.
// An existing worksheet is reused untouched.
func (s *Store) ensureSheet(f *excelize.File, created bool) error {
	idx, err := f.GetSheetIndex(s.sheet)
	if err != nil {
		return fmt.Errorf("looking up sheet %q: %w", s.sheet, err)
	}
	if idx != -1 {
		return nil
	}

	if created {
		// Rename the default sheet of a new file rather than leaving it empty.
		if err := f.SetSheetName(f.GetSheetName(0), s.sheet); err != nil {
			return fmt.Errorf("renaming default sheet: %w", err)
		}
	} else if _, err := f.NewSheet(s.sheet); err != nil {
		return fmt.Errorf("creating sheet %q: %w", s.sheet, err)
	}

	headers := make([]string, len(vidmetrics.Columns))
	for i, col := range vidmetrics.Columns {
		headers[i] = col.Header
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.sheet, name, name, col.Width); err != nil {
			return fmt.Errorf("setting width of column %s: %w", name, err)
		}
	}
	return setRow(f, s.sheet, 1, headers)
}

// write serializes the workbook to a temporary file next to path and renames
// it over path.
func (s *Store) write(f *excelize.File) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("serializing workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}
	return nil
}

func isHeader(row []string) bool {
	if len(row) < len(vidmetrics.Columns) {
		return false
	}
	for i, col := range vidmetrics.Columns {
		if row[i] != col.Header {
			return false
		}
	}
	return true
}
