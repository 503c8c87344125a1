// Package source reads the readiness dataset from files on disk.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/readiness-map-service/internal/domain"
)

// Format is a supported file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatCSVGzip Format = "csv.gz"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
)

var errUnsupportedFormat = errors.New("unsupported file format")

// DetectFormat infers the format from a file name.
func DetectFormat(path string) (Format, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".csv.gz"):
		return FormatCSVGzip, nil
	case strings.HasSuffix(lower, ".csv"):
		return FormatCSV, nil
	case strings.HasSuffix(lower, ".xlsx"):
		return FormatXLSX, nil
	case strings.HasSuffix(lower, ".parquet"):
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, filepath.Ext(path))
	}
}

// Options tunes format-specific behavior.
type Options struct {
	// Sheet selects the XLSX worksheet; empty means the first sheet.
	Sheet string
}

// File is a dataset file whose reader is chosen by extension.
type File struct {
	path   string
	format Format
	sheet  string
}

// Open resolves the reader for path based on its extension. The file itself
// is not touched until Records is called.
func Open(path string, opts Options) (*File, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, domain.NewDataSourceError(path, "open", err)
	}
	return &File{path: path, format: format, sheet: opts.Sheet}, nil
}

// Format reports the detected file format.
func (f *File) Format() Format { return f.format }

// Name identifies the file in logs, errors, and reports.
func (f *File) Name() string {
	if f.format == FormatXLSX {
		return NewXLSX(f.path, f.sheet).Name()
	}
	return f.path
}

// Records reads every data row. A file with a header but no data rows
// returns an empty slice and no error.
func (f *File) Records(ctx context.Context) ([]domain.RawRecord, error) {
	switch f.format {
	case FormatCSV:
		return NewCSV(f.path, false).Records(ctx)
	case FormatCSVGzip:
		return NewCSV(f.path, true).Records(ctx)
	case FormatXLSX:
		return NewXLSX(f.path, f.sheet).Records(ctx)
	default:
		return NewParquet(f.path).Records(ctx)
	}
}

// blankRow reports whether every cell is empty after trimming.
func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// recordsFromRows converts a header-first grid of cells into raw records,
// skipping blank rows. lines holds the source line of each row; when nil,
// rows are numbered from 1 starting at the header.
func recordsFromRows(ctx context.Context, name string, rows [][]string, lines []int) ([]domain.RawRecord, error) {
	if len(rows) == 0 {
		return []domain.RawRecord{}, nil
	}
	idx, err := domain.IndexHeader(rows[0])
	if err != nil {
		return nil, domain.NewDataSourceError(name, "parse", fmt.Errorf("header: %w", err))
	}

	recs := make([]domain.RawRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if i%1024 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if blankRow(row) {
			continue
		}
		line := i + 2
		if lines != nil {
			line = lines[i+1]
		}
		recs = append(recs, idx.Record(row, line))
	}
	return recs, nil
}
