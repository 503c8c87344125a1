package source

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/couchcryptid/readiness-map-service/internal/domain"
	"github.com/klauspost/pgzip"
)

// CSV reads a comma-separated file with a header row, optionally gzipped.
type CSV struct {
	path    string
	gzipped bool
}

// NewCSV creates a CSV source. Set gzipped for .csv.gz files.
func NewCSV(path string, gzipped bool) *CSV {
	return &CSV{path: path, gzipped: gzipped}
}

func (c *CSV) Name() string { return c.path }

// Records reads the whole file. Open, decompression, and CSV syntax errors
// are returned as *domain.DataSourceError.
func (c *CSV) Records(ctx context.Context) ([]domain.RawRecord, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, domain.NewDataSourceError(c.path, "open", err)
	}
	defer f.Close()

	var r io.Reader = f
	if c.gzipped {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, domain.NewDataSourceError(c.path, "read", err)
		}
		defer gz.Close()
		r = gz
	}

	rows, lines, err := readCSV(r)
	if err != nil {
		return nil, domain.NewDataSourceError(c.path, "read", err)
	}
	return recordsFromRows(ctx, c.path, rows, lines)
}

// readCSV returns every row with the file line it started on. encoding/csv
// skips empty lines, so positions cannot be derived from row indexes.
func readCSV(r io.Reader) ([][]string, []int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		rows  [][]string
		lines []int
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, lines, nil
		}
		if err != nil {
			return nil, nil, err
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
}
