package source

import (
	"context"
	"errors"
	"io"
	"os"
	"strconv"

	"github.com/couchcryptid/readiness-map-service/internal/domain"
	"github.com/parquet-go/parquet-go"
)

// ParquetRow is the on-disk schema of a Parquet readiness dataset.
type ParquetRow struct {
	Base      string  `parquet:"Base"`
	Latitude  float64 `parquet:"Latitude"`
	Longitude float64 `parquet:"Longitude"`
	Readiness float64 `parquet:"Readiness"`
}

// Parquet reads a Parquet file written with the ParquetRow schema.
type Parquet struct {
	path string
}

// NewParquet creates a Parquet source.
func NewParquet(path string) *Parquet {
	return &Parquet{path: path}
}

func (p *Parquet) Name() string { return p.path }

// Records converts typed Parquet rows back to raw records so every format
// goes through the same parsing path.
func (p *Parquet) Records(ctx context.Context) ([]domain.RawRecord, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, domain.NewDataSourceError(p.path, "open", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, domain.NewDataSourceError(p.path, "open", err)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, domain.NewDataSourceError(p.path, "read", err)
	}

	reader := parquet.NewGenericReader[ParquetRow](pf)
	defer reader.Close()

	recs := make([]domain.RawRecord, 0, reader.NumRows())
	buf := make([]ParquetRow, 256)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := reader.Read(buf)
		for i := 0; i < n; i++ {
			recs = append(recs, parquetRecord(buf[i], len(recs)+1))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewDataSourceError(p.path, "read", err)
		}
		if n == 0 {
			break
		}
	}
	return recs, nil
}

func parquetRecord(row ParquetRow, line int) domain.RawRecord {
	return domain.RawRecord{
		Base:      row.Base,
		Latitude:  strconv.FormatFloat(row.Latitude, 'f', -1, 64),
		Longitude: strconv.FormatFloat(row.Longitude, 'f', -1, 64),
		Readiness: strconv.FormatFloat(row.Readiness, 'f', -1, 64),
		Line:      line,
	}
}
