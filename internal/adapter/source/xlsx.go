package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/readiness-map-service/internal/domain"
	"github.com/xuri/excelize/v2"
)

// XLSX reads one worksheet of an Excel workbook. The first row is the header.
type XLSX struct {
	path  string
	sheet string
}

// NewXLSX creates an XLSX source. An empty sheet selects the first worksheet.
func NewXLSX(path, sheet string) *XLSX {
	return &XLSX{path: path, sheet: sheet}
}

func (x *XLSX) Name() string {
	if x.sheet == "" {
		return x.path
	}
	return x.path + "#" + x.sheet
}

func (x *XLSX) Records(ctx context.Context) ([]domain.RawRecord, error) {
	f, err := excelize.OpenFile(x.path)
	if err != nil {
		return nil, domain.NewDataSourceError(x.Name(), "open", err)
	}
	defer f.Close()

	sheet := x.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, domain.NewDataSourceError(x.Name(), "read", errors.New("workbook has no sheets"))
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, domain.NewDataSourceError(x.Name(), "read", fmt.Errorf("sheet %q: %w", sheet, err))
	}
	return recordsFromRows(ctx, x.Name(), rows, nil)
}
