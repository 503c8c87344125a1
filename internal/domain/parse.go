package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Canonical column names of the readiness dataset.
const (
	ColumnBase      = "Base"
	ColumnLatitude  = "Latitude"
	ColumnLongitude = "Longitude"
	ColumnReadiness = "Readiness"
)

// columnAliases maps lower-cased header spellings to canonical column names.
var columnAliases = map[string]string{
	"base":      ColumnBase,
	"name":      ColumnBase,
	"base name": ColumnBase,
	"latitude":  ColumnLatitude,
	"lat":       ColumnLatitude,
	"longitude": ColumnLongitude,
	"lon":       ColumnLongitude,
	"lng":       ColumnLongitude,
	"long":      ColumnLongitude,
	"readiness": ColumnReadiness,
	"score":     ColumnReadiness,
}

// ColumnIndex locates the four dataset columns within a header row.
type ColumnIndex struct {
	Base, Latitude, Longitude, Readiness int
}

// IndexHeader resolves header cells to column positions. Matching ignores
// case and surrounding whitespace; the first occurrence of a column wins.
func IndexHeader(header []string) (ColumnIndex, error) {
	pos := map[string]int{}
	for i, cell := range header {
		name, ok := columnAliases[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff")))]
		if !ok {
			continue
		}
		if _, seen := pos[name]; !seen {
			pos[name] = i
		}
	}

	var missing []string
	for _, col := range []string{ColumnBase, ColumnLatitude, ColumnLongitude, ColumnReadiness} {
		if _, ok := pos[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return ColumnIndex{}, fmt.Errorf("missing column(s): %s", strings.Join(missing, ", "))
	}

	return ColumnIndex{
		Base:      pos[ColumnBase],
		Latitude:  pos[ColumnLatitude],
		Longitude: pos[ColumnLongitude],
		Readiness: pos[ColumnReadiness],
	}, nil
}

// Record extracts a RawRecord from a data row. Short rows yield empty cells,
// which fail later in ParseRecord.
func (c ColumnIndex) Record(row []string, line int) RawRecord {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return RawRecord{
		Base:      cell(c.Base),
		Latitude:  cell(c.Latitude),
		Longitude: cell(c.Longitude),
		Readiness: cell(c.Readiness),
		Line:      line,
	}
}

// ParseRecord converts one raw record to a Base. The region is left unset;
// it is assigned by NewTable.
func ParseRecord(rec RawRecord) (Base, error) {
	lat, err := parseNumber(ColumnLatitude, rec.Latitude)
	if err != nil {
		return Base{}, recordError(rec, err)
	}
	lon, err := parseNumber(ColumnLongitude, rec.Longitude)
	if err != nil {
		return Base{}, recordError(rec, err)
	}
	score, err := parseNumber(ColumnReadiness, rec.Readiness)
	if err != nil {
		return Base{}, recordError(rec, err)
	}
	return Base{
		Name:      strings.TrimSpace(rec.Base),
		Lat:       lat,
		Lon:       lon,
		Readiness: score,
	}, nil
}

// ParseRecords parses every record, failing on the first malformed one.
func ParseRecords(recs []RawRecord) ([]Base, error) {
	rows := make([]Base, 0, len(recs))
	for _, rec := range recs {
		b, err := ParseRecord(rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, b)
	}
	return rows, nil
}

var errNotFinite = errors.New("not a finite number")

// parseNumber parses a required numeric cell.
func parseNumber(column, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%s: empty value", column)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", column, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: %q: %w", column, s, errNotFinite)
	}
	return v, nil
}

func recordError(rec RawRecord, err error) error {
	if rec.Line > 0 {
		return fmt.Errorf("line %d: %w", rec.Line, err)
	}
	return err
}
