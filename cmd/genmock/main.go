// Command genmock writes a deterministic synthetic readiness dataset in any
// format the service can load. The same seed always yields the same bases.
//
// Usage:
//
//	go run ./cmd/genmock -out data/USAF_100_Base_Data.csv
//	go run ./cmd/genmock -n 500 -seed 7 -out data/mock/bases.parquet
//	go run ./cmd/genmock -out data/mock/bases.xlsx -sheet Bases
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/readiness-map-service/internal/adapter/source"
	"github.com/couchcryptid/readiness-map-service/internal/domain"
	"github.com/klauspost/pgzip"
	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

// outlyingSites are placed occasionally to exercise the unclassified path.
var outlyingSites = []struct{ lat, lon float64 }{
	{64.84, -147.72}, // interior Alaska
	{61.25, -149.80}, // Anchorage
	{21.35, -157.95}, // Oahu
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	n := flag.Int("n", 100, "number of bases to generate")
	seed := flag.Uint64("seed", 2024, "random seed")
	out := flag.String("out", "", "output path; format from extension (.csv, .csv.gz, .xlsx, .parquet)")
	sheet := flag.String("sheet", "Bases", "worksheet name for .xlsx output")
	flag.Parse()

	if *out == "" || *n <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flag -out, and -n must be positive")
	}

	rows := generate(*n, *seed)
	if err := writeDataset(*out, *sheet, rows); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	log.Printf("wrote %d bases to %s", len(rows), *out)

	printStats(rows)
	return nil
}

// generate produces n bases spread across the contiguous US with roughly one
// in thirty placed outside the classified latitude range.
func generate(n int, seed uint64) []source.ParquetRow {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rows := make([]source.ParquetRow, n)
	for i := range rows {
		lat := 24.5 + rng.Float64()*24.5
		lon := -124 + rng.Float64()*57
		if rng.IntN(30) == 0 {
			site := outlyingSites[rng.IntN(len(outlyingSites))]
			lat, lon = site.lat, site.lon
		}
		rows[i] = source.ParquetRow{
			Base:      fmt.Sprintf("Base %03d", i+1),
			Latitude:  round(lat, 4),
			Longitude: round(lon, 4),
			Readiness: round(40+rng.Float64()*60, 1),
		}
	}
	return rows
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func header() []string {
	return []string{domain.ColumnBase, domain.ColumnLatitude, domain.ColumnLongitude, domain.ColumnReadiness}
}

func fields(r source.ParquetRow) []string {
	return []string{
		r.Base,
		strconv.FormatFloat(r.Latitude, 'f', -1, 64),
		strconv.FormatFloat(r.Longitude, 'f', -1, 64),
		strconv.FormatFloat(r.Readiness, 'f', -1, 64),
	}
}

func writeDataset(path, sheet string, rows []source.ParquetRow) error {
	format, err := source.DetectFormat(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	switch format {
	case source.FormatCSV:
		return writeCSVFile(path, false, rows)
	case source.FormatCSVGzip:
		return writeCSVFile(path, true, rows)
	case source.FormatXLSX:
		return writeXLSX(path, sheet, rows)
	default:
		return parquet.WriteFile(path, rows)
	}
}

func writeCSVFile(path string, gzipped bool, rows []source.ParquetRow) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !gzipped {
		return writeCSV(f, rows)
	}
	gz := pgzip.NewWriter(f)
	if err := writeCSV(gz, rows); err != nil {
		return err
	}
	return gz.Close()
}

func writeCSV(w io.Writer, rows []source.ParquetRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header()); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(fields(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(path, sheet string, rows []source.ParquetRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{domain.ColumnBase, domain.ColumnLatitude, domain.ColumnLongitude, domain.ColumnReadiness}); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{r.Base, r.Latitude, r.Longitude, r.Readiness}); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// printStats summarizes the generated dataset with the same rules the
// service uses.
func printStats(rows []source.ParquetRow) {
	bases := make([]domain.Base, len(rows))
	for i, r := range rows {
		bases[i] = domain.Base{Name: r.Base, Lat: r.Latitude, Lon: r.Longitude, Readiness: r.Readiness}
	}
	t := domain.NewTable("genmock", bases)

	th := domain.DefaultThresholds()
	fmt.Printf("bases: %d (unclassified %d)\n", t.Len(), t.Unclassified())
	fmt.Printf("high (>=%g): %d  low (<=%g): %d\n", th.High, domain.CountHigh(t, th.High), th.Low, domain.CountLow(t, th.Low))
	avgs := domain.RegionAverages(t)
	for _, r := range domain.Regions() {
		if avg, ok := avgs[r]; ok {
			fmt.Printf("  %-10s %.1f\n", r, avg)
		}
	}
}
