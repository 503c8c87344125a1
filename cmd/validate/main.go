// Command validate loads a readiness dataset through the service's own loader
// and runs integrity checks over it: row counts, coordinate and readiness
// ranges, region coverage, and the insight invariants. With -compare it also
// verifies that a second file (for example the Parquet export of the same
// data) parses to identical rows.
//
// Usage:
//
//	go run ./cmd/validate -data data/USAF_100_Base_Data.csv -expect-rows 100
//	go run ./cmd/validate -data data/mock/bases.xlsx -compare data/mock/bases.parquet
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/couchcryptid/readiness-map-service/internal/adapter/source"
	"github.com/couchcryptid/readiness-map-service/internal/dataset"
	"github.com/couchcryptid/readiness-map-service/internal/domain"
	"github.com/couchcryptid/readiness-map-service/internal/observability"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type options struct {
	dataPath    string
	sheet       string
	comparePath string
	expectRows  int
	thresholds  domain.Thresholds
}

func main() {
	var opts options
	flag.StringVar(&opts.dataPath, "data", "", "dataset to validate (.csv, .csv.gz, .xlsx, .parquet)")
	flag.StringVar(&opts.sheet, "sheet", "", "worksheet name for .xlsx input")
	flag.StringVar(&opts.comparePath, "compare", "", "optional second file that must parse to the same rows")
	flag.IntVar(&opts.expectRows, "expect-rows", 0, "expected row count; 0 skips the check")
	flag.Float64Var(&opts.thresholds.High, "high", domain.DefaultHighThreshold, "high readiness threshold")
	flag.Float64Var(&opts.thresholds.Low, "low", domain.DefaultLowThreshold, "low readiness threshold")
	flag.Parse()

	if opts.dataPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(context.Background(), opts, os.Stdout))
}

func run(ctx context.Context, opts options, out io.Writer) int {
	fmt.Fprintln(out, "=== Readiness Data Integrity Validation ===")
	fmt.Fprintln(out)

	t, err := load(ctx, opts.dataPath, opts.sheet)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load %s: %v\n", opts.dataPath, err)
		return 1
	}

	phases := []*phase{
		validateRowCount(t, opts.expectRows),
		validateCoordinates(t),
		validateReadiness(t),
		validateRegionCoverage(t),
		validateInsights(t, opts.thresholds),
	}
	if opts.comparePath != "" {
		other, err := load(ctx, opts.comparePath, "")
		if err != nil {
			fmt.Fprintf(out, "FATAL: load %s: %v\n", opts.comparePath, err)
			return 1
		}
		phases = append(phases, validateParity(t, other))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Rows: %d (%d outside the classified latitude range)\n", t.Len(), t.Unclassified())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

func load(ctx context.Context, path, sheet string) (*domain.Table, error) {
	src, err := source.Open(path, source.Options{Sheet: sheet})
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return dataset.New(src, logger, observability.NewMetricsForTesting()).Table(ctx)
}

// ── Phase 1: Row Count ──

func validateRowCount(t *domain.Table, expect int) *phase {
	p := &phase{name: "Phase 1: Row Count & Names"}

	if t.Len() == 0 {
		p.errorf("dataset has no rows")
	}
	if expect > 0 && t.Len() != expect {
		p.errorf("expected %d rows, got %d", expect, t.Len())
	}

	seen := make(map[string]int, t.Len())
	for i, b := range t.Rows {
		if b.Name == "" {
			p.errorf("row %d: empty base name", i+1)
			continue
		}
		if first, dup := seen[b.Name]; dup {
			p.errorf("row %d: duplicate base name %q (first at row %d)", i+1, b.Name, first)
			continue
		}
		seen[b.Name] = i + 1
	}
	return p
}

// ── Phase 2: Coordinates ──

func validateCoordinates(t *domain.Table) *phase {
	p := &phase{name: "Phase 2: Coordinate Ranges"}
	for _, b := range t.Rows {
		if b.Lat < -90 || b.Lat > 90 {
			p.errorf("%s: latitude %g outside [-90, 90]", b.Name, b.Lat)
		}
		if b.Lon < -180 || b.Lon > 180 {
			p.errorf("%s: longitude %g outside [-180, 180]", b.Name, b.Lon)
		}
	}
	return p
}

// ── Phase 3: Readiness ──

func validateReadiness(t *domain.Table) *phase {
	p := &phase{name: "Phase 3: Readiness Range"}
	for _, b := range t.Rows {
		if b.Readiness < 0 || b.Readiness > 100 {
			p.errorf("%s: readiness %g outside [0, 100]", b.Name, b.Readiness)
		}
	}
	return p
}

// ── Phase 4: Region Coverage ──
// Every region has rows, and each average lies within that region's scores.

func validateRegionCoverage(t *domain.Table) *phase {
	p := &phase{name: "Phase 4: Region Coverage"}

	type span struct{ lo, hi float64 }
	spans := make(map[domain.Region]span)
	for _, b := range t.Rows {
		if b.Region != domain.Classify(b.Lat) {
			p.errorf("%s: region %q does not match latitude %g", b.Name, b.Region, b.Lat)
		}
		if b.Region == domain.RegionNone {
			continue
		}
		s, ok := spans[b.Region]
		if !ok {
			s = span{lo: math.Inf(1), hi: math.Inf(-1)}
		}
		s.lo = math.Min(s.lo, b.Readiness)
		s.hi = math.Max(s.hi, b.Readiness)
		spans[b.Region] = s
	}

	avgs := domain.RegionAverages(t)
	for _, r := range domain.Regions() {
		avg, ok := avgs[r]
		if !ok {
			p.errorf("region %s has no bases", r)
			continue
		}
		s := spans[r]
		if avg < s.lo || avg > s.hi {
			p.errorf("region %s: average %g outside [%g, %g]", r, avg, s.lo, s.hi)
		}
	}
	return p
}

// ── Phase 5: Insights ──

func validateInsights(t *domain.Table, th domain.Thresholds) *phase {
	p := &phase{name: "Phase 5: Insight Invariants"}

	if th.High <= th.Low {
		p.errorf("high threshold %g must exceed low threshold %g", th.High, th.Low)
		return p
	}

	report, err := domain.BuildReport(t, th)
	if err != nil {
		p.errorf("build report: %v", err)
		return p
	}
	if report.HighCount+report.LowCount > report.Total {
		p.errorf("high (%d) + low (%d) exceeds total %d", report.HighCount, report.LowCount, report.Total)
	}
	if report.Best.Average < report.Worst.Average {
		p.errorf("best region %s (%g) is below worst region %s (%g)",
			report.Best.Region, report.Best.Average, report.Worst.Region, report.Worst.Average)
	}
	return p
}

// ── Phase 6: Cross-Format Parity ──

func validateParity(a, b *domain.Table) *phase {
	p := &phase{name: "Phase 6: Cross-Format Parity"}

	if a.Len() != b.Len() {
		p.errorf("%s has %d rows, %s has %d", a.Source, a.Len(), b.Source, b.Len())
		return p
	}
	for i := range a.Rows {
		if a.Rows[i] != b.Rows[i] {
			p.errorf("row %d: %+v != %+v", i+1, a.Rows[i], b.Rows[i])
		}
	}
	return p
}
