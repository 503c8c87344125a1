package domain

import (
	"fmt"
	"time"
)

// Default reporting thresholds.
const (
	DefaultHighThreshold = 85.0
	DefaultLowThreshold  = 60.0
)

// Recommendation is the standing guidance shown beneath the insights.
const Recommendation = "Prioritize base support and diagnostics in low-performing regions. " +
	"Watch for clusters of underperformance that may indicate systemic issues."

// Thresholds configures high/low performer classification.
type Thresholds struct {
	High float64 `json:"high"`
	Low  float64 `json:"low"`
}

// DefaultThresholds returns the >=85 / <=60 reporting thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{High: DefaultHighThreshold, Low: DefaultLowThreshold}
}

// RegionAverage pairs a region with its mean readiness.
type RegionAverage struct {
	Region  Region  `json:"region"`
	Average float64 `json:"average"`
}

// Report is the full set of insights computed from a table.
type Report struct {
	Source         string             `json:"source"`
	Total          int                `json:"total"`
	Unclassified   int                `json:"unclassified"`
	Thresholds     Thresholds         `json:"thresholds"`
	HighCount      int                `json:"high_count"`
	LowCount       int                `json:"low_count"`
	RegionAverages map[Region]float64 `json:"region_averages"`
	Best           *RegionAverage     `json:"best,omitempty"`
	Worst          *RegionAverage     `json:"worst,omitempty"`
	Recommendation string             `json:"recommendation"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

// CountHigh counts rows with readiness >= threshold.
func CountHigh(t *Table, threshold float64) int {
	if t == nil {
		return 0
	}
	n := 0
	for _, b := range t.Rows {
		if b.Readiness >= threshold {
			n++
		}
	}
	return n
}

// CountLow counts rows with readiness <= threshold.
func CountLow(t *Table, threshold float64) int {
	if t == nil {
		return 0
	}
	n := 0
	for _, b := range t.Rows {
		if b.Readiness <= threshold {
			n++
		}
	}
	return n
}

// RegionAverages returns the mean readiness of every region that has at
// least one row. Unclassified rows are ignored.
func RegionAverages(t *Table) map[Region]float64 {
	out := make(map[Region]float64)
	if t == nil {
		return out
	}

	sums := make(map[Region]float64)
	counts := make(map[Region]int)
	for _, b := range t.Rows {
		if b.Region == RegionNone {
			continue
		}
		sums[b.Region] += b.Readiness
		counts[b.Region]++
	}
	for r, n := range counts {
		out[r] = sums[r] / float64(n)
	}
	return out
}

// BestRegion returns the region with the highest average readiness.
func BestRegion(t *Table) (RegionAverage, error) {
	return extremeRegion(RegionAverages(t), func(a, b float64) bool { return a > b })
}

// WorstRegion returns the region with the lowest average readiness.
func WorstRegion(t *Table) (RegionAverage, error) {
	return extremeRegion(RegionAverages(t), func(a, b float64) bool { return a < b })
}

// extremeRegion walks regions south to north and keeps the first one that
// strictly beats the current pick, so ties go to the southernmost region.
func extremeRegion(avgs map[Region]float64, better func(a, b float64) bool) (RegionAverage, error) {
	var (
		pick  RegionAverage
		found bool
	)
	for _, r := range regionBands {
		avg, ok := avgs[r]
		if !ok {
			continue
		}
		if !found || better(avg, pick.Average) {
			pick = RegionAverage{Region: r, Average: avg}
			found = true
		}
	}
	if !found {
		return RegionAverage{}, ErrEmptyResult
	}
	return pick, nil
}

// BuildReport computes every insight for t. When no region has rows it
// returns the partially filled report together with ErrEmptyResult.
func BuildReport(t *Table, th Thresholds) (Report, error) {
	rep := Report{
		Total:          t.Len(),
		Unclassified:   t.Unclassified(),
		Thresholds:     th,
		HighCount:      CountHigh(t, th.High),
		LowCount:       CountLow(t, th.Low),
		RegionAverages: RegionAverages(t),
		Recommendation: Recommendation,
		GeneratedAt:    clock.Now(),
	}
	if t != nil {
		rep.Source = t.Source
	}

	best, err := extremeRegion(rep.RegionAverages, func(a, b float64) bool { return a > b })
	if err != nil {
		return rep, fmt.Errorf("best region: %w", err)
	}
	worst, err := extremeRegion(rep.RegionAverages, func(a, b float64) bool { return a < b })
	if err != nil {
		return rep, fmt.Errorf("worst region: %w", err)
	}
	rep.Best = &best
	rep.Worst = &worst
	return rep, nil
}

// Lines renders the report as the short bullet list shown to users.
func (r Report) Lines() []string {
	lines := []string{
		fmt.Sprintf("%d bases have high readiness (>=%g).", r.HighCount, r.Thresholds.High),
		fmt.Sprintf("%d bases are critically low (<=%g).", r.LowCount, r.Thresholds.Low),
	}
	if r.Best != nil {
		lines = append(lines, fmt.Sprintf("The %s region has the highest average readiness (%.1f).", r.Best.Region, r.Best.Average))
	}
	if r.Worst != nil {
		lines = append(lines, fmt.Sprintf("The %s region has the lowest average readiness (%.1f).", r.Worst.Region, r.Worst.Average))
	}
	return lines
}
