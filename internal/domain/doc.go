// Package domain models base readiness data and the insights derived from it.
//
// # Data Source
//
// The dataset is a static table of synthetic Air Force bases, one row per
// base, with four columns:
//
//	Base,Latitude,Longitude,Readiness
//	Base 001,31.12,-97.45,88.4
//
// Readiness is a 0 to 100 operational capability score. The range is assumed,
// not enforced: out-of-range scores are loaded and counted like any other.
// Sources are parsed by the adapters in internal/adapter/source into
// [RawRecord] values and converted to [Base] rows by [ParseRecords].
//
// # Regions
//
// Each base is assigned a latitude band once, at load time, by [Classify]:
//
//	South      [24, 30)
//	Mid-South  [30, 36)
//	Mid-North  [36, 42)
//	North      [42, 50]
//
// Buckets are low-inclusive; the northernmost bucket is closed so that 50
// belongs to North. Latitudes outside [24, 50] get [RegionNone]. Those bases
// still appear on the map and in threshold counts but never in regional
// averages.
//
// # Insights
//
// Thresholds follow the reporting convention of the readiness dashboard:
//
//	High performer: readiness >= 85
//	Low performer:  readiness <= 60
//
// A base can be neither but never both. Regional averages skip empty regions
// entirely, so no average is ever computed over zero rows. When no region has
// any rows, [BestRegion] and [WorstRegion] return [ErrEmptyResult]. Ties are
// broken in favor of the southernmost region.
package domain
