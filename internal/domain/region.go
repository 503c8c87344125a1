package domain

// Region is a latitude band used for aggregate reporting.
type Region string

const (
	RegionNone     Region = ""
	RegionSouth    Region = "South"
	RegionMidSouth Region = "Mid-South"
	RegionMidNorth Region = "Mid-North"
	RegionNorth    Region = "North"
)

// regionEdges are the band boundaries in degrees latitude, south to north.
// regionBands[i] covers [regionEdges[i], regionEdges[i+1]).
var (
	regionEdges = [...]float64{24, 30, 36, 42, 50}
	regionBands = [...]Region{RegionSouth, RegionMidSouth, RegionMidNorth, RegionNorth}
)

// Regions returns every region in south-to-north order.
func Regions() []Region {
	out := make([]Region, len(regionBands))
	copy(out, regionBands[:])
	return out
}

// Classify maps a latitude to its region. The last band is closed on the
// right, so 50 is North. NaN and anything outside [24, 50] yield RegionNone.
func Classify(lat float64) Region {
	last := len(regionEdges) - 1
	// Written so that NaN fails both comparisons.
	if !(lat >= regionEdges[0] && lat <= regionEdges[last]) {
		return RegionNone
	}
	for i := 0; i < last; i++ {
		if lat < regionEdges[i+1] {
			return regionBands[i]
		}
	}
	return regionBands[len(regionBands)-1]
}

// Bounds returns the latitude interval covered by r. ok is false for
// RegionNone or an unknown value.
func (r Region) Bounds() (lo, hi float64, ok bool) {
	for i, band := range regionBands {
		if band == r {
			return regionEdges[i], regionEdges[i+1], true
		}
	}
	return 0, 0, false
}

func (r Region) String() string {
	if r == RegionNone {
		return "undefined"
	}
	return string(r)
}
