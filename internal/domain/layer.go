package domain

import (
	"math"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"
)

const (
	// PointRadiusMeters is the fixed radius of every point on the map.
	PointRadiusMeters = 30000

	DefaultZoom  = 4.0
	DefaultPitch = 30.0

	geohashPrecision = 6
)

// RGB is an 8-bit color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Point is one rendered base on the map layer.
type Point struct {
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Readiness float64 `json:"readiness"`
	Region    Region  `json:"region,omitempty"`
	Geohash   string  `json:"geohash"`
	Color     RGB     `json:"color"`
	Radius    float64 `json:"radius"`
}

// Layer is the scatter layer handed to a map renderer.
type Layer struct {
	Points []Point `json:"points"`
}

// Bounds is a latitude/longitude bounding box in degrees.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// ViewState is the initial camera for the map.
type ViewState struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Zoom   float64 `json:"zoom"`
	Pitch  float64 `json:"pitch"`
	Bounds Bounds  `json:"bounds"`
}

// ReadinessColor shades a score from red (0) to green (100) with a fixed blue
// channel. Scores outside 0 to 100 saturate.
func ReadinessColor(readiness float64) RGB {
	return RGB{
		R: clampChannel(255 - readiness*2.5),
		G: clampChannel(readiness * 2.5),
		B: 100,
	}
}

func clampChannel(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// NewLayer builds one point per table row, preserving row order.
func NewLayer(t *Table) Layer {
	if t == nil {
		return Layer{Points: []Point{}}
	}
	pts := make([]Point, len(t.Rows))
	for i, b := range t.Rows {
		pts[i] = Point{
			Name:      b.Name,
			Lat:       b.Lat,
			Lon:       b.Lon,
			Readiness: b.Readiness,
			Region:    b.Region,
			Geohash:   geohash.EncodeWithPrecision(b.Lat, b.Lon, geohashPrecision),
			Color:     ReadinessColor(b.Readiness),
			Radius:    PointRadiusMeters,
		}
	}
	return Layer{Points: pts}
}

// NewViewState centers the camera on the mean position of all rows and
// records their bounding box. An empty table has no center.
func NewViewState(t *Table, zoom, pitch float64) (ViewState, error) {
	if t.Len() == 0 {
		return ViewState{}, ErrEmptyResult
	}

	var sumLat, sumLon float64
	rect := s2.EmptyRect()
	for _, b := range t.Rows {
		sumLat += b.Lat
		sumLon += b.Lon
		rect = rect.AddPoint(s2.LatLngFromDegrees(b.Lat, b.Lon))
	}
	n := float64(len(t.Rows))

	return ViewState{
		Lat:   sumLat / n,
		Lon:   sumLon / n,
		Zoom:  zoom,
		Pitch: pitch,
		Bounds: Bounds{
			MinLat: rect.Lo().Lat.Degrees(),
			MinLon: rect.Lo().Lng.Degrees(),
			MaxLat: rect.Hi().Lat.Degrees(),
			MaxLon: rect.Hi().Lng.Degrees(),
		},
	}, nil
}

// MapImage is a rendered map.
type MapImage struct {
	Data        []byte
	ContentType string
}
