// Package plot renders the readiness layer offline as a PNG scatter chart.
// It is used when no Mapbox token is configured.
package plot

import (
	"bytes"
	"context"
	"fmt"
	"image/color"

	"github.com/couchcryptid/readiness-map-service/internal/domain"
	"github.com/couchcryptid/readiness-map-service/internal/observability"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	rendererName = "plot"
	contentType  = "image/png"

	// boundsPadding widens the axes past the outermost bases, in degrees.
	boundsPadding = 1.0
)

// Renderer draws the map layer as a longitude/latitude scatter plot with
// dashed lines at the region boundaries.
type Renderer struct {
	width   vg.Length
	height  vg.Length
	metrics *observability.Metrics
}

// NewRenderer creates a plot renderer producing 8x5 inch images.
func NewRenderer(metrics *observability.Metrics) *Renderer {
	return &Renderer{
		width:   8 * vg.Inch,
		height:  5 * vg.Inch,
		metrics: metrics,
	}
}

func (r *Renderer) RenderMap(ctx context.Context, layer domain.Layer, view domain.ViewState) (domain.MapImage, error) {
	img, err := r.render(ctx, layer, view)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.metrics.MapRenders.WithLabelValues(rendererName, outcome).Inc()
	return img, err
}

func (r *Renderer) render(ctx context.Context, layer domain.Layer, view domain.ViewState) (domain.MapImage, error) {
	if err := ctx.Err(); err != nil {
		return domain.MapImage{}, err
	}

	p := plot.New()
	p.Title.Text = "Base readiness"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	b := view.Bounds
	p.X.Min, p.X.Max = b.MinLon-boundsPadding, b.MaxLon+boundsPadding
	p.Y.Min, p.Y.Max = b.MinLat-boundsPadding, b.MaxLat+boundsPadding

	p.Add(plotter.NewGrid())
	for _, edge := range regionEdges() {
		line := plotter.NewFunction(func(float64) float64 { return edge })
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		line.Color = color.Gray{Y: 160}
		p.Add(line)
	}

	if len(layer.Points) > 0 {
		xys := make(plotter.XYs, len(layer.Points))
		for i, pt := range layer.Points {
			xys[i] = plotter.XY{X: pt.Lon, Y: pt.Lat}
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return domain.MapImage{}, fmt.Errorf("build scatter: %w", err)
		}
		scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			c := layer.Points[i].Color
			return draw.GlyphStyle{
				Color:  color.RGBA{R: c.R, G: c.G, B: c.B, A: 255},
				Radius: vg.Points(4),
				Shape:  draw.CircleGlyph{},
			}
		}
		p.Add(scatter)
	}

	wt, err := p.WriterTo(r.width, r.height, "png")
	if err != nil {
		return domain.MapImage{}, fmt.Errorf("create png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return domain.MapImage{}, fmt.Errorf("encode png: %w", err)
	}
	return domain.MapImage{Data: buf.Bytes(), ContentType: contentType}, nil
}

// regionEdges returns the inner latitude boundaries between adjacent regions.
func regionEdges() []float64 {
	regions := domain.Regions()
	edges := make([]float64, 0, len(regions)-1)
	for _, reg := range regions[1:] {
		lo, _, _ := reg.Bounds()
		edges = append(edges, lo)
	}
	return edges
}
