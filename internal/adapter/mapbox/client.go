package mapbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/readiness-map-service/internal/domain"
	"github.com/couchcryptid/readiness-map-service/internal/observability"
)

const (
	defaultWidth  = 1024
	defaultHeight = 640

	// maxURLLength is the Static Images API request limit.
	maxURLLength = 8192

	rendererName = "mapbox"
)

var errTooManyPoints = errors.New("layer too large for a static map request")

// Client renders map layers through the Mapbox Static Images API.
type Client struct {
	token      string
	style      string
	width      int
	height     int
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox static map client. style is "<owner>/<style_id>",
// e.g. "mapbox/light-v11".
func NewClient(token, style string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token:  token,
		style:  style,
		width:  defaultWidth,
		height: defaultHeight,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.mapbox.com/styles/v1",
		metrics: metrics,
		logger:  logger,
	}
}

// RenderMap draws one small pin per point, colored by readiness, with the
// camera taken from view.
func (c *Client) RenderMap(ctx context.Context, layer domain.Layer, view domain.ViewState) (domain.MapImage, error) {
	img, err := c.render(ctx, layer, view)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.MapRenders.WithLabelValues(rendererName, outcome).Inc()
	return img, err
}

func (c *Client) render(ctx context.Context, layer domain.Layer, view domain.ViewState) (domain.MapImage, error) {
	fullURL := c.staticURL(layer, view)
	if len(fullURL) > maxURLLength {
		return domain.MapImage{}, fmt.Errorf("%w: %d points", errTooManyPoints, len(layer.Points))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.MapImage{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.MapboxAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.MapImage{}, fmt.Errorf("static map request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.MapImage{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.MapImage{}, fmt.Errorf("read static map: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	c.logger.Debug("static map rendered", "points", len(layer.Points), "bytes", len(data))
	return domain.MapImage{Data: data, ContentType: contentType}, nil
}

// staticURL builds
// {base}/{style}/static/{overlay}/{lon},{lat},{zoom},0,{pitch}/{w}x{h}?access_token=...
func (c *Client) staticURL(layer domain.Layer, view domain.ViewState) string {
	camera := strings.Join([]string{
		formatCoord(view.Lon),
		formatCoord(view.Lat),
		strconv.FormatFloat(view.Zoom, 'f', -1, 64),
		"0",
		strconv.FormatFloat(view.Pitch, 'f', -1, 64),
	}, ",")

	segments := []string{c.baseURL, c.style, "static"}
	if overlay := markerOverlay(layer); overlay != "" {
		segments = append(segments, overlay)
	}
	segments = append(segments, camera, fmt.Sprintf("%dx%d", c.width, c.height))

	params := url.Values{"access_token": {c.token}}
	return strings.Join(segments, "/") + "?" + params.Encode()
}

// markerOverlay encodes points as "pin-s+rrggbb(lon,lat)" markers.
func markerOverlay(layer domain.Layer) string {
	markers := make([]string, len(layer.Points))
	for i, p := range layer.Points {
		markers[i] = fmt.Sprintf("pin-s+%02x%02x%02x(%s,%s)",
			p.Color.R, p.Color.G, p.Color.B, formatCoord(p.Lon), formatCoord(p.Lat))
	}
	return strings.Join(markers, ",")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
