// Package insight serves reports, map layers, and camera views computed from
// the loaded dataset.
package insight

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/readiness-map-service/internal/domain"
)

// TableProvider returns the loaded readiness table.
type TableProvider interface {
	Table(ctx context.Context) (*domain.Table, error)
}

// Options configures thresholds and the initial camera.
type Options struct {
	Thresholds domain.Thresholds
	Zoom       float64
	Pitch      float64
}

// DefaultOptions returns the dashboard defaults: 85/60 thresholds, zoom 4, pitch 30.
func DefaultOptions() Options {
	return Options{
		Thresholds: domain.DefaultThresholds(),
		Zoom:       domain.DefaultZoom,
		Pitch:      domain.DefaultPitch,
	}
}

// Service computes insights on demand. The table is immutable, so results
// are recomputed per call rather than cached.
type Service struct {
	tables TableProvider
	opts   Options
}

// NewService creates a Service over the given table provider.
func NewService(tables TableProvider, opts Options) *Service {
	return &Service{tables: tables, opts: opts}
}

// Report returns the insight report. See domain.BuildReport for the
// ErrEmptyResult contract.
func (s *Service) Report(ctx context.Context) (domain.Report, error) {
	t, err := s.tables.Table(ctx)
	if err != nil {
		return domain.Report{}, err
	}
	return domain.BuildReport(t, s.opts.Thresholds)
}

// Layer returns the map point layer.
func (s *Service) Layer(ctx context.Context) (domain.Layer, error) {
	t, err := s.tables.Table(ctx)
	if err != nil {
		return domain.Layer{}, err
	}
	return domain.NewLayer(t), nil
}

// View returns the initial camera.
func (s *Service) View(ctx context.Context) (domain.ViewState, error) {
	t, err := s.tables.Table(ctx)
	if err != nil {
		return domain.ViewState{}, err
	}
	return domain.NewViewState(t, s.opts.Zoom, s.opts.Pitch)
}

// Map returns the layer and view together, as needed by map renderers.
func (s *Service) Map(ctx context.Context) (domain.Layer, domain.ViewState, error) {
	t, err := s.tables.Table(ctx)
	if err != nil {
		return domain.Layer{}, domain.ViewState{}, err
	}
	view, err := domain.NewViewState(t, s.opts.Zoom, s.opts.Pitch)
	if err != nil {
		return domain.Layer{}, domain.ViewState{}, err
	}
	return domain.NewLayer(t), view, nil
}

// Publisher delivers a report to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, report domain.Report) error
}

// PublishOnLoad returns a dataset load hook that builds the report for the
// freshly loaded table and publishes it. A report without regional data is
// still published with whatever it holds.
func (s *Service) PublishOnLoad(pub Publisher, logger *slog.Logger) func(context.Context, *domain.Table) {
	return func(ctx context.Context, t *domain.Table) {
		report, err := domain.BuildReport(t, s.opts.Thresholds)
		switch {
		case errors.Is(err, domain.ErrEmptyResult):
			logger.Warn("publishing report without regional data", "source", report.Source, "error", err)
		case err != nil:
			logger.Error("build report for publishing", "error", err)
			return
		}
		if err := pub.Publish(ctx, report); err != nil {
			logger.Error("report publish failed", "source", report.Source, "error", err)
		}
	}
}
