package insight_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/couchcryptid/readiness-map-service/internal/dataset"
	"github.com/couchcryptid/readiness-map-service/internal/domain"
	"github.com/couchcryptid/readiness-map-service/internal/insight"
	"github.com/couchcryptid/readiness-map-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu      sync.Mutex
	reports []domain.Report
	err     error
}

func (p *fakePublisher) Publish(_ context.Context, report domain.Report) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, report)
	return p.err
}

func (p *fakePublisher) published() []domain.Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Report(nil), p.reports...)
}

// flakySource fails its first n reads, where n is failures, then returns recs.
type flakySource struct {
	mu       sync.Mutex
	failures int
	recs     []domain.RawRecord
}

func (s *flakySource) Name() string { return "bases.csv" }

func (s *flakySource) Records(_ context.Context) ([]domain.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("file not mounted yet")
	}
	return s.recs, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var rawScenario = []domain.RawRecord{
	{Base: "BaseA", Latitude: "28", Longitude: "-97", Readiness: "90", Line: 2},
	{Base: "BaseB", Latitude: "44", Longitude: "-80", Readiness: "55", Line: 3},
	{Base: "BaseC", Latitude: "33", Longitude: "-90", Readiness: "70", Line: 4},
}

func TestPublishOnLoad_WarmupFailsThenRequestSucceeds(t *testing.T) {
	ds := dataset.New(&flakySource{failures: 1, recs: rawScenario}, discardLogger(), observability.NewMetricsForTesting())
	svc := insight.NewService(ds, insight.DefaultOptions())
	pub := &fakePublisher{}
	ds.OnLoad(svc.PublishOnLoad(pub, discardLogger()))

	// Warm-up hits the failing source.
	_, err := svc.Report(context.Background())
	require.Error(t, err)
	assert.Empty(t, pub.published())

	// A later request loads the table and triggers the publish.
	_, err = svc.Layer(context.Background())
	require.NoError(t, err)

	reports := pub.published()
	require.Len(t, reports, 1)
	assert.Equal(t, "bases.csv", reports[0].Source)
	assert.Equal(t, 1, reports[0].HighCount)
	require.NotNil(t, reports[0].Best)
	assert.Equal(t, domain.RegionSouth, reports[0].Best.Region)

	_, err = svc.Report(context.Background())
	require.NoError(t, err)
	assert.Len(t, pub.published(), 1, "report is published once per process")
}

func TestPublishOnLoad_PartialReportWithoutRegions(t *testing.T) {
	// Every base lies outside the classified latitude bands.
	recs := []domain.RawRecord{
		{Base: "Anchorage", Latitude: "61.2", Longitude: "-149.9", Readiness: "92", Line: 2},
		{Base: "Honolulu", Latitude: "21.3", Longitude: "-157.8", Readiness: "40", Line: 3},
	}
	ds := dataset.New(&flakySource{recs: recs}, discardLogger(), observability.NewMetricsForTesting())
	svc := insight.NewService(ds, insight.DefaultOptions())
	pub := &fakePublisher{}
	ds.OnLoad(svc.PublishOnLoad(pub, discardLogger()))

	_, err := svc.Report(context.Background())
	require.ErrorIs(t, err, domain.ErrEmptyResult)

	reports := pub.published()
	require.Len(t, reports, 1)
	assert.Equal(t, 1, reports[0].HighCount)
	assert.Equal(t, 1, reports[0].LowCount)
	assert.Nil(t, reports[0].Best)
	assert.Nil(t, reports[0].Worst)
}

func TestPublishOnLoad_PublishErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	svc := insight.NewService(staticTables{table: scenario()}, insight.DefaultOptions())
	pub := &fakePublisher{err: errors.New("broker unreachable")}

	hook := svc.PublishOnLoad(pub, logger)
	assert.NotPanics(t, func() { hook(context.Background(), scenario()) })

	assert.Len(t, pub.published(), 1)
	assert.Contains(t, buf.String(), "report publish failed")
	assert.Contains(t, buf.String(), "broker unreachable")
}
