package insight_test

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/readiness-map-service/internal/domain"
	"github.com/couchcryptid/readiness-map-service/internal/insight"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTables struct {
	table *domain.Table
	err   error
}

func (s staticTables) Table(_ context.Context) (*domain.Table, error) { return s.table, s.err }

func scenario() *domain.Table {
	return domain.NewTable("bases.csv", []domain.Base{
		{Name: "BaseA", Lat: 28, Lon: -97, Readiness: 90},
		{Name: "BaseB", Lat: 44, Lon: -80, Readiness: 55},
		{Name: "BaseC", Lat: 33, Lon: -90, Readiness: 70},
	})
}

func TestService_Report(t *testing.T) {
	svc := insight.NewService(staticTables{table: scenario()}, insight.DefaultOptions())

	rep, err := svc.Report(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.HighCount)
	assert.Equal(t, 1, rep.LowCount)
	assert.Equal(t, domain.RegionSouth, rep.Best.Region)
	assert.Equal(t, domain.RegionNorth, rep.Worst.Region)
}

func TestService_CustomOptions(t *testing.T) {
	opts := insight.Options{Thresholds: domain.Thresholds{High: 50, Low: 95}, Zoom: 6, Pitch: 0}
	svc := insight.NewService(staticTables{table: scenario()}, opts)

	rep, err := svc.Report(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, rep.HighCount)
	assert.Equal(t, 3, rep.LowCount)

	view, err := svc.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6.0, view.Zoom)
	assert.Equal(t, 0.0, view.Pitch)
}

func TestService_Map(t *testing.T) {
	svc := insight.NewService(staticTables{table: scenario()}, insight.DefaultOptions())

	layer, view, err := svc.Map(context.Background())
	require.NoError(t, err)
	assert.Len(t, layer.Points, 3)
	assert.InDelta(t, 35.0, view.Lat, 1e-9)
	assert.Equal(t, domain.DefaultZoom, view.Zoom)
}

func TestService_PropagatesDataSourceError(t *testing.T) {
	srcErr := &domain.DataSourceError{Source: "bases.csv", Op: "open", Err: errors.New("missing")}
	svc := insight.NewService(staticTables{err: srcErr}, insight.DefaultOptions())

	_, err := svc.Report(context.Background())
	assert.ErrorIs(t, err, srcErr)
	_, err = svc.Layer(context.Background())
	assert.ErrorIs(t, err, srcErr)
	_, err = svc.View(context.Background())
	assert.ErrorIs(t, err, srcErr)
	_, _, err = svc.Map(context.Background())
	assert.ErrorIs(t, err, srcErr)
}

func TestService_EmptyTable(t *testing.T) {
	svc := insight.NewService(staticTables{table: domain.NewTable("bases.csv", nil)}, insight.DefaultOptions())

	rep, err := svc.Report(context.Background())
	require.ErrorIs(t, err, domain.ErrEmptyResult)
	assert.Equal(t, 0, rep.HighCount)

	layer, err := svc.Layer(context.Background())
	require.NoError(t, err)
	assert.Empty(t, layer.Points)

	_, _, err = svc.Map(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyResult)
}
