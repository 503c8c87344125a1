package dataset_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/readiness-map-service/internal/adapter/source"
	"github.com/couchcryptid/readiness-map-service/internal/dataset"
	"github.com/couchcryptid/readiness-map-service/internal/domain"
	"github.com/couchcryptid/readiness-map-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDataset_SampleData loads the bundled synthetic dataset end to end.
func TestDataset_SampleData(t *testing.T) {
	path := filepath.Join("..", "..", "data", "USAF_100_Base_Data.csv")
	src, err := source.Open(path, source.Options{})
	require.NoError(t, err)

	d := dataset.New(src, discardLogger(), observability.NewMetricsForTesting())
	tbl, err := d.Table(context.Background())
	require.NoError(t, err)

	require.Equal(t, 100, tbl.Len())
	assert.Equal(t, "Base 001", tbl.Rows[0].Name)
	assert.Equal(t, 3, tbl.Unclassified(), "Alaska and Hawaii bases fall outside every region")
	assert.Equal(t, 28, domain.CountHigh(tbl, domain.DefaultHighThreshold))
	assert.Equal(t, 31, domain.CountLow(tbl, domain.DefaultLowThreshold))

	for _, b := range tbl.Rows {
		assert.Equal(t, domain.Classify(b.Lat), b.Region, b.Name)
		assert.GreaterOrEqual(t, b.Readiness, 0.0, b.Name)
		assert.LessOrEqual(t, b.Readiness, 100.0, b.Name)
	}

	avgs := domain.RegionAverages(tbl)
	assert.Len(t, avgs, 4)

	rep, err := domain.BuildReport(tbl, domain.DefaultThresholds())
	require.NoError(t, err)
	require.NotNil(t, rep.Best)
	require.NotNil(t, rep.Worst)
	assert.GreaterOrEqual(t, rep.Best.Average, rep.Worst.Average)
}
