package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/readiness-map-service/internal/adapter/source"
	"github.com/couchcryptid/readiness-map-service/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Deterministic(t *testing.T) {
	a := generate(50, 7)
	b := generate(50, 7)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("same seed produced different rows (-a +b):\n%s", diff)
	}
	assert.NotEqual(t, a, generate(50, 8))
}

func TestGenerate_Ranges(t *testing.T) {
	for _, r := range generate(500, 2024) {
		assert.GreaterOrEqual(t, r.Readiness, 40.0, r.Base)
		assert.LessOrEqual(t, r.Readiness, 100.0, r.Base)
		assert.GreaterOrEqual(t, r.Latitude, 21.0, r.Base)
		assert.LessOrEqual(t, r.Latitude, 65.0, r.Base)
	}
}

func TestWriteDataset_RoundTrip(t *testing.T) {
	rows := generate(40, 11)
	want := make([]domain.Base, len(rows))
	for i, r := range rows {
		want[i] = domain.Base{Name: r.Base, Lat: r.Latitude, Lon: r.Longitude, Readiness: r.Readiness}
	}

	for _, name := range []string{"bases.csv", "bases.csv.gz", "bases.xlsx", "bases.parquet"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", name)
			require.NoError(t, writeDataset(path, "Bases", rows))

			src, err := source.Open(path, source.Options{})
			require.NoError(t, err)
			raw, err := src.Records(context.Background())
			require.NoError(t, err)

			got, err := domain.ParseRecords(raw)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteDataset_UnsupportedExtension(t *testing.T) {
	err := writeDataset(filepath.Join(t.TempDir(), "bases.json"), "", generate(1, 1))
	require.Error(t, err)
}
