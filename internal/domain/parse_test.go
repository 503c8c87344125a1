package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexHeader(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		expected ColumnIndex
	}{
		{"canonical", []string{"Base", "Latitude", "Longitude", "Readiness"}, ColumnIndex{0, 1, 2, 3}},
		{"reordered", []string{"Readiness", "Base", "Longitude", "Latitude"}, ColumnIndex{1, 3, 2, 0}},
		{"aliases and case", []string{" name ", "LAT", "lng", "Score"}, ColumnIndex{0, 1, 2, 3}},
		{"byte order mark", []string{"\ufeffBase", "Latitude", "Longitude", "Readiness"}, ColumnIndex{0, 1, 2, 3}},
		{"extra columns", []string{"ID", "Base", "State", "Latitude", "Longitude", "Readiness"}, ColumnIndex{1, 3, 4, 5}},
		{"duplicate keeps first", []string{"Base", "Name", "Lat", "Latitude", "Lon", "Readiness"}, ColumnIndex{0, 2, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := IndexHeader(tt.header)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, idx)
		})
	}
}

func TestIndexHeader_MissingColumns(t *testing.T) {
	_, err := IndexHeader([]string{"Base", "Latitude"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Longitude")
	assert.Contains(t, err.Error(), "Readiness")
}

func TestColumnIndex_Record_ShortRow(t *testing.T) {
	idx := ColumnIndex{Base: 0, Latitude: 1, Longitude: 2, Readiness: 3}
	rec := idx.Record([]string{"Base A", "28.5"}, 7)

	assert.Equal(t, "Base A", rec.Base)
	assert.Equal(t, "28.5", rec.Latitude)
	assert.Empty(t, rec.Longitude)
	assert.Equal(t, 7, rec.Line)
}

func TestParseRecord(t *testing.T) {
	t.Run("valid row", func(t *testing.T) {
		b, err := ParseRecord(RawRecord{Base: " Base A ", Latitude: "28", Longitude: " -97.5", Readiness: "90"})
		require.NoError(t, err)
		assert.Equal(t, "Base A", b.Name)
		assert.Equal(t, 28.0, b.Lat)
		assert.Equal(t, -97.5, b.Lon)
		assert.Equal(t, 90.0, b.Readiness)
		assert.Equal(t, RegionNone, b.Region)
	})

	t.Run("out of range values are kept", func(t *testing.T) {
		b, err := ParseRecord(RawRecord{Base: "Far", Latitude: "60", Longitude: "-150", Readiness: "104"})
		require.NoError(t, err)
		assert.Equal(t, 60.0, b.Lat)
		assert.Equal(t, 104.0, b.Readiness)
	})

	t.Run("non-numeric readiness", func(t *testing.T) {
		_, err := ParseRecord(RawRecord{Base: "X", Latitude: "30", Longitude: "-90", Readiness: "high", Line: 4})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 4")
		assert.Contains(t, err.Error(), ColumnReadiness)
	})

	t.Run("empty latitude", func(t *testing.T) {
		_, err := ParseRecord(RawRecord{Base: "X", Longitude: "-90", Readiness: "70"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Latitude: empty value")
	})

	t.Run("NaN rejected", func(t *testing.T) {
		_, err := ParseRecord(RawRecord{Base: "X", Latitude: "NaN", Longitude: "-90", Readiness: "70"})
		require.ErrorIs(t, err, errNotFinite)
	})
}

func TestParseRecords_StopsAtFirstError(t *testing.T) {
	recs := []RawRecord{
		{Base: "A", Latitude: "28", Longitude: "-97", Readiness: "90", Line: 2},
		{Base: "B", Latitude: "bad", Longitude: "-97", Readiness: "90", Line: 3},
	}
	rows, err := ParseRecords(recs)
	require.Error(t, err)
	assert.Nil(t, rows)
	assert.Contains(t, err.Error(), "line 3")
}
