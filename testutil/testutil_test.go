package testutil

import (
	"testing"

	"github.com/hupe1980/geotile/geom"
	"github.com/hupe1980/geotile/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var area = geom.BoundingBox{MinLat: 47.5, MinLon: -122.5, MaxLat: 47.8, MaxLon: -122.2}

func TestFootprints(t *testing.T) {
	rng := NewRNG(4711)

	recs := rng.Footprints(100, area, 0.001)
	require.Len(t, recs, 100)

	for i, rec := range recs {
		assert.Equal(t, model.RecordID(i+1), rec.ID)
		b, err := rec.Bound()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b.MinLon, area.MinLon)
		assert.GreaterOrEqual(t, b.MinLat, area.MinLat)
		assert.LessOrEqual(t, b.Width(), 0.001)
	}
}

func TestFootprints_Deterministic(t *testing.T) {
	a := NewRNG(1).Footprints(20, area, 0.01)
	b := NewRNG(1).Footprints(20, area, 0.01)
	assert.Equal(t, a, b)

	rng := NewRNG(1)
	first := rng.Footprints(5, area, 0.01)
	rng.Reset()
	assert.Equal(t, first, rng.Footprints(5, area, 0.01))
}

func TestHotspotFootprints(t *testing.T) {
	rng := NewRNG(42)
	recs := rng.HotspotFootprints(500, area, 4, 1.5)
	require.Len(t, recs, 500)

	for _, rec := range recs {
		require.NoError(t, rec.Geometry.Validate())
		c, err := rec.Geometry.Center()
		require.NoError(t, err)
		assert.True(t, area.ContainsPoint(c) || c.Lon() <= area.MaxLon+area.Width()/100)
	}
}

func TestPointCluster(t *testing.T) {
	recs := PointCluster(10, -122.33, 47.61)
	require.Len(t, recs, 10)

	for _, rec := range recs {
		b, err := rec.Bound()
		require.NoError(t, err)
		assert.Equal(t, 0.0, b.Width())
		assert.Equal(t, 0.0, b.Height())
	}
}

func TestBruteForce(t *testing.T) {
	recs := []model.Record{
		Footprint(3, 0, 0, 1),
		Footprint(1, 5, 5, 1),
		Footprint(2, 0.5, 0.5, 1),
	}

	ids := BruteForce(recs, geom.BoundingBox{MinLat: 0, MinLon: 0, MaxLat: 1, MaxLon: 1})
	assert.Equal(t, []model.RecordID{2, 3}, ids)

	assert.Empty(t, BruteForce(recs, geom.BoundingBox{MinLat: 20, MinLon: 20, MaxLat: 21, MaxLon: 21}))
	assert.Equal(t, []model.RecordID{1, 2, 3}, SortedIDs(model.NewBatch(recs...)))
}

func TestZipf(t *testing.T) {
	rng := NewRNG(7)
	counts := make([]int, 5)
	for i := 0; i < 2000; i++ {
		idx := rng.zipfLocked(5, 1.5)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 5)
		counts[idx]++
	}
	assert.Greater(t, counts[0], counts[4])
}
