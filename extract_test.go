package geotile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hupe1980/geotile/blobstore"
	"github.com/hupe1980/geotile/geom"
	"github.com/hupe1980/geotile/index"
	"github.com/hupe1980/geotile/manifest"
	"github.com/hupe1980/geotile/model"
	"github.com/hupe1980/geotile/source"
	"github.com/hupe1980/geotile/testutil"
	"github.com/hupe1980/geotile/tile"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func partitioned(t *testing.T, recs []model.Record, k int, optFns ...Option) (blobstore.BlobStore, *index.TileIndex) {
	t.Helper()
	store := blobstore.NewMemoryStore()
	idx, _, err := NewPartitioner(store, optFns...).Partition(context.Background(), model.NewBatch(recs...), k)
	require.NoError(t, err)
	return store, idx
}

func TestExtract_MatchesBruteForce(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(11)
	recs := rng.HotspotFootprints(2000, seattle, 5, 1.2)

	queries := []geom.BoundingBox{
		seattle,
		{MinLat: 47.6, MinLon: -122.35, MaxLat: 47.62, MaxLon: -122.3},
		{MinLat: 47.55, MinLon: -122.44, MaxLat: 47.56, MaxLon: -122.43},
		{MinLat: 47.61, MinLon: -122.33, MaxLat: 47.61, MaxLon: -122.33},
	}
	for i := 0; i < 8; i++ {
		lat := seattle.MinLat + rng.Float64()*seattle.Height()
		lon := seattle.MinLon + rng.Float64()*seattle.Width()
		queries = append(queries, geom.BoundingBox{MinLat: lat, MinLon: lon, MaxLat: lat + 0.02, MaxLon: lon + 0.03})
	}

	// The result must not depend on how the dataset was tiled.
	for _, k := range []int{1, 7, 150, 5000} {
		store, idx := partitioned(t, recs, k)
		ex := NewExtractor(store)

		for _, q := range queries {
			got, report, err := ex.Extract(ctx, idx, q)
			require.NoError(t, err)
			assert.False(t, report.Partial())
			assert.Equal(t, 0, report.Duplicates)
			assert.Equal(t, testutil.BruteForce(recs, q), testutil.SortedIDs(got), "k=%d query=%s", k, q)
		}
	}
}

func TestExtract_Idempotent(t *testing.T) {
	recs := testutil.NewRNG(5).Footprints(800, seattle, 0.003)
	store, idx := partitioned(t, recs, 16)
	ex := NewExtractor(store)
	q := geom.BoundingBox{MinLat: 47.55, MinLon: -122.4, MaxLat: 47.7, MaxLon: -122.25}

	first, _, err := ex.Extract(context.Background(), idx, q)
	require.NoError(t, err)
	second, _, err := ex.Extract(context.Background(), idx, q)
	require.NoError(t, err)

	assert.Equal(t, first.IDs(), second.IDs())
}

func TestExtract_BoundaryTouch(t *testing.T) {
	a := model.Record{ID: 1, Geometry: geom.NewPolygon(testutil.Square(0, 0, 1))}
	b := model.Record{ID: 2, Geometry: geom.NewPolygon(testutil.Square(2, 0, 1))}
	// L-shape whose bounding box covers (1.5, 4.5) but whose area does not.
	l := model.Record{ID: 3, Geometry: geom.NewPolygon(orb.Polygon{orb.Ring{
		{0, 3}, {2, 3}, {2, 4}, {1, 4}, {1, 5}, {0, 5}, {0, 3},
	}})}
	recs := []model.Record{a, b, l}

	tests := []struct {
		name  string
		query geom.BoundingBox
		want  []model.RecordID
	}{
		{"touching east edge", geom.BoundingBox{MinLat: 0.2, MinLon: 1, MaxLat: 0.4, MaxLon: 1.5}, []model.RecordID{1}},
		{"touching both", geom.BoundingBox{MinLat: 0.2, MinLon: 1, MaxLat: 0.4, MaxLon: 2}, []model.RecordID{1, 2}},
		{"gap", geom.BoundingBox{MinLat: 0, MinLon: 1.1, MaxLat: 1, MaxLon: 1.9}, []model.RecordID{}},
		{"corner point", geom.BoundingBox{MinLat: 1, MinLon: 1, MaxLat: 1, MaxLon: 1}, []model.RecordID{1}},
		{"bbox overlap only", geom.BoundingBox{MinLat: 4.5, MinLon: 1.5, MaxLat: 4.9, MaxLon: 1.9}, []model.RecordID{}},
		{"inner corner", geom.BoundingBox{MinLat: 4, MinLon: 1, MaxLat: 4.5, MaxLon: 1.5}, []model.RecordID{3}},
	}

	for _, k := range []int{1, 3} {
		store, idx := partitioned(t, recs, k)
		ex := NewExtractor(store)
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, _, err := ex.Extract(context.Background(), idx, tt.query)
				require.NoError(t, err)
				assert.Equal(t, tt.want, testutil.SortedIDs(got))
				assert.Equal(t, testutil.BruteForce(recs, tt.query), testutil.SortedIDs(got))
			})
		}
	}
}

func TestExtract_DisjointQuery(t *testing.T) {
	store, idx := partitioned(t, testutil.NewRNG(1).Footprints(100, seattle, 0.001), 10)

	got, report, err := NewExtractor(store).Extract(context.Background(), idx,
		geom.BoundingBox{MinLat: -10, MinLon: 10, MaxLat: -9, MaxLon: 11})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.Equal(t, 0, report.Candidates)
	assert.Equal(t, 0, report.TilesLoaded)
}

func TestExtract_EmptyIndex(t *testing.T) {
	store, idx := partitioned(t, nil, 10)

	got, report, err := NewExtractor(store).Extract(context.Background(), idx, seattle)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.Equal(t, 0, report.Candidates)
}

func TestExtract_InvalidQuery(t *testing.T) {
	store, idx := partitioned(t, []model.Record{testutil.Footprint(1, 0, 0, 1)}, 10)

	_, _, err := NewExtractor(store).Extract(context.Background(), idx,
		geom.BoundingBox{MinLat: 1, MinLon: 0, MaxLat: 0, MaxLon: 1})
	assert.ErrorIs(t, err, ErrInvalidBoundingBox)
}

func TestExtract_MissingTile(t *testing.T) {
	ctx := context.Background()
	store, idx := partitioned(t, gridBatch().Records, 1)

	victim, ok := idx.Get("r0c0")
	require.True(t, ok)
	require.NoError(t, store.Delete(ctx, victim.StorageLocation))

	got, report, err := NewExtractor(store).Extract(ctx, idx, geom.BoundingBox{MinLat: 0, MinLon: 0, MaxLat: 1.6, MaxLon: 1.6})
	require.NoError(t, err)
	assert.True(t, report.Partial())
	require.Len(t, report.Failures, 1)
	assert.Equal(t, model.TileID("r0c0"), report.Failures[0].TileID)
	assert.ErrorIs(t, report.Failures[0], blobstore.ErrNotFound)

	assert.Equal(t, 4, report.Candidates)
	assert.Equal(t, 3, report.TilesLoaded)
	assert.Equal(t, []model.RecordID{2, 11, 12}, testutil.SortedIDs(got))
}

func TestExtract_CorruptTile(t *testing.T) {
	ctx := context.Background()
	store, idx := partitioned(t, gridBatch().Records, 1)

	victim, _ := idx.Get("r1c1")
	data, err := blobstore.ReadAll(ctx, store, victim.StorageLocation)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, store.Put(ctx, victim.StorageLocation, data))

	got, report, err := NewExtractor(store).Extract(ctx, idx, geom.BoundingBox{MinLat: 1, MinLon: 1, MaxLat: 1.6, MaxLon: 1.6})
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.ErrorIs(t, report.Failures[0], tile.ErrCorrupt)
	assert.Equal(t, 0, got.Len())

	var rerr *StorageReadError
	require.True(t, errors.As(report.Failures[0], &rerr))
	assert.Equal(t, victim.StorageLocation, rerr.Location)
}

func TestExtract_Canceled(t *testing.T) {
	store, idx := partitioned(t, gridBatch().Records, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewExtractor(store).Extract(ctx, idx, geom.BoundingBox{MinLat: 0, MinLon: 0, MaxLat: 10, MaxLon: 10})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractor_OpenIndex(t *testing.T) {
	ctx := context.Background()
	recs := testutil.NewRNG(9).Footprints(300, seattle, 0.002)
	store, idx := partitioned(t, recs, 20, WithLocation("Seattle"))

	reopened, m, err := NewExtractor(store).OpenIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Seattle", m.Location)
	assert.False(t, m.Legacy)
	assert.Equal(t, idx.Tiles(), reopened.Tiles())

	got, _, err := NewExtractor(store).Extract(ctx, reopened, seattle)
	require.NoError(t, err)
	assert.Equal(t, testutil.BruteForce(recs, seattle), testutil.SortedIDs(got))
}

func TestExtractor_OpenIndex_NoData(t *testing.T) {
	_, _, err := NewExtractor(blobstore.NewMemoryStore()).OpenIndex(context.Background())
	assert.ErrorIs(t, err, manifest.ErrNotFound)
}

func TestExtractor_OpenIndex_LatestRun(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	p := NewPartitioner(store)
	batch := gridBatch()

	_, _, err := p.Partition(ctx, batch, 100)
	require.NoError(t, err)
	_, _, err = p.Partition(ctx, batch, 1)
	require.NoError(t, err)

	idx, m, err := NewExtractor(store).OpenIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), m.ID)
	assert.Equal(t, 1, m.MaxRecordsPerTile)
	for _, tl := range idx.Tiles() {
		assert.Contains(t, tl.StorageLocation, "tiles/000002/")
	}
}

// legacyFeature renders a feature the way the legacy divider wrote tiles:
// per-part index as string id, attributes as a JSON string column.
func legacyFeature(id string, lon, lat, size float64, attrs string) string {
	return fmt.Sprintf(`{"type":"Feature","id":%q,"properties":{"type":"Feature","properties":%q},`+
		`"geometry":{"type":"Polygon","coordinates":[[[%g,%g],[%g,%g],[%g,%g],[%g,%g],[%g,%g]]]}}`,
		id, attrs,
		lon, lat, lon+size, lat, lon+size, lat+size, lon, lat+size, lon, lat)
}

func legacyTile(features ...string) []byte {
	return []byte(`{"type":"FeatureCollection","features":[` + strings.Join(features, ",") + `]}`)
}

func TestExtractor_Legacy(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	// The shared building crosses the cell edge at -122.4 and sits in both
	// tiles. IDs restart at 0 for every downloaded part.
	shared := legacyFeature("1", -122.401, 47.65, 0.002, `{"height": 9.25, "confidence": 0.8}`)
	west := legacyTile(
		legacyFeature("0", -122.45, 47.65, 0.001, `{"height": 6.5, "confidence": 0.9}`),
		shared,
	)
	east := legacyTile(
		legacyFeature("0", -122.35, 47.65, 0.001, `{"height": -1.0, "confidence": -1.0}`),
		shared,
	)
	require.NoError(t, store.Put(ctx, "Seattle_-122.500000_47.600000.geojson", west))
	require.NoError(t, store.Put(ctx, "Seattle_-122.400000_47.600000.geojson", east))
	require.NoError(t, store.Put(ctx, "Seattle"+manifest.LegacySuffix, []byte(`{
  "Seattle_-122.400000_47.600000.geojson": {"x_min": -122.4, "y_min": 47.6, "x_max": -122.3, "y_max": 47.7},
  "Seattle_-122.500000_47.600000.geojson": {"x_min": -122.5, "y_min": 47.6, "x_max": -122.4, "y_max": 47.7}
}`)))

	ex := NewExtractor(store)
	idx, m, err := ex.OpenIndex(ctx)
	require.NoError(t, err)
	assert.True(t, m.Legacy)
	assert.Equal(t, 2, idx.Len())

	got, report, err := ex.Extract(ctx, idx, geom.BoundingBox{MinLat: 47.6, MinLon: -122.5, MaxLat: 47.7, MaxLon: -122.3})
	require.NoError(t, err)
	assert.Equal(t, 2, report.TilesLoaded)
	assert.Equal(t, 4, report.RecordsScanned)
	assert.Equal(t, 1, report.Duplicates)
	require.Equal(t, 3, got.Len())

	var heights, confidences []float64
	got.Each(func(r model.Record) bool {
		require.NotNil(t, r.Height)
		heights = append(heights, *r.Height)
		confidences = append(confidences, r.Confidence)
		return true
	})
	assert.ElementsMatch(t, []float64{6.5, 9.25, -1}, heights)
	assert.ElementsMatch(t, []float64{0.9, 0.8, -1}, confidences)
}

func TestExtract_SharedRecordIDs(t *testing.T) {
	recs := []model.Record{
		testutil.Footprint(0, 0.1, 0.1, 0.1),
		testutil.Footprint(0, 5.1, 5.1, 0.1),
		testutil.Footprint(0, 9.1, 9.1, 0.1),
	}
	query := geom.BoundingBox{MinLat: 0, MinLon: 0, MaxLat: 10, MaxLon: 10}

	for _, k := range []int{1, 10} {
		store, idx := partitioned(t, recs, k)
		got, report, err := NewExtractor(store).Extract(context.Background(), idx, query)
		require.NoError(t, err)
		assert.Equal(t, 3, got.Len(), "k=%d", k)
		assert.Equal(t, 0, report.Duplicates, "k=%d", k)
	}
}

func TestExtract_SharedRecordIDs_FileInput(t *testing.T) {
	lines := `{"type":"Feature","id":"0","properties":{"height":3,"confidence":-1},"geometry":{"type":"Polygon","coordinates":[[[0,0],[0.1,0],[0.1,0.1],[0,0.1],[0,0]]]}}
{"type":"Feature","id":"0","properties":{"height":4,"confidence":-1},"geometry":{"type":"Polygon","coordinates":[[[1,1],[1.1,1],[1.1,1.1],[1,1.1],[1,1]]]}}
`
	batch, err := source.Decode([]byte(lines), nil)
	require.NoError(t, err)
	require.Equal(t, 2, batch.Len())

	store, idx := partitioned(t, batch.Records, 10)
	got, _, err := NewExtractor(store).Extract(context.Background(), idx,
		geom.BoundingBox{MinLat: -1, MinLon: -1, MaxLat: 2, MaxLon: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
}

func TestExtract_Metrics(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	store, idx := partitioned(t, gridBatch().Records, 1)

	got, _, err := NewExtractor(store, WithMetricsCollector(metrics)).Extract(context.Background(), idx,
		geom.BoundingBox{MinLat: 0, MinLon: 0, MaxLat: 1.6, MaxLon: 1.6})
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.ExtractCount)
	assert.Equal(t, int64(4), stats.CandidateTiles)
	assert.Equal(t, int64(got.Len()), stats.RecordsMatched)
	assert.Equal(t, int64(4), stats.TilesRead)
	assert.Positive(t, stats.BytesRead)
}
