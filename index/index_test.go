package index

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/hupe1980/geotile/geom"
	"github.com/hupe1980/geotile/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(minLat, minLon, maxLat, maxLon float64) geom.BoundingBox {
	return geom.BoundingBox{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}
}

func grid(n int) []model.Tile {
	var tiles []model.Tile
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			b := box(float64(y), float64(x), float64(y+1), float64(x+1))
			tiles = append(tiles, model.Tile{
				ID:              model.TileID(fmt.Sprintf("%d-%d", y, x)),
				Bounds:          b,
				Cell:            b,
				RecordCount:     1,
				StorageLocation: fmt.Sprintf("tiles/%d-%d.tile", y, x),
			})
		}
	}
	return tiles
}

func ids(tiles []model.Tile) []model.TileID {
	out := make([]model.TileID, len(tiles))
	for i, t := range tiles {
		out[i] = t.ID
	}
	return out
}

func TestNew_Validation(t *testing.T) {
	_, err := New([]model.Tile{{ID: "a", Bounds: box(0, 0, 1, 1)}, {ID: "a", Bounds: box(2, 2, 3, 3)}})
	assert.ErrorIs(t, err, ErrDuplicateTile)

	_, err = New([]model.Tile{{ID: "", Bounds: box(0, 0, 1, 1)}})
	assert.ErrorIs(t, err, ErrInvalidTile)

	_, err = New([]model.Tile{{ID: "a", Bounds: box(1, 0, 0, 1)}})
	assert.ErrorIs(t, err, ErrInvalidTile)
	assert.ErrorIs(t, err, geom.ErrInvalidBoundingBox)
}

func TestEmptyIndex(t *testing.T) {
	idx, err := New(nil)
	require.NoError(t, err)

	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.FindIntersecting(box(-90, -180, 90, 180)))
	_, ok := idx.Bounds()
	assert.False(t, ok)

	var nilIdx *TileIndex
	assert.Equal(t, 0, nilIdx.Len())
	assert.Empty(t, nilIdx.FindIntersecting(box(0, 0, 1, 1)))
}

func TestAccessors(t *testing.T) {
	idx, err := New(grid(3))
	require.NoError(t, err)

	assert.Equal(t, 9, idx.Len())
	assert.Equal(t, 9, idx.TotalRecords())
	assert.Len(t, idx.Tiles(), 9)

	b, ok := idx.Bounds()
	require.True(t, ok)
	assert.Equal(t, box(0, 0, 3, 3), b)

	tile, ok := idx.Get("1-2")
	require.True(t, ok)
	assert.Equal(t, box(1, 2, 2, 3), tile.Bounds)

	_, ok = idx.Get("nope")
	assert.False(t, ok)
}

func TestFindIntersecting(t *testing.T) {
	idx, err := New(grid(3))
	require.NoError(t, err)

	tests := []struct {
		name  string
		query geom.BoundingBox
		want  []model.TileID
	}{
		{"inside one tile", box(0.2, 0.2, 0.8, 0.8), []model.TileID{"0-0"}},
		{"spans two", box(0.2, 0.5, 0.8, 1.5), []model.TileID{"0-0", "0-1"}},
		{"touching edge", box(0.2, 3, 0.8, 4), []model.TileID{"0-2"}},
		{"touching inner corner", box(1, 1, 1, 1), []model.TileID{"0-0", "0-1", "1-0", "1-1"}},
		{"everything", box(-1, -1, 4, 4), ids(grid(3))},
		{"disjoint", box(10, 10, 11, 11), nil},
		{"just outside", box(0.2, 3.0001, 0.8, 4), nil},
		{"invalid query", box(1, 1, 0, 0), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.FindIntersecting(tt.query)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFindIntersecting_DegenerateTiles(t *testing.T) {
	idx, err := New([]model.Tile{
		{ID: "p1", Bounds: box(5, 5, 5, 5)},
		{ID: "p2", Bounds: box(5, 5, 5, 5)},
		{ID: "line", Bounds: box(5, 4, 5, 6)},
	})
	require.NoError(t, err)

	assert.Equal(t, []model.TileID{"p1", "p2", "line"}, ids(idx.FindIntersecting(box(5, 5, 5, 5))))
	assert.Equal(t, []model.TileID{"line"}, ids(idx.FindIntersecting(box(4, 4, 5, 4))))
	assert.Empty(t, idx.FindIntersecting(box(5.1, 5.1, 6, 6)))
}

func TestFindIntersecting_MatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	var tiles []model.Tile
	for i := 0; i < 500; i++ {
		lat, lon := rng.Float64()*10, rng.Float64()*10
		tiles = append(tiles, model.Tile{
			ID:     model.TileID(fmt.Sprintf("t%03d", i)),
			Bounds: box(lat, lon, lat+rng.Float64(), lon+rng.Float64()),
		})
	}
	idx, err := New(tiles)
	require.NoError(t, err)

	for q := 0; q < 50; q++ {
		lat, lon := rng.Float64()*10, rng.Float64()*10
		query := box(lat, lon, lat+rng.Float64()*2, lon+rng.Float64()*2)

		want := []model.TileID{}
		for _, tile := range tiles {
			if tile.Bounds.Intersects(query) {
				want = append(want, tile.ID)
			}
		}

		got := idx.FindIntersecting(query)
		assert.Equal(t, want, ids(got))
		// Stable across calls.
		assert.Equal(t, got, idx.FindIntersecting(query))
	}
}
