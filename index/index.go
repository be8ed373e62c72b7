package index

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/dhconnelly/rtreego"
	"github.com/hupe1980/geotile/geom"
	"github.com/hupe1980/geotile/model"
)

var (
	// ErrDuplicateTile is returned when two tiles share an ID.
	ErrDuplicateTile = errors.New("index: duplicate tile id")
	// ErrInvalidTile is returned for tiles with an empty ID or invalid bounds.
	ErrInvalidTile = errors.New("index: invalid tile")
)

const (
	minChildren = 25
	maxChildren = 50

	// pad widens rectangles handed to the R-tree, which treats touching
	// rectangles as disjoint. Candidates are re-checked exactly.
	pad = 1e-9
)

type entry struct {
	pos  int
	rect rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect { return e.rect }

// TileIndex maps query boxes to tiles.
type TileIndex struct {
	tiles  []model.Tile
	byID   map[model.TileID]int
	tree   *rtreego.Rtree
	bounds geom.BoundingBox
	total  int
}

// New builds an index over tiles. The order of tiles is preserved and
// defines the order of query results.
func New(tiles []model.Tile) (*TileIndex, error) {
	idx := &TileIndex{
		tiles: make([]model.Tile, len(tiles)),
		byID:  make(map[model.TileID]int, len(tiles)),
		tree:  rtreego.NewTree(2, minChildren, maxChildren),
	}
	copy(idx.tiles, tiles)

	for i, t := range idx.tiles {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: empty id at position %d", ErrInvalidTile, i)
		}
		if err := t.Bounds.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidTile, t.ID, err)
		}
		if _, ok := idx.byID[t.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTile, t.ID)
		}
		idx.byID[t.ID] = i

		rect, err := toRect(t.Bounds)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidTile, t.ID, err)
		}
		idx.tree.Insert(&entry{pos: i, rect: rect})

		if i == 0 {
			idx.bounds = t.Bounds
		} else {
			idx.bounds = idx.bounds.Union(t.Bounds)
		}
		idx.total += t.RecordCount
	}
	return idx, nil
}

func toRect(b geom.BoundingBox) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.MinLon - pad, b.MinLat - pad},
		[]float64{b.Width() + 2*pad, b.Height() + 2*pad},
	)
}

// Len returns the number of tiles.
func (idx *TileIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.tiles)
}

// Tiles returns a copy of all tiles in index order.
func (idx *TileIndex) Tiles() []model.Tile {
	if idx == nil {
		return nil
	}
	return append([]model.Tile(nil), idx.tiles...)
}

// Get returns the tile with the given ID.
func (idx *TileIndex) Get(id model.TileID) (model.Tile, bool) {
	if idx == nil {
		return model.Tile{}, false
	}
	i, ok := idx.byID[id]
	if !ok {
		return model.Tile{}, false
	}
	return idx.tiles[i], true
}

// Bounds returns the union of all tile bounds. ok is false for an empty index.
func (idx *TileIndex) Bounds() (b geom.BoundingBox, ok bool) {
	if idx.Len() == 0 {
		return geom.BoundingBox{}, false
	}
	return idx.bounds, true
}

// TotalRecords returns the sum of all tile record counts.
func (idx *TileIndex) TotalRecords() int {
	if idx == nil {
		return 0
	}
	return idx.total
}

// Candidates returns the index positions of all tiles whose bounds
// intersect query. Touching edges count as intersecting.
func (idx *TileIndex) Candidates(query geom.BoundingBox) *roaring.Bitmap {
	bm := roaring.New()
	if idx.Len() == 0 || query.Validate() != nil {
		return bm
	}

	rect, err := toRect(query)
	if err != nil {
		return bm
	}
	for _, s := range idx.tree.SearchIntersect(rect) {
		e := s.(*entry)
		if idx.tiles[e.pos].Bounds.Intersects(query) {
			bm.Add(uint32(e.pos))
		}
	}
	return bm
}

// FindIntersecting returns every tile whose bounds intersect query, in
// index order.
func (idx *TileIndex) FindIntersecting(query geom.BoundingBox) []model.Tile {
	bm := idx.Candidates(query)
	out := make([]model.Tile, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, idx.tiles[it.Next()])
	}
	return out
}
