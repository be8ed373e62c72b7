package model

import (
	"fmt"

	"github.com/hupe1980/geotile/geom"
)

// RecordID identifies a footprint within one dataset.
// IDs are assigned in source order and never reused.
type RecordID uint64

// TileID is the unique name of a tile within an index.
type TileID string

// Record is one building footprint. Records are immutable once read.
type Record struct {
	ID       RecordID
	Geometry geom.Geometry
	// Height is nil when the source had no value.
	Height     *float64
	Confidence float64
}

// Bound returns the bounding box of the record's geometry.
func (r Record) Bound() (geom.BoundingBox, error) {
	return r.Geometry.Bound()
}

// Tile describes one stored tile.
type Tile struct {
	ID TileID `json:"id"`
	// Bounds covers the full geometry of every record in the tile.
	// It may extend past Cell for records straddling the cell edge.
	Bounds          geom.BoundingBox `json:"bounds"`
	RecordCount     int              `json:"record_count"`
	StorageLocation string           `json:"storage_location"`
	// Cell is the grid cell that owns the tile's records.
	Cell  geom.BoundingBox `json:"cell"`
	Depth int              `json:"depth"`
	// Legacy marks a tile of the <location>_metadata.json layout. Its records
	// may also appear in neighboring tiles and carry no unique ID.
	Legacy bool `json:"-"`
}

// String returns a short description of the tile.
func (t Tile) String() string {
	return fmt.Sprintf("Tile(%s, %d records, %s)", t.ID, t.RecordCount, t.Bounds)
}

// Float returns a pointer to v. It is a helper for optional fields such as
// Record.Height.
func Float(v float64) *float64 {
	return &v
}
