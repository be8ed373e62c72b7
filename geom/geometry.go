package geom

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Kind tags the shape a Geometry was read as.
type Kind uint8

const (
	// KindInvalid marks a geometry that could not be read (null or unsupported).
	KindInvalid Kind = iota
	// KindPolygon is a single polygon with an outer ring and optional holes.
	KindPolygon
	// KindMultiPolygon is a collection of polygons.
	KindMultiPolygon
)

func (k Kind) String() string {
	switch k {
	case KindPolygon:
		return "Polygon"
	case KindMultiPolygon:
		return "MultiPolygon"
	default:
		return "Invalid"
	}
}

// Geometry is a footprint shape.
//
// Polygons are stored as a multipolygon with one member so bounding-box and
// intersection logic is shared across both kinds. The Kind is kept so the
// shape round-trips to GeoJSON unchanged.
type Geometry struct {
	kind  Kind
	polys orb.MultiPolygon
}

// NewPolygon wraps a polygon.
func NewPolygon(p orb.Polygon) Geometry {
	return Geometry{kind: KindPolygon, polys: orb.MultiPolygon{p}}
}

// NewMultiPolygon wraps a multipolygon.
func NewMultiPolygon(mp orb.MultiPolygon) Geometry {
	return Geometry{kind: KindMultiPolygon, polys: mp}
}

// Invalid returns a geometry that fails Validate. It stands in for records
// whose source geometry was null or of an unsupported type.
func Invalid() Geometry {
	return Geometry{kind: KindInvalid}
}

// FromOrb converts a decoded orb geometry. Only Polygon and MultiPolygon are
// accepted.
func FromOrb(g orb.Geometry) (Geometry, error) {
	switch v := g.(type) {
	case orb.Polygon:
		return NewPolygon(v), nil
	case orb.MultiPolygon:
		return NewMultiPolygon(v), nil
	case nil:
		return Invalid(), ErrEmptyGeometry
	default:
		return Invalid(), fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.GeoJSONType())
	}
}

// Kind returns the shape tag.
func (g Geometry) Kind() Kind { return g.kind }

// Polygons returns the polygons making up the geometry.
// The returned slice must be treated as read-only.
func (g Geometry) Polygons() orb.MultiPolygon { return g.polys }

// Orb returns the geometry as an orb.Geometry of its original kind.
// Invalid geometries return nil.
func (g Geometry) Orb() orb.Geometry {
	switch g.kind {
	case KindPolygon:
		return g.polys[0]
	case KindMultiPolygon:
		return g.polys
	default:
		return nil
	}
}

// Validate checks that the geometry can produce a bounding box: at least one
// polygon, every ring with three or more positions, and every coordinate
// finite and within WGS84 range. Unclosed rings are accepted and treated as
// implicitly closed.
func (g Geometry) Validate() error {
	if g.kind == KindInvalid || len(g.polys) == 0 {
		return ErrEmptyGeometry
	}
	for _, poly := range g.polys {
		if len(poly) == 0 {
			return ErrEmptyGeometry
		}
		for _, ring := range poly {
			if len(ring) < 3 {
				return ErrInvalidRing
			}
			for _, p := range ring {
				if !validLon(p.Lon()) || !validLat(p.Lat()) {
					return fmt.Errorf("%w: (%g, %g)", ErrInvalidCoordinate, p.Lat(), p.Lon())
				}
			}
		}
	}
	return nil
}

// Bound returns the bounding box of the geometry, or an error if the
// geometry is invalid.
func (g Geometry) Bound() (BoundingBox, error) {
	if err := g.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return FromOrbBound(g.polys.Bound()), nil
}

// Center returns the center of the bounding box. It is the point used to
// assign a footprint to exactly one grid cell.
func (g Geometry) Center() (orb.Point, error) {
	b, err := g.Bound()
	if err != nil {
		return orb.Point{}, err
	}
	return b.Center(), nil
}
