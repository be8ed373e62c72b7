// Package geom provides the geometry primitives used by geotile.
//
// Footprints are represented by [Geometry], a tagged variant over polygon and
// multipolygon shapes backed by github.com/paulmach/orb. Both kinds share one
// representation (a multipolygon with a single member for plain polygons), so
// callers never branch on the concrete shape:
//
//	g := geom.NewPolygon(orb.Polygon{ring})
//	box, err := g.Bound()
//	if g.IntersectsBox(query) { ... }
//
// Coordinates follow GeoJSON order (X = longitude, Y = latitude). [BoundingBox]
// exposes the same rectangle in latitude/longitude terms, matching the tile
// metadata format.
package geom
