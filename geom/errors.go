package geom

import "errors"

var (
	// ErrEmptyGeometry is returned for geometries without any polygon or ring.
	ErrEmptyGeometry = errors.New("geom: empty geometry")

	// ErrInvalidRing is returned when a ring has fewer than three positions.
	ErrInvalidRing = errors.New("geom: ring needs at least three positions")

	// ErrInvalidCoordinate is returned for NaN/Inf or out-of-range coordinates.
	ErrInvalidCoordinate = errors.New("geom: invalid coordinate")

	// ErrUnsupportedGeometry is returned for geometry types other than
	// Polygon and MultiPolygon.
	ErrUnsupportedGeometry = errors.New("geom: unsupported geometry type")

	// ErrInvalidBoundingBox is returned when min > max on either axis.
	ErrInvalidBoundingBox = errors.New("geom: invalid bounding box")
)
