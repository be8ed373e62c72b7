package geom

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// LatLon is a single WGS84 position.
type LatLon struct {
	Lat float64
	Lon float64
}

// ParseLatLon parses a "lat,lon" pair as accepted on the command line.
func ParseLatLon(s string) (LatLon, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return LatLon{}, fmt.Errorf("expected \"lat,lon\", got %q", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return LatLon{}, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return LatLon{}, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}

	p := LatLon{Lat: lat, Lon: lon}
	if !validLat(lat) || !validLon(lon) {
		return LatLon{}, fmt.Errorf("%w: %s", ErrInvalidCoordinate, s)
	}

	return p, nil
}

// String returns the "lat,lon" form.
func (p LatLon) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lon, 'f', -1, 64)
}

// BoundingBox is an axis-aligned rectangle in latitude/longitude.
//
// Invariant: MinLat <= MaxLat and MinLon <= MaxLon.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// NewBoundingBox creates a bounding box and validates its invariant.
func NewBoundingBox(minLat, minLon, maxLat, maxLon float64) (BoundingBox, error) {
	b := BoundingBox{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}
	if err := b.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return b, nil
}

// FromCorners builds the query box spanned by two opposite corners.
// The corners may be given in any order.
func FromCorners(topLeft, bottomRight LatLon) BoundingBox {
	return BoundingBox{
		MinLat: math.Min(topLeft.Lat, bottomRight.Lat),
		MinLon: math.Min(topLeft.Lon, bottomRight.Lon),
		MaxLat: math.Max(topLeft.Lat, bottomRight.Lat),
		MaxLon: math.Max(topLeft.Lon, bottomRight.Lon),
	}
}

// FromOrbBound converts an orb.Bound (X = lon, Y = lat).
func FromOrbBound(b orb.Bound) BoundingBox {
	return BoundingBox{
		MinLat: b.Min.Lat(),
		MinLon: b.Min.Lon(),
		MaxLat: b.Max.Lat(),
		MaxLon: b.Max.Lon(),
	}
}

// Validate checks that all values are finite and min <= max on both axes.
func (b BoundingBox) Validate() error {
	for _, v := range [4]float64{b.MinLat, b.MinLon, b.MaxLat, b.MaxLon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value", ErrInvalidBoundingBox)
		}
	}
	if b.MinLat > b.MaxLat || b.MinLon > b.MaxLon {
		return fmt.Errorf("%w: %s", ErrInvalidBoundingBox, b)
	}
	return nil
}

// Orb returns the box as an orb.Bound.
func (b BoundingBox) Orb() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

// Intersects reports whether two boxes overlap. Touching edges count.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return !(b.MaxLat < o.MinLat || b.MinLat > o.MaxLat || b.MaxLon < o.MinLon || b.MinLon > o.MaxLon)
}

// ContainsPoint reports whether p lies in the closed box.
func (b BoundingBox) ContainsPoint(p orb.Point) bool {
	return p.Lat() >= b.MinLat && p.Lat() <= b.MaxLat && p.Lon() >= b.MinLon && p.Lon() <= b.MaxLon
}

// Union returns the smallest box covering both b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		MinLat: math.Min(b.MinLat, o.MinLat),
		MinLon: math.Min(b.MinLon, o.MinLon),
		MaxLat: math.Max(b.MaxLat, o.MaxLat),
		MaxLon: math.Max(b.MaxLon, o.MaxLon),
	}
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() orb.Point {
	return orb.Point{(b.MinLon + b.MaxLon) / 2, (b.MinLat + b.MaxLat) / 2}
}

// Width is the longitude extent.
func (b BoundingBox) Width() float64 { return b.MaxLon - b.MinLon }

// Height is the latitude extent.
func (b BoundingBox) Height() float64 { return b.MaxLat - b.MinLat }

// Corners returns the four corners counter-clockwise from the south-west one.
func (b BoundingBox) Corners() [4]orb.Point {
	return [4]orb.Point{
		{b.MinLon, b.MinLat},
		{b.MaxLon, b.MinLat},
		{b.MaxLon, b.MaxLat},
		{b.MinLon, b.MaxLat},
	}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[%g,%g .. %g,%g]", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
}

func validLat(v float64) bool {
	return !math.IsNaN(v) && v >= -90 && v <= 90
}

func validLon(v float64) bool {
	return !math.IsNaN(v) && v >= -180 && v <= 180
}
