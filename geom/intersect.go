package geom

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// IntersectsBox reports whether the geometry and the closed box share at
// least one point. Touching counts as intersecting. Invalid geometries never
// intersect.
//
// Two closed regions intersect iff their boundaries cross or one contains
// the other, so the test checks, in order: geometry vertex inside the box,
// box corner inside a polygon (holes excluded), and edge crossings.
func (g Geometry) IntersectsBox(b BoundingBox) bool {
	gb, err := g.Bound()
	if err != nil || !gb.Intersects(b) {
		return false
	}

	for _, poly := range g.polys {
		for _, ring := range poly {
			for _, p := range ring {
				if b.ContainsPoint(p) {
					return true
				}
			}
		}
	}

	corners := b.Corners()
	for _, poly := range g.polys {
		for _, c := range corners {
			if planar.PolygonContains(poly, c) {
				return true
			}
		}
	}

	for _, poly := range g.polys {
		for _, ring := range poly {
			if ringCrossesBox(ring, corners) {
				return true
			}
		}
	}

	return false
}

func ringCrossesBox(ring orb.Ring, corners [4]orb.Point) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		a := ring[i]
		c := ring[(i+1)%n] // implicit closing edge for unclosed rings
		for j := 0; j < 4; j++ {
			if segmentsIntersect(a, c, corners[j], corners[(j+1)%4]) {
				return true
			}
		}
	}
	return false
}

// segmentsIntersect is the orientation test for closed segments p1-p2 and
// q1-q2, including collinear overlap and degenerate (point) segments.
func segmentsIntersect(p1, p2, q1, q2 orb.Point) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	return (d1 == 0 && onSegment(q1, q2, p1)) ||
		(d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) ||
		(d4 == 0 && onSegment(p1, p2, q2))
}

func orientation(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// onSegment assumes c is collinear with a-b.
func onSegment(a, b, c orb.Point) bool {
	return c[0] >= min(a[0], b[0]) && c[0] <= max(a[0], b[0]) &&
		c[1] >= min(a[1], b[1]) && c[1] <= max(a[1], b[1])
}
