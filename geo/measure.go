package geo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Area returns the planar area of g in the units of its CRS.
func Area(g orb.Geometry) float64 {
	if g == nil {
		return 0
	}
	return planar.Area(g)
}

// Length returns the planar perimeter/length of g.
func Length(g orb.Geometry) float64 {
	if g == nil {
		return 0
	}
	return planar.Length(g)
}

// TypeName returns the geometry type name the way valoare_regula spells it.
func TypeName(g orb.Geometry) string {
	switch g.(type) {
	case orb.Point:
		return "Point"
	case orb.MultiPoint:
		return "MultiPoint"
	case orb.LineString:
		return "LineString"
	case orb.MultiLineString:
		return "MultiLineString"
	case orb.Polygon:
		return "Polygon"
	case orb.MultiPolygon:
		return "MultiPolygon"
	case orb.Ring:
		return "Polygon"
	case orb.Collection:
		return "GeometryCollection"
	default:
		return fmt.Sprintf("%T", g)
	}
}

// IsSliver reports the degenerate-polygon heuristic this repo uses for
// sliver detection: vanishingly small area relative to perimeter.
func IsSliver(g orb.Geometry) bool {
	area := Area(g)
	if area >= 1e-6 {
		return false
	}
	if area == 0 {
		return true
	}
	return Length(g)/area > 10
}

// Valid reports whether g is topologically simple: every ring is closed
// and does not self-intersect.
func Valid(g orb.Geometry) bool {
	switch v := g.(type) {
	case orb.Polygon:
		for _, ring := range v {
			if !validRing(ring) {
				return false
			}
		}
		return true
	case orb.MultiPolygon:
		for _, poly := range v {
			if !Valid(poly) {
				return false
			}
		}
		return true
	case orb.Ring:
		return validRing(v)
	case orb.LineString:
		return !selfIntersects(orb.Ring(v), false)
	default:
		return true
	}
}

func validRing(ring orb.Ring) bool {
	if len(ring) < 4 {
		return false
	}
	if ring[0] != ring[len(ring)-1] {
		return false
	}
	return !selfIntersects(ring, true)
}

// selfIntersects checks whether any non-adjacent edge pair of ring
// properly crosses another. closed controls whether the ring's implicit
// closing edge (last point -> first point) participates.
func selfIntersects(ring orb.Ring, closed bool) bool {
	n := len(ring)
	edgeCount := n - 1
	if closed {
		edgeCount = n
	}
	if edgeCount < 2 {
		return false
	}
	edge := func(i int) (orb.Point, orb.Point) {
		return ring[i%n], ring[(i+1)%n]
	}
	for i := 0; i < edgeCount; i++ {
		a1, a2 := edge(i)
		for j := i + 1; j < edgeCount; j++ {
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue // adjacent edges share an endpoint by construction
			}
			b1, b2 := edge(j)
			if properIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}
