package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
)

// indexedPolygon adapts a polygon's centroid to orb.Pointer so it can live
// in a quadtree for candidate filtering.
type indexedPolygon struct {
	index int
	point orb.Point
}

func (p indexedPolygon) Point() orb.Point { return p.point }

// OverlapPairs returns the 0-based (i, j) index pairs, i<j, of polygons in
// polys that truly overlap: their interiors intersect and neither contains
// the other. A spatial index narrows the O(n^2) candidate set before the
// precise boundary check runs.
func OverlapPairs(polys []orb.Polygon) [][2]int {
	if len(polys) < 2 {
		return nil
	}

	bound := polys[0].Bound()
	maxExtent := 0.0
	for _, p := range polys {
		pb := p.Bound()
		bound = bound.Union(pb)
		maxExtent = math.Max(maxExtent, math.Max(pb.Max[0]-pb.Min[0], pb.Max[1]-pb.Min[1]))
	}
	qt := quadtree.New(bound)
	for i, p := range polys {
		c, _ := planarCentroid(p)
		qt.Add(indexedPolygon{index: i, point: c})
	}

	var pairs [][2]int
	seen := map[[2]int]bool{}
	for i, p := range polys {
		pb := p.Bound()
		// A polygon that overlaps p has a bound intersecting pb, and its
		// centroid lies inside its own bound, so that centroid is at most
		// maxExtent away from pb on each axis: padding by maxExtent finds
		// every overlapping polygon as a candidate, however large.
		pad := maxExtent
		search := orb.Bound{
			Min: orb.Point{pb.Min[0] - pad, pb.Min[1] - pad},
			Max: orb.Point{pb.Max[0] + pad, pb.Max[1] + pad},
		}
		candidates := qt.InBound(nil, search)
		for _, c := range candidates {
			j := c.(indexedPolygon).index
			if j <= i {
				continue
			}
			key := [2]int{i, j}
			if seen[key] {
				continue
			}
			seen[key] = true
			if Overlaps(p, polys[j]) {
				pairs = append(pairs, key)
			}
		}
	}
	return pairs
}

// Overlaps reports whether a and b truly overlap: their boundaries cross,
// or they are mutually but not fully contained in one another. Polygons
// that are disjoint, that merely touch along an edge or point, or where
// one fully contains the other, are not considered overlapping.
func Overlaps(a, b orb.Polygon) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if !a.Bound().Intersects(b.Bound()) {
		return false
	}

	ringA, ringB := a[0], b[0]
	if boundariesCross(ringA, ringB) {
		return true
	}

	aInB := pointInRing(ringA[0], ringB)
	bInA := pointInRing(ringB[0], ringA)
	return aInB && bInA
}

func boundariesCross(a, b orb.Ring) bool {
	for i := 0; i < len(a)-1; i++ {
		for j := 0; j < len(b)-1; j++ {
			if properIntersect(a[i], a[i+1], b[j], b[j+1]) {
				return true
			}
		}
	}
	return false
}

// pointInRing is a standard even-odd ray-casting point-in-polygon test.
func pointInRing(p orb.Point, ring orb.Ring) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi[1] > p[1]) != (pj[1] > p[1]) {
			x := pi[0] + (p[1]-pi[1])*(pj[0]-pi[0])/(pj[1]-pi[1])
			if p[0] < x {
				inside = !inside
			}
		}
	}
	return inside
}

func orientation(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, p orb.Point) bool {
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}

// properIntersect reports whether segments (a1,a2) and (b1,b2) cross at a
// point interior to both - shared endpoints or collinear overlap are not
// considered a proper crossing.
func properIntersect(a1, a2, b1, b2 orb.Point) bool {
	d1 := orientation(b1, b2, a1)
	d2 := orientation(b1, b2, a2)
	d3 := orientation(a1, a2, b1)
	d4 := orientation(a1, a2, b2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	// Collinear touching cases are treated as non-proper (touching only).
	if d1 == 0 && onSegment(b1, b2, a1) {
		return false
	}
	if d2 == 0 && onSegment(b1, b2, a2) {
		return false
	}
	if d3 == 0 && onSegment(a1, a2, b1) {
		return false
	}
	if d4 == 0 && onSegment(a1, a2, b2) {
		return false
	}
	return false
}

// planarCentroid returns the area-weighted centroid of a polygon's
// exterior ring, falling back to its bound center for degenerate input.
func planarCentroid(p orb.Polygon) (orb.Point, bool) {
	if len(p) == 0 || len(p[0]) < 3 {
		return orb.Point{}, false
	}
	ring := p[0]
	var cx, cy, area float64
	n := len(ring)
	for i := 0; i < n-1; i++ {
		x0, y0 := ring[i][0], ring[i][1]
		x1, y1 := ring[i+1][0], ring[i+1][1]
		cross := x0*y1 - x1*y0
		area += cross
		cx += (x0 + x1) * cross
		cy += (y0 + y1) * cross
	}
	area /= 2
	if area == 0 {
		b := p.Bound()
		return b.Center(), true
	}
	cx /= 6 * area
	cy /= 6 * area
	return orb.Point{cx, cy}, true
}
