package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// WithinBuffered reports whether every vertex of inner lies inside outer,
// or within tolerance of its boundary - the practical equivalent of
// "inner lies within outer buffered by tolerance" without materializing a
// buffered polygon.
func WithinBuffered(inner, outer orb.Geometry, tolerance float64) bool {
	outerPoly, ok := asPolygon(outer)
	if !ok {
		return false
	}
	for _, p := range vertices(inner) {
		if pointInRing(p, outerPoly[0]) {
			continue
		}
		if distanceToRing(p, outerPoly[0]) <= tolerance {
			continue
		}
		return false
	}
	return true
}

// ContainsGeometry reports whether container fully contains contained:
// every vertex of contained lies inside container, and their boundaries
// never properly cross.
func ContainsGeometry(container, contained orb.Geometry) bool {
	containerPoly, ok := asPolygon(container)
	if !ok {
		return false
	}
	for _, p := range vertices(contained) {
		if !pointInRing(p, containerPoly[0]) {
			return false
		}
	}
	if containedPoly, ok := asPolygon(contained); ok {
		if boundariesCross(containerPoly[0], containedPoly[0]) {
			return false
		}
	}
	return true
}

// CoverageRatio estimates, via grid sampling, the fraction of covered's
// area that falls inside at least one of the covers polygons. Exact
// polygon-union area requires boolean clipping this package doesn't
// implement; grid quadrature is accurate enough for the tolerance-based
// coverage check R34 performs.
func CoverageRatio(covered orb.Geometry, covers []orb.Polygon) float64 {
	coveredPoly, ok := asPolygon(covered)
	if !ok {
		return 0
	}
	bound := coveredPoly.Bound()
	const gridSize = 120

	dx := (bound.Max[0] - bound.Min[0]) / gridSize
	dy := (bound.Max[1] - bound.Min[1]) / gridSize
	if dx == 0 || dy == 0 {
		return 1
	}

	var total, coveredCount int
	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			p := orb.Point{
				bound.Min[0] + (float64(i)+0.5)*dx,
				bound.Min[1] + (float64(j)+0.5)*dy,
			}
			if !pointInRing(p, coveredPoly[0]) {
				continue
			}
			total++
			for _, c := range covers {
				if len(c) > 0 && pointInRing(p, c[0]) {
					coveredCount++
					break
				}
			}
		}
	}
	if total == 0 {
		return 1
	}
	return float64(coveredCount) / float64(total)
}

func asPolygon(g orb.Geometry) (orb.Polygon, bool) {
	switch v := g.(type) {
	case orb.Polygon:
		return v, true
	case orb.MultiPolygon:
		if len(v) > 0 {
			return v[0], true
		}
	case orb.Ring:
		return orb.Polygon{v}, true
	}
	return nil, false
}

func vertices(g orb.Geometry) []orb.Point {
	switch v := g.(type) {
	case orb.Point:
		return []orb.Point{v}
	case orb.MultiPoint:
		return v
	case orb.LineString:
		return v
	case orb.Ring:
		return v
	case orb.Polygon:
		var pts []orb.Point
		for _, r := range v {
			pts = append(pts, r...)
		}
		return pts
	case orb.MultiPolygon:
		var pts []orb.Point
		for _, poly := range v {
			for _, r := range poly {
				pts = append(pts, r...)
			}
		}
		return pts
	default:
		return nil
	}
}

func distanceToRing(p orb.Point, ring orb.Ring) float64 {
	best := math.Inf(1)
	for i := 0; i < len(ring)-1; i++ {
		d := distanceToSegment(p, ring[i], ring[i+1])
		if d < best {
			best = d
		}
	}
	return best
}

func distanceToSegment(p, a, b orb.Point) float64 {
	vx, vy := b[0]-a[0], b[1]-a[1]
	wx, wy := p[0]-a[0], p[1]-a[1]

	lenSq := vx*vx + vy*vy
	if lenSq == 0 {
		return math.Hypot(wx, wy)
	}
	t := (wx*vx + wy*vy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	cx, cy := a[0]+t*vx, a[1]+t*vy
	return math.Hypot(p[0]-cx, p[1]-cy)
}
