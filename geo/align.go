package geo

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

const (
	EPSGStereo70 = "EPSG:3844"
	EPSGWGS84    = "EPSG:4326"
)

// normalizeCRS maps loosely-specified CRS labels (as they appear in
// GeoPackage metadata or reference-service responses) to a canonical
// EPSG:nnnn string.
func normalizeCRS(crs string) string {
	switch strings.ToUpper(strings.TrimSpace(crs)) {
	case "WGS84", "EPSG:4326", "GEOJSON", "CRS84":
		return EPSGWGS84
	case "STEREO70", "EPSG:3844", "PULKOVO 1942(58) / STEREO70":
		return EPSGStereo70
	default:
		return strings.ToUpper(strings.TrimSpace(crs))
	}
}

// Align reprojects b into a's CRS if they differ, returning the
// (possibly unchanged) pair. Both geometries always share a CRS by the
// time a geometry rule compares them, per the alignment invariant.
func Align(a, b orb.Geometry, aCRS, bCRS string) (orb.Geometry, orb.Geometry, error) {
	from := normalizeCRS(bCRS)
	to := normalizeCRS(aCRS)
	if from == to || b == nil {
		return a, b, nil
	}
	transformed, err := Reproject(b, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("align geometry from %s to %s: %w", from, to, err)
	}
	return a, transformed, nil
}

// Reproject transforms every coordinate of g from one CRS to another. Only
// the WGS84 <-> Stereo70 pair is supported, which covers every cross-CRS
// comparison the validators perform.
func Reproject(g orb.Geometry, from, to string) (orb.Geometry, error) {
	from, to = normalizeCRS(from), normalizeCRS(to)
	if from == to {
		return g, nil
	}

	var transform func(orb.Point) orb.Point
	switch {
	case from == EPSGWGS84 && to == EPSGStereo70:
		transform = func(p orb.Point) orb.Point {
			e, n := stereo70Forward(deg2rad(p[1]), deg2rad(p[0]))
			return orb.Point{e, n}
		}
	case from == EPSGStereo70 && to == EPSGWGS84:
		transform = func(p orb.Point) orb.Point {
			phi, lam := stereo70Inverse(p[0], p[1])
			return orb.Point{rad2deg(lam), rad2deg(phi)}
		}
	default:
		return nil, fmt.Errorf("unsupported CRS pair %s -> %s", from, to)
	}

	return mapCoordinates(g, transform), nil
}

// mapCoordinates rebuilds g with every point run through transform,
// preserving geometry type and ring/part structure.
func mapCoordinates(g orb.Geometry, transform func(orb.Point) orb.Point) orb.Geometry {
	switch v := g.(type) {
	case orb.Point:
		return transform(v)
	case orb.MultiPoint:
		out := make(orb.MultiPoint, len(v))
		for i, p := range v {
			out[i] = transform(p)
		}
		return out
	case orb.LineString:
		return orb.LineString(mapRing(orb.Ring(v), transform))
	case orb.MultiLineString:
		out := make(orb.MultiLineString, len(v))
		for i, ls := range v {
			out[i] = orb.LineString(mapRing(orb.Ring(ls), transform))
		}
		return out
	case orb.Ring:
		return mapRing(v, transform)
	case orb.Polygon:
		out := make(orb.Polygon, len(v))
		for i, ring := range v {
			out[i] = mapRing(ring, transform)
		}
		return out
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(v))
		for i, poly := range v {
			out[i] = mapCoordinates(poly, transform).(orb.Polygon)
		}
		return out
	case orb.Collection:
		out := make(orb.Collection, len(v))
		for i, sub := range v {
			out[i] = mapCoordinates(sub, transform)
		}
		return out
	default:
		return g
	}
}

func mapRing(ring orb.Ring, transform func(orb.Point) orb.Point) orb.Ring {
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		out[i] = transform(p)
	}
	return out
}
