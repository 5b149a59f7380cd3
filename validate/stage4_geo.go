package validate

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/urbanarchive/submiteval/archive"
	"github.com/urbanarchive/submiteval/dispatch"
	"github.com/urbanarchive/submiteval/geo"
	"github.com/urbanarchive/submiteval/rules"
)

func init() {
	register(map[int]dispatch.Validator{
		27: R27,
		28: R28,
		29: R29,
		30: R30,
		31: R31,
		32: R32,
		33: R33,
		34: R34,
		35: R35,
		36: R36,
		41: R41,
	})
}

// R27: layer formula_regula has CRS equal to the literal valoare_regula.
func R27(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if layer.CRS != r.Value {
		return dispatch.Fail, layer.CRS, nil
	}
	return dispatch.Pass, nil, nil
}

// R28: layer formula_regula has a non-empty geometry column.
func R28(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if layer.GeometryColumn < 0 {
		return dispatch.Fail, nil, nil
	}
	return dispatch.Pass, nil, nil
}

// R29: layer formula_regula has no null geometries.
func R29(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	var offenders []int
	for i := range layer.Rows {
		g, ok := layer.Geometry(i)
		if !ok || g == nil {
			offenders = append(offenders, i)
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(offenders), nil
	}
	return dispatch.Pass, nil, nil
}

// R30: layer formula_regula has geometries of type valoare_regula, checked
// on the first row.
func R30(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if len(layer.Rows) == 0 {
		return dispatch.Error, nil, fmt.Errorf("layer %q has no rows", r.Formula)
	}
	g, err := rowGeometry(layer, 0)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if g == nil || geo.TypeName(g) != r.Value {
		return dispatch.Fail, geo.TypeName(g), nil
	}
	return dispatch.Pass, nil, nil
}

// R31: every geometry in layer formula_regula is topologically valid.
func R31(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	var offenders []int
	for i := range layer.Rows {
		g, err := rowGeometry(layer, i)
		if err != nil {
			return dispatch.Error, nil, err
		}
		if g == nil || !geo.Valid(g) {
			offenders = append(offenders, i)
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(offenders), nil
	}
	return dispatch.Pass, nil, nil
}

// R32: layer formula_regula, with the SIRUTA code taken from column
// valoare_regula on row 0, must lie within the administrative polygon.
// Categories {1,2,4} require every feature within the boundary buffered by
// 10 units; category 3 requires the administrative polygon to contain
// every feature instead (the PUD case, rules.CategoryPUD).
func R32(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if len(layer.Rows) == 0 {
		return dispatch.Error, nil, fmt.Errorf("layer %q has no rows", r.Formula)
	}
	siruta, ok := layer.StringValue(0, r.Value)
	if !ok {
		return dispatch.Error, nil, fmt.Errorf("column %q not found on layer %q", r.Value, r.Formula)
	}
	admin, found, err := ctx.Loader.LoadUAT(runContext(ctx), siruta)
	if err != nil {
		return dispatch.Error, nil, fmt.Errorf("load UAT %q: %w", siruta, err)
	}
	if !found {
		return dispatch.Fail, nil, nil
	}

	var offenders []int
	for i := range layer.Rows {
		g, err := rowGeometry(layer, i)
		if err != nil {
			return dispatch.Error, nil, err
		}
		if g == nil {
			offenders = append(offenders, i)
			continue
		}
		feature, adminAligned, err := geo.Align(g, admin, layer.CRS, geo.EPSGWGS84)
		if err != nil {
			return dispatch.Error, nil, err
		}
		var ok bool
		if ctx.Category == rules.CategoryPUD {
			ok = geo.ContainsGeometry(adminAligned, feature)
		} else {
			ok = geo.WithinBuffered(feature, adminAligned, 10)
		}
		if !ok {
			offenders = append(offenders, i)
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(offenders), nil
	}
	return dispatch.Pass, nil, nil
}

// R33: every feature in layer formula_regula (the containees) must lie
// within the row-0 geometry of layer valoare_regula (the container),
// buffered by 0.1 units.
func R33(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	containees, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	containerLayer, err := requireLayer(ctx, r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if len(containerLayer.Rows) == 0 {
		return dispatch.Error, nil, fmt.Errorf("layer %q has no rows", r.Value)
	}
	container, err := rowGeometry(containerLayer, 0)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if container == nil {
		return dispatch.Error, nil, fmt.Errorf("layer %q row 0 has no geometry", r.Value)
	}

	var offenders []int
	for i := range containees.Rows {
		g, err := rowGeometry(containees, i)
		if err != nil {
			return dispatch.Error, nil, err
		}
		if g == nil {
			offenders = append(offenders, i)
			continue
		}
		feature, containerAligned, err := geo.Align(g, container, containees.CRS, containerLayer.CRS)
		if err != nil {
			return dispatch.Error, nil, err
		}
		if !geo.WithinBuffered(feature, containerAligned, 0.1) {
			offenders = append(offenders, i)
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(offenders), nil
	}
	return dispatch.Pass, nil, nil
}

// R34: the union of layer formula_regula's geometries must cover the row-0
// geometry of layer valoare_regula, to within a 50 square-unit tolerance
// resolved via grid-sampled coverage ratio (no boolean polygon union is
// available in the geometry stack).
func R34(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	coversLayer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	coveredLayer, err := requireLayer(ctx, r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if len(coveredLayer.Rows) == 0 {
		return dispatch.Error, nil, fmt.Errorf("layer %q has no rows", r.Value)
	}
	covered, err := rowGeometry(coveredLayer, 0)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if covered == nil {
		return dispatch.Error, nil, fmt.Errorf("layer %q row 0 has no geometry", r.Value)
	}

	var covers []orb.Polygon
	for i := range coversLayer.Rows {
		g, err := rowGeometry(coversLayer, i)
		if err != nil {
			return dispatch.Error, nil, err
		}
		switch p := g.(type) {
		case orb.Polygon:
			covers = append(covers, p)
		case orb.MultiPolygon:
			covers = append(covers, p...)
		}
	}

	ratio := geo.CoverageRatio(covered, covers)
	area := geo.Area(covered)
	if area > 0 && (1-ratio)*area > 50 {
		return dispatch.Fail, nil, nil
	}
	return dispatch.Pass, nil, nil
}

// R35: report unordered pairs of 1-based row indices in layer
// formula_regula whose geometries truly overlap.
func R35(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}

	var polys []orb.Polygon
	var rowOf []int
	for i := range layer.Rows {
		g, err := rowGeometry(layer, i)
		if err != nil {
			return dispatch.Error, nil, err
		}
		if p, ok := g.(orb.Polygon); ok {
			polys = append(polys, p)
			rowOf = append(rowOf, i)
		}
	}

	pairs := geo.OverlapPairs(polys)
	if len(pairs) == 0 {
		return dispatch.Pass, nil, nil
	}

	rowPairs := make([][2]int, len(pairs))
	for i, p := range pairs {
		rowPairs[i] = [2]int{rowOf[p[0]], rowOf[p[1]]}
	}
	return dispatch.Fail, rowPairs, nil
}

// R36: identify sliver polygons in layer formula_regula.
func R36(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	var offenders []int
	for i := range layer.Rows {
		g, err := rowGeometry(layer, i)
		if err != nil {
			return dispatch.Error, nil, err
		}
		if g != nil && geo.IsSliver(g) {
			offenders = append(offenders, i)
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(offenders), nil
	}
	return dispatch.Pass, nil, nil
}

// R41: no row's geometry in layer formula_regula carries a Z ordinate.
func R41(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	var offenders []int
	for i, hasZ := range layer.GeometryHasZ {
		if hasZ {
			offenders = append(offenders, i)
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(offenders), nil
	}
	return dispatch.Pass, nil, nil
}

// rowGeometry fetches and type-asserts row i's geometry cell, surfacing a
// decode mismatch as an Error rather than a silent skip.
func rowGeometry(layer *archive.Table, row int) (orb.Geometry, error) {
	v, ok := layer.Geometry(row)
	if !ok || v == nil {
		return nil, nil
	}
	g, ok := v.(orb.Geometry)
	if !ok {
		return nil, fmt.Errorf("row %d: geometry cell is not a decoded geometry", row)
	}
	return g, nil
}
