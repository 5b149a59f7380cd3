package validate

import (
	"fmt"
	"strings"

	"github.com/urbanarchive/submiteval/archive"
	"github.com/urbanarchive/submiteval/dispatch"
	"github.com/urbanarchive/submiteval/geo"
	"github.com/urbanarchive/submiteval/reference"
	"github.com/urbanarchive/submiteval/rules"
)

func init() {
	register(map[int]dispatch.Validator{
		25: R25,
		26: R26,
		37: R37,
		38: R38,
		39: R39,
		40: R40,
		42: R42,
		43: R43,
		44: R44,
		45: R45,
		46: R46,
	})
}

// R25: each row's (h1, h2, h3) codes must exist in their dictionaries, and
// each child's digit-prefix must contain its parent's. Nulls in h2/h3 are
// tolerated.
func R25(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	cols := rules.CommaList(r.Value)
	if len(cols) != 3 {
		return dispatch.Error, nil, fmt.Errorf("expected 3 columns (h1,h2,h3), got %d", len(cols))
	}
	h1Col, h2Col, h3Col := cols[0], cols[1], cols[2]

	h1Dict, err := getDict(ctx, reference.H1)
	if err != nil {
		return dispatch.Error, nil, err
	}
	h2Dict, err := getDict(ctx, reference.H2)
	if err != nil {
		return dispatch.Error, nil, err
	}
	h3Dict, err := getDict(ctx, reference.H3)
	if err != nil {
		return dispatch.Error, nil, err
	}

	var offenders []int
	for i := range layer.Rows {
		h1, _ := layer.StringValue(i, h1Col)
		h2, h2Present := layer.StringValue(i, h2Col)
		h3, h3Present := layer.StringValue(i, h3Col)

		if h1 == "" || !dictContains(h1Dict, h1) {
			offenders = append(offenders, i)
			continue
		}
		if h2Present && h2 != "" {
			if !dictContains(h2Dict, h2) || !strings.Contains(digitPrefix(h2), digitPrefix(h1)) {
				offenders = append(offenders, i)
				continue
			}
		}
		if h3Present && h3 != "" {
			if !dictContains(h3Dict, h3) || !strings.Contains(digitPrefix(h3), digitPrefix(h2)) {
				offenders = append(offenders, i)
				continue
			}
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(offenders), nil
	}
	return dispatch.Pass, nil, nil
}

// R26: every value in valoare_regula's column must also occur in
// formula_regula's column (referential inclusion).
func R26(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	from, err := rules.ParseLayerColumn(r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	to, err := rules.ParseLayerColumn(r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}

	fromLayer, ok := view.Layers[from.Layer]
	if !ok {
		return dispatch.Error, nil, fmt.Errorf("layer %q not found", from.Layer)
	}
	toLayer, ok := view.Layers[to.Layer]
	if !ok {
		return dispatch.Error, nil, fmt.Errorf("layer %q not found", to.Layer)
	}

	present := map[string]bool{}
	for i := range fromLayer.Rows {
		if v, ok := fromLayer.StringValue(i, from.Column); ok {
			present[v] = true
		}
	}

	var offenders []int
	for i := range toLayer.Rows {
		v, ok := toLayer.StringValue(i, to.Column)
		if !ok || !present[v] {
			offenders = append(offenders, i)
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(offenders), nil
	}
	return dispatch.Pass, nil, nil
}

// R37: codes in layer formula_regula's valoare_regula column must be
// unique; report 1-based indices of duplicates.
func R37(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}

	seen := map[string]bool{}
	var offenders []int
	for i := range layer.Rows {
		v, _ := layer.StringValue(i, r.Value)
		if seen[v] {
			offenders = append(offenders, i)
		} else {
			seen[v] = true
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(dedupeInts(offenders)), nil
	}
	return dispatch.Pass, nil, nil
}

// R38: referential exclusion, the inverse of R26 - codes from
// valoare_regula's column that also appear in formula_regula's column are
// themselves the violation.
func R38(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	excluded, err := rules.ParseLayerColumn(r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	candidate, err := rules.ParseLayerColumn(r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}

	excludedLayer, ok := view.Layers[excluded.Layer]
	if !ok {
		return dispatch.Error, nil, fmt.Errorf("layer %q not found", excluded.Layer)
	}
	candidateLayer, ok := view.Layers[candidate.Layer]
	if !ok {
		return dispatch.Error, nil, fmt.Errorf("layer %q not found", candidate.Layer)
	}

	forbidden := map[string]bool{}
	for i := range excludedLayer.Rows {
		if v, ok := excludedLayer.StringValue(i, excluded.Column); ok {
			forbidden[v] = true
		}
	}

	var offenders []int
	for i := range candidateLayer.Rows {
		v, ok := candidateLayer.StringValue(i, candidate.Column)
		if ok && forbidden[v] {
			offenders = append(offenders, i)
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(offenders), nil
	}
	return dispatch.Pass, nil, nil
}

// R39: for each row, the code column's ZF/ZRS dictionary long-form must
// match the type column after mapping ş/ţ to ș/ț on both sides.
func R39(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	cols := rules.CommaList(r.Value)
	if len(cols) != 2 {
		return dispatch.Error, nil, fmt.Errorf("expected 2 columns (cod,tip), got %d", len(cols))
	}
	codCol, tipCol := cols[0], cols[1]

	dict, err := getDict(ctx, reference.ZFZRS)
	if err != nil {
		return dispatch.Error, nil, err
	}

	var offenders []int
	for i := range layer.Rows {
		code, _ := layer.StringValue(i, codCol)
		tip, _ := layer.StringValue(i, tipCol)
		long, found := dictLookup(dict, code)
		if !found || rules.NormalizeRomanian(tip) != rules.NormalizeRomanian(long) {
			offenders = append(offenders, i)
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(offenders), nil
	}
	return dispatch.Pass, nil, nil
}

// R40: each comma-split column must have a single consistent value across
// the layer; rows disagreeing with the majority are reported. When every
// value is identical the rule Passes (the conservative reading of an
// underspecified tie-breaking rule - see the design notes).
func R40(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}

	var offenders []int
	for _, col := range rules.CommaList(r.Value) {
		counts := map[string]int{}
		for i := range layer.Rows {
			v, _ := layer.StringValue(i, col)
			counts[v]++
		}
		majority, majorityCount := "", -1
		for v, c := range counts {
			if c > majorityCount {
				majority, majorityCount = v, c
			}
		}
		for i := range layer.Rows {
			v, _ := layer.StringValue(i, col)
			if v != majority {
				offenders = append(offenders, i)
			}
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(dedupeInts(offenders)), nil
	}
	return dispatch.Pass, nil, nil
}

// R42: per-row geometry area (converted from m^2 to hectares when the unit
// is ha) must match the named column within 0.1 absolute tolerance. An
// unrecognized unit token is an explicit Error, not a silent pass.
func R42(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	lu, err := rules.ParseLayerUnit(r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	layer, err := requireLayer(ctx, lu.Layer)
	if err != nil {
		return dispatch.Error, nil, err
	}

	var divisor float64
	switch lu.Unit {
	case "ha":
		divisor = 10000
	case "m":
		divisor = 1
	default:
		return dispatch.Error, nil, fmt.Errorf("unrecognized area unit %q", lu.Unit)
	}

	var offenders []int
	for i := range layer.Rows {
		g, err := rowGeometry(layer, i)
		if err != nil {
			return dispatch.Error, nil, err
		}
		want, ok := columnFloat(layer, i, r.Value)
		if g == nil || !ok {
			offenders = append(offenders, i)
			continue
		}
		got := round2(geo.Area(g) / divisor)
		if diff := got - want; diff > 0.1 || diff < -0.1 {
			offenders = append(offenders, i)
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(offenders), nil
	}
	return dispatch.Pass, nil, nil
}

// R43: length analogue of R42, meters only, no unit switch.
func R43(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	lc, err := rules.ParseLayerColumnHyphen(r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	layer, err := requireLayer(ctx, lc.Layer)
	if err != nil {
		return dispatch.Error, nil, err
	}

	var offenders []int
	for i := range layer.Rows {
		g, err := rowGeometry(layer, i)
		if err != nil {
			return dispatch.Error, nil, err
		}
		want, ok := columnFloat(layer, i, lc.Column)
		if g == nil || !ok {
			offenders = append(offenders, i)
			continue
		}
		got := round2(geo.Length(g))
		if diff := got - want; diff > 0.1 || diff < -0.1 {
			offenders = append(offenders, i)
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(offenders), nil
	}
	return dispatch.Pass, nil, nil
}

// R44: the sums of two named columns (possibly in different layers) must
// differ by no more than 0.1.
func R44(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	a, err := rules.ParseLayerColumnHyphen(r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	b, err := rules.ParseLayerColumnHyphen(r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}
	aLayer, ok := view.Layers[a.Layer]
	if !ok {
		return dispatch.Error, nil, fmt.Errorf("layer %q not found", a.Layer)
	}
	bLayer, ok := view.Layers[b.Layer]
	if !ok {
		return dispatch.Error, nil, fmt.Errorf("layer %q not found", b.Layer)
	}

	aSum := columnSum(aLayer, a.Column)
	bSum := columnSum(bLayer, b.Column)
	diff := aSum - bSum
	if diff > 0.1 || diff < -0.1 {
		return dispatch.Fail, fmt.Sprintf("%.2f vs %.2f", aSum, bSum), nil
	}
	return dispatch.Pass, nil, nil
}

// R45: the administrative polygon for the SIRUTA in formula_regula's
// valoare_regula column (row 0) is resolvable.
func R45(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
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
	_, found, err := ctx.Loader.LoadUAT(runContext(ctx), siruta)
	if err != nil {
		return dispatch.Error, nil, fmt.Errorf("load UAT %q: %w", siruta, err)
	}
	if !found {
		return dispatch.Fail, siruta, nil
	}
	return dispatch.Pass, nil, nil
}

// R46: cross-table composite check. For each layer1 row whose c1 value
// appears in layer2's c2 column, t1 (trimmed) must appear somewhere in
// layer2's t2 column, and z1 must equal the literal zone after the
// Romanian-letter mapping.
func R46(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	left, err := rules.ParseCrossTableTerm(r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	right, err := rules.ParseCrossTableTerm(r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}
	c1, t1 := left.Cols[0], left.Cols[1]
	c2, t2, literalZone := right.Cols[0], right.Cols[1], right.Cols[2]

	layer1, ok := view.Layers[left.Layer]
	if !ok {
		return dispatch.Error, nil, fmt.Errorf("layer %q not found", left.Layer)
	}
	layer2, ok := view.Layers[right.Layer]
	if !ok {
		return dispatch.Error, nil, fmt.Errorf("layer %q not found", right.Layer)
	}

	c2Values := map[string]bool{}
	t2Values := map[string]bool{}
	for i := range layer2.Rows {
		if v, ok := layer2.StringValue(i, c2); ok {
			c2Values[v] = true
		}
		if v, ok := layer2.StringValue(i, t2); ok {
			t2Values[v] = true
		}
	}

	z1 := left.Cols[2]

	var offenders []int
	for i := range layer1.Rows {
		c1Val, _ := layer1.StringValue(i, c1)
		if !c2Values[c1Val] {
			continue
		}
		t1Val, _ := layer1.StringValue(i, t1)
		if !t2Values[strings.TrimSpace(t1Val)] {
			offenders = append(offenders, i)
			continue
		}
		z1Val, _ := layer1.StringValue(i, z1)
		if rules.NormalizeRomanian(z1Val) != rules.NormalizeRomanian(literalZone) {
			offenders = append(offenders, i)
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(offenders), nil
	}
	return dispatch.Pass, nil, nil
}

func columnFloat(layer *archive.Table, row int, col string) (float64, bool) {
	v, ok := layer.Value(row, col)
	if !ok {
		return 0, false
	}
	return archive.AnyToFloat(v)
}

func columnSum(layer *archive.Table, col string) float64 {
	var sum float64
	for i := range layer.Rows {
		if f, ok := columnFloat(layer, i, col); ok {
			sum += f
		}
	}
	return sum
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
