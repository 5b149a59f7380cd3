package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/urbanarchive/submiteval/archive"
	"github.com/urbanarchive/submiteval/dispatch"
	"github.com/urbanarchive/submiteval/reference"
	"github.com/urbanarchive/submiteval/rules"
)

func init() {
	register(map[int]dispatch.Validator{
		16: R16,
		17: R17,
		18: R18,
		19: R19,
		20: R20,
		21: R21,
		22: R22,
		23: R23,
		24: R24,
	})
}

// specialR21Columns are exempted from per-row null reporting: they fail
// only if entirely empty.
var specialR21Columns = map[string]bool{"POT": true, "CUT": true, "CLAD": true}

// R16: number of layers >= integer valoare_regula.
func R16(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	min, err := rules.Int(r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if len(view.Layers) < min {
		return dispatch.Fail, len(view.Layers), nil
	}
	return dispatch.Pass, nil, nil
}

// R17: a layer named valoare_regula exists.
func R17(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if _, ok := view.Layers[r.Value]; !ok {
		return dispatch.Fail, r.Value, nil
	}
	return dispatch.Pass, nil, nil
}

// R18: for layer formula_regula, non-geometry column count >= integer
// valoare_regula.
func R18(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	min, err := rules.Int(r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}
	count := len(layer.Columns)
	if layer.GeometryColumn >= 0 {
		count--
	}
	if count < min {
		return dispatch.Fail, count, nil
	}
	return dispatch.Pass, nil, nil
}

// R19: for layer formula_regula, every column name in comma-split
// valoare_regula is present.
func R19(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}

	var missing []string
	for _, col := range rules.CommaList(r.Value) {
		if layer.ColumnIndex(col) < 0 {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return dispatch.Fail, missing, nil
	}
	return dispatch.Pass, nil, nil
}

// R20: layer formula_regula has at least one row.
func R20(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if len(layer.Rows) == 0 {
		return dispatch.Fail, nil, nil
	}
	return dispatch.Pass, nil, nil
}

// R21: report 1-based row indices where a listed column's value is
// null/empty. The POT/CUT/CLAD columns fail only if entirely empty.
func R21(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}

	var offenders []int
	for _, col := range rules.CommaList(r.Value) {
		idx := layer.ColumnIndex(col)
		if idx < 0 {
			return dispatch.Error, nil, fmt.Errorf("column %q not found in layer %q", col, r.Formula)
		}

		var nullRows []int
		for i := range layer.Rows {
			v, _ := layer.Value(i, col)
			if archive.IsEmpty(v) {
				nullRows = append(nullRows, i)
			}
		}

		if specialR21Columns[col] {
			if len(nullRows) == len(layer.Rows) && len(layer.Rows) > 0 {
				offenders = append(offenders, nullRows...)
			}
			continue
		}
		offenders = append(offenders, nullRows...)
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(dedupeInts(offenders)), nil
	}
	return dispatch.Pass, nil, nil
}

// R22: each column-dtype pair matches; object columns targeting datetime
// attempt coercion before failing.
func R22(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}

	pairs, err := rules.ColumnDtypePairs(r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}

	var offenders []int
	for _, pair := range pairs {
		idx := layer.ColumnIndex(pair.Column)
		if idx < 0 {
			return dispatch.Error, nil, fmt.Errorf("column %q not found in layer %q", pair.Column, r.Formula)
		}
		for i := range layer.Rows {
			v, _ := layer.Value(i, pair.Column)
			if !dtypeMatches(v, pair.Dtype) {
				offenders = append(offenders, i)
			}
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(dedupeInts(offenders)), nil
	}
	return dispatch.Pass, nil, nil
}

func dtypeMatches(v any, dtype string) bool {
	switch strings.ToLower(strings.TrimSpace(dtype)) {
	case "int64", "int", "integer":
		_, ok := v.(int64)
		return ok
	case "float64", "float", "double":
		switch v.(type) {
		case float64, int64:
			return true
		}
		return false
	case "bool", "boolean":
		switch x := v.(type) {
		case bool:
			return true
		case int64:
			return x == 0 || x == 1
		}
		return false
	case "object", "string", "str":
		_, ok := v.(string)
		return ok
	case "datetime64[ms]", "datetime", "date":
		if _, ok := v.(time.Time); ok {
			return true
		}
		if s, ok := v.(string); ok {
			_, ok := parseDate(s)
			return ok
		}
		return false
	default:
		return false
	}
}

// dateLayouts are tried in order by parseDate (used by the date dtype check
// and rowDate): a timestamp with or without a zone offset, an ISO calendar
// date, and a dd.mm.yyyy date. R23 checks its Date and Date_2 shapes with
// regexes instead; the NNN/dd.mm.yyyy Date_2 form matches none of these.
var dateLayouts = []string{
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var (
	dateRegex    = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])( 00:00:00(\+00:00)?)?$`)
	date2Regex   = regexp.MustCompile(`^\d{1,6}/(0[1-9]|[12]\d|3[01])\.(0[1-9]|1[0-2])\.\d{4}$`)
	zecimaleRe   = regexp.MustCompile(`^\d*\.\d{1,2}$`)
	hclRegex     = regexp.MustCompile(`^\d{1,6}$`)
)

// R23: value-domain checks for each comma-split column-kind pair.
func R23(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}

	pairs, err := rules.ColumnDtypePairs(r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}

	var offenders []int
	for _, pair := range pairs {
		idx := layer.ColumnIndex(pair.Column)
		if idx < 0 {
			return dispatch.Error, nil, fmt.Errorf("column %q not found in layer %q", pair.Column, r.Formula)
		}
		check, err := kindChecker(ctx, pair.Dtype)
		if err != nil {
			return dispatch.Error, nil, err
		}
		for i := range layer.Rows {
			s, _ := layer.StringValue(i, pair.Column)
			if !check(s) {
				offenders = append(offenders, i)
			}
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(dedupeInts(offenders)), nil
	}
	return dispatch.Pass, nil, nil
}

func kindChecker(ctx *dispatch.RunContext, kind string) (func(string) bool, error) {
	switch kind {
	case "check_cod":
		dict, err := getDict(ctx, reference.ZFZRS)
		if err != nil {
			return nil, err
		}
		return func(s string) bool { return dictContains(dict, s) }, nil
	case "check_h1":
		dict, err := getDict(ctx, reference.H1)
		if err != nil {
			return nil, err
		}
		return func(s string) bool { return dictContains(dict, s) }, nil
	case "check_h2":
		dict, err := getDict(ctx, reference.H2)
		if err != nil {
			return nil, err
		}
		return func(s string) bool { return dictContains(dict, s) }, nil
	case "check_h3":
		dict, err := getDict(ctx, reference.H3)
		if err != nil {
			return nil, err
		}
		return func(s string) bool { return dictContains(dict, s) }, nil
	case "Date":
		return dateRegex.MatchString, nil
	case "Date_2":
		return date2Regex.MatchString, nil
	case "Zecimale":
		return zecimaleRe.MatchString, nil
	case "HCL":
		return hclRegex.MatchString, nil
	default:
		allowed := map[string]bool{}
		for _, v := range strings.Split(kind, "_") {
			allowed[v] = true
		}
		return func(s string) bool { return allowed[s] }, nil
	}
}

// R24: temporal coherence checks. The column set determines which of the
// three cases applies; an unrecognized combination is an explicit Error,
// not a silently-passing default.
func R24(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	layer, err := requireLayer(ctx, r.Formula)
	if err != nil {
		return dispatch.Error, nil, err
	}

	cols := map[string]bool{}
	for _, c := range rules.CommaList(r.Value) {
		cols[c] = true
	}

	now := time.Now()
	var offenders []int

	switch {
	case cols["Data_aprob"] && cols["Data_exp"]:
		for i := range layer.Rows {
			aprob, aOK := rowDate(layer, i, "Data_aprob")
			exp, eOK := rowDate(layer, i, "Data_exp")
			if !aOK || !eOK || now.Before(aprob) || now.After(exp) {
				offenders = append(offenders, i)
			}
		}
	case cols["Data_exp"]:
		for i := range layer.Rows {
			exp, ok := rowDate(layer, i, "Data_exp")
			if !ok || now.Before(exp) {
				offenders = append(offenders, i)
			}
		}
	case cols["Revizie"]:
		for i := range layer.Rows {
			rev, ok := rowDate(layer, i, "Revizie")
			if !ok || now.Before(rev) {
				offenders = append(offenders, i)
			}
		}
	default:
		return dispatch.Error, nil, fmt.Errorf("unsupported column combination for temporal coherence check")
	}

	if len(offenders) > 0 {
		return dispatch.Fail, indicesToAny(dedupeInts(offenders)), nil
	}
	return dispatch.Pass, nil, nil
}

func rowDate(layer *archive.Table, row int, col string) (time.Time, bool) {
	s, ok := layer.StringValue(row, col)
	if !ok {
		return time.Time{}, false
	}
	return parseDate(s)
}

func dedupeInts(xs []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}
