package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// Int parses a valoare_regula/formula_regula field as a plain integer.
func Int(field string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return 0, fmt.Errorf("expected integer, got %q", field)
	}
	return n, nil
}

// CommaList splits a comma-separated field into trimmed, non-empty tokens.
func CommaList(field string) []string {
	parts := strings.Split(field, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ColumnDtype is one "column-dtype" token from a comma-split field, as used
// by R22 and R23.
type ColumnDtype struct {
	Column string
	Dtype  string
}

// ColumnDtypePairs parses a comma-split list of "column-dtype" tokens.
// Dtype itself may contain hyphens (e.g. enum literals), so the split on
// each token happens at the first hyphen only.
func ColumnDtypePairs(field string) ([]ColumnDtype, error) {
	tokens := CommaList(field)
	out := make([]ColumnDtype, 0, len(tokens))
	for _, tok := range tokens {
		col, dtype, ok := strings.Cut(tok, "-")
		if !ok {
			return nil, fmt.Errorf("expected column-dtype pair, got %q", tok)
		}
		out = append(out, ColumnDtype{Column: strings.TrimSpace(col), Dtype: strings.TrimSpace(dtype)})
	}
	return out, nil
}

// LayerColumn is a "layer:column" reference, used by R26/R38.
type LayerColumn struct {
	Layer  string
	Column string
}

// ParseLayerColumn parses "layer:column".
func ParseLayerColumn(field string) (LayerColumn, error) {
	layer, col, ok := strings.Cut(field, ":")
	if !ok {
		return LayerColumn{}, fmt.Errorf("expected layer:column, got %q", field)
	}
	return LayerColumn{Layer: strings.TrimSpace(layer), Column: strings.TrimSpace(col)}, nil
}

// LayerColumnHyphen is a "layer-column" reference, used by R43/R44 where
// the separator is a hyphen rather than a colon.
type LayerColumnHyphen struct {
	Layer  string
	Column string
}

// ParseLayerColumnHyphen parses "layer-column".
func ParseLayerColumnHyphen(field string) (LayerColumnHyphen, error) {
	layer, col, ok := strings.Cut(field, "-")
	if !ok {
		return LayerColumnHyphen{}, fmt.Errorf("expected layer-column, got %q", field)
	}
	return LayerColumnHyphen{Layer: strings.TrimSpace(layer), Column: strings.TrimSpace(col)}, nil
}

// LayerUnit is the "layer-unit" shape used by R42.
type LayerUnit struct {
	Layer string
	Unit  string
}

// ParseLayerUnit parses "layer-unit" where unit is expected to be the last
// hyphen-delimited token (layer names themselves may contain hyphens).
func ParseLayerUnit(field string) (LayerUnit, error) {
	idx := strings.LastIndex(field, "-")
	if idx < 0 {
		return LayerUnit{}, fmt.Errorf("expected layer-unit, got %q", field)
	}
	return LayerUnit{Layer: strings.TrimSpace(field[:idx]), Unit: strings.TrimSpace(field[idx+1:])}, nil
}

// CrossTableTerm is the "layer-c,t,z" shape used by R46: a layer name
// followed by three comma-separated column references.
type CrossTableTerm struct {
	Layer string
	Cols  []string
}

// ParseCrossTableTerm parses "layer-c1,t1,z1" style fields.
func ParseCrossTableTerm(field string) (CrossTableTerm, error) {
	idx := strings.Index(field, "-")
	if idx < 0 {
		return CrossTableTerm{}, fmt.Errorf("expected layer-col,col,col, got %q", field)
	}
	layer := strings.TrimSpace(field[:idx])
	cols := CommaList(field[idx+1:])
	if len(cols) != 3 {
		return CrossTableTerm{}, fmt.Errorf("expected exactly 3 columns in %q, got %d", field, len(cols))
	}
	return CrossTableTerm{Layer: layer, Cols: cols}, nil
}

// NormalizeRomanian maps the ASCII-adjacent Romanian cedilla forms to their
// proper comma-below forms: ş (U+015F) to ș (U+0219), ţ (U+0163) to ț
// (U+021B).
func NormalizeRomanian(s string) string {
	r := strings.NewReplacer(
		"ş", "ș",
		"ţ", "ț",
	)
	return r.Replace(s)
}
