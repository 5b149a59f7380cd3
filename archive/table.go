// Package archive introspects submission containers: compressed bundles
// holding a GeoPackage plus supporting PDF documents.
package archive

import "strings"

// Table is a row-indexed view over a GeoPackage layer or a reference
// dictionary. Rows are stored in source order; Columns gives the name for
// each positional slot in a row.
type Table struct {
	Columns        []string
	Rows           [][]any
	GeometryColumn int // index into Columns, or -1 if the table has no geometry
	CRS            string

	// GeometryHasZ is row-aligned with Rows: true if that row's geometry
	// carried a Z ordinate in its source encoding.
	GeometryHasZ []bool
}

// ColumnIndex returns the position of name in t.Columns, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns row[col] by column name. ok is false if the column or row
// doesn't exist.
func (t *Table) Value(row int, col string) (any, bool) {
	if row < 0 || row >= len(t.Rows) {
		return nil, false
	}
	idx := t.ColumnIndex(col)
	if idx < 0 || idx >= len(t.Rows[row]) {
		return nil, false
	}
	return t.Rows[row][idx], true
}

// StringValue returns the column value coerced to a trimmed string, and
// whether the cell held a non-nil value.
func (t *Table) StringValue(row int, col string) (string, bool) {
	v, ok := t.Value(row, col)
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), true
	default:
		return strings.TrimSpace(AnyToString(v)), true
	}
}

// Geometry returns the geometry cell for row, if the table carries one.
func (t *Table) Geometry(row int) (any, bool) {
	if t.GeometryColumn < 0 {
		return nil, false
	}
	if row < 0 || row >= len(t.Rows) {
		return nil, false
	}
	if t.GeometryColumn >= len(t.Rows[row]) {
		return nil, false
	}
	return t.Rows[row][t.GeometryColumn], true
}
