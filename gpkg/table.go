// Package gpkg reads OGC GeoPackage containers (SQLite databases) into
// row-indexed tables, decoding GeoPackageBinary geometry blobs along the
// way.
package gpkg

// Table mirrors archive.Table's shape so the two are convertible at the
// package boundary without gpkg depending on archive (which itself depends
// on gpkg to extract and read the container).
type Table struct {
	Columns        []string
	Rows           [][]any
	GeometryColumn int
	CRS            string

	// GeometryHasZ is row-aligned with Rows: true if that row's geometry
	// blob carried a Z ordinate. Populated only when GeometryColumn >= 0.
	GeometryHasZ []bool
}
