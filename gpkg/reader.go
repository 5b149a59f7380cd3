package gpkg

import (
	"database/sql"
	"encoding/binary"
	"fmt"

	"github.com/paulmach/orb/encoding/wkb"
	_ "modernc.org/sqlite"
)

// Driver is the format identifier this reader self-reports, mirroring the
// short driver name a GDAL-style geospatial reader would return for a
// GeoPackage source (GDAL's own OGR GeoPackage driver is named "GPKG").
const Driver = "GPKG"

// Read opens the GeoPackage (SQLite) file at path and returns every feature
// layer as a Table, keyed by table name.
func Read(path string) (map[string]*Table, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open geopackage: %w", err)
	}
	defer db.Close()

	layers, err := featureLayers(db)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*Table, len(layers))
	for _, l := range layers {
		tbl, err := readLayer(db, l)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", l.name, err)
		}
		result[l.name] = tbl
	}
	return result, nil
}

type layerMeta struct {
	name       string
	geomCol    string
	srsID      int64
	epsg       string
}

// featureLayers enumerates gpkg_contents rows of data_type='features' and
// joins gpkg_geometry_columns / gpkg_spatial_ref_sys to resolve the geometry
// column name and its EPSG code.
func featureLayers(db *sql.DB) ([]layerMeta, error) {
	rows, err := db.Query(`SELECT table_name, srs_id FROM gpkg_contents WHERE data_type = 'features'`)
	if err != nil {
		return nil, fmt.Errorf("read gpkg_contents: %w", err)
	}
	defer rows.Close()

	var out []layerMeta
	for rows.Next() {
		var m layerMeta
		if err := rows.Scan(&m.name, &m.srsID); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		out[i].geomCol = geometryColumn(db, out[i].name)
		out[i].epsg = resolveEPSG(db, out[i].srsID)
	}
	return out, nil
}

func geometryColumn(db *sql.DB, table string) string {
	var col string
	row := db.QueryRow(`SELECT column_name FROM gpkg_geometry_columns WHERE table_name = ?`, table)
	if err := row.Scan(&col); err != nil {
		return ""
	}
	return col
}

func resolveEPSG(db *sql.DB, srsID int64) string {
	var org string
	var orgCoordsysID int64
	row := db.QueryRow(`SELECT organization, organization_coordsys_id FROM gpkg_spatial_ref_sys WHERE srs_id = ?`, srsID)
	if err := row.Scan(&org, &orgCoordsysID); err != nil {
		return fmt.Sprintf("%d", srsID)
	}
	return fmt.Sprintf("%s:%d", org, orgCoordsysID)
}

// readLayer loads every row of a feature table, decoding the geometry
// column (if any) from GeoPackageBinary into an orb.Geometry.
func readLayer(db *sql.DB, l layerMeta) (*Table, error) {
	rows, err := db.Query(fmt.Sprintf(`SELECT * FROM "%s"`, l.name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	geomIdx := -1
	for i, c := range cols {
		if c == l.geomCol {
			geomIdx = i
			break
		}
	}

	tbl := &Table{Columns: cols, GeometryColumn: geomIdx, CRS: l.epsg}

	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		hasZ := false
		if geomIdx >= 0 {
			if blob, ok := raw[geomIdx].([]byte); ok {
				hasZ = wkbBodyHasZ(blob)
				geom, err := decodeGeometry(blob)
				if err == nil {
					raw[geomIdx] = geom
				} else {
					raw[geomIdx] = nil
				}
			}
		}
		if geomIdx >= 0 {
			tbl.GeometryHasZ = append(tbl.GeometryHasZ, hasZ)
		}
		tbl.Rows = append(tbl.Rows, raw)
	}
	return tbl, rows.Err()
}

// decodeGeometry strips the GeoPackageBinary header (magic "GP", version,
// flags, SRS id, optional envelope) and decodes the trailing standard WKB
// body.
func decodeGeometry(blob []byte) (any, error) {
	if len(blob) < 8 || blob[0] != 'G' || blob[1] != 'P' {
		return nil, fmt.Errorf("not a geopackage geometry blob")
	}
	flags := blob[3]
	envelopeIndicator := (flags >> 1) & 0x07
	emptyGeometry := (flags>>4)&0x01 != 0

	envelopeBytes := 0
	switch envelopeIndicator {
	case 0:
		envelopeBytes = 0
	case 1:
		envelopeBytes = 32
	case 2, 3:
		envelopeBytes = 48
	case 4:
		envelopeBytes = 64
	default:
		return nil, fmt.Errorf("invalid envelope indicator %d", envelopeIndicator)
	}

	headerLen := 8 + envelopeBytes
	if emptyGeometry || len(blob) <= headerLen {
		return nil, fmt.Errorf("empty geometry")
	}
	wkbBody := blob[headerLen:]
	geom, err := wkb.Unmarshal(wkbBody)
	if err != nil {
		return nil, err
	}
	return geom, nil
}

// wkbBodyHasZ inspects a GeoPackageBinary blob's WKB type code to detect
// the ISO extension for Z/ZM geometries (type code offset by 1000/3000),
// without needing to fully decode the coordinates.
func wkbBodyHasZ(blob []byte) bool {
	if len(blob) < 8 {
		return false
	}
	flags := blob[3]
	envelopeIndicator := (flags >> 1) & 0x07
	envelopeBytes := 0
	switch envelopeIndicator {
	case 1:
		envelopeBytes = 32
	case 2, 3:
		envelopeBytes = 48
	case 4:
		envelopeBytes = 64
	}
	headerLen := 8 + envelopeBytes
	if len(blob) < headerLen+5 {
		return false
	}
	body := blob[headerLen:]
	littleEndian := body[0] == 1

	var typeCode uint32
	if littleEndian {
		typeCode = binary.LittleEndian.Uint32(body[1:5])
	} else {
		typeCode = binary.BigEndian.Uint32(body[1:5])
	}
	dim := (typeCode / 1000) % 10
	return dim == 1 || dim == 3
}
