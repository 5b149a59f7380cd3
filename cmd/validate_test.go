package cmd

import (
	"archive/zip"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func buildValidateTestArchive(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	gpkgPath := filepath.Join(dir, "submission.gpkg")

	db, err := sql.Open("sqlite", gpkgPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE gpkg_contents (table_name TEXT, data_type TEXT, srs_id INTEGER)`,
		`CREATE TABLE gpkg_geometry_columns (table_name TEXT, column_name TEXT)`,
		`CREATE TABLE gpkg_spatial_ref_sys (srs_id INTEGER, organization TEXT, organization_coordsys_id INTEGER)`,
		`CREATE TABLE zone (id INTEGER, denumire TEXT, geom BLOB)`,
		`INSERT INTO gpkg_contents VALUES ('zone', 'features', 3844)`,
		`INSERT INTO gpkg_geometry_columns VALUES ('zone', 'geom')`,
		`INSERT INTO gpkg_spatial_ref_sys VALUES (3844, 'EPSG', 3844)`,
		`INSERT INTO zone (id, denumire, geom) VALUES (1, 'Zona A', NULL)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}

	archivePath := filepath.Join(dir, "submission.zip")
	out, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	data, err := os.ReadFile(gpkgPath)
	if err != nil {
		t.Fatalf("read geopackage: %v", err)
	}
	w, err := zw.Create("Predare/GIS/submission.gpkg")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("write geopackage entry: %v", err)
	}
	return archivePath
}

func emptyDictsServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	}))
}

func resetValidateFlags() {
	validateFlags.archivePath = ""
	validateFlags.category = 0
	validateFlags.rulesVersion = "latest"
	validateFlags.serviceURL = ""
	validateFlags.rulesFile = ""
	validateFlags.reportPath = "report.csv"
	validateFlags.cacheDir = ""
	validateFlags.cacheTTL = 0
	validateFlags.timeout = 0
}

func TestRunValidateRequiresServiceURL(t *testing.T) {
	resetValidateFlags()
	defer resetValidateFlags()
	validateFlags.archivePath = "unused.zip"
	validateFlags.category = 2
	validateFlags.rulesFile = filepath.Join(t.TempDir(), "rules.yaml")

	err := runValidate(validateCmd, nil)
	if err == nil {
		t.Fatal("expected an error when --service-url is not set")
	}
}

func TestRunValidateEndToEndWithLocalRules(t *testing.T) {
	resetValidateFlags()
	defer resetValidateFlags()

	server := emptyDictsServer(t)
	defer server.Close()

	rulesFile := filepath.Join(t.TempDir(), "rules.yaml")
	rulesYAML := `
- numar_regula: 1
  tip_regula_id: 17
  categorie_regula_id: 2
  tip_validare_id: 1
  tip_alerta_id: 1
  valoare_regula: "zone"
  descriere: "zone layer must be present"
  pass_alerta: "ok"
  fail_alerta: "missing zone layer"
  error_alerta: "could not evaluate"
`
	if err := os.WriteFile(rulesFile, []byte(rulesYAML), 0o644); err != nil {
		t.Fatalf("write rules file: %v", err)
	}

	validateFlags.archivePath = buildValidateTestArchive(t)
	validateFlags.category = 2
	validateFlags.serviceURL = server.URL
	validateFlags.rulesFile = rulesFile
	validateFlags.reportPath = filepath.Join(t.TempDir(), "report.csv")

	if err := runValidate(validateCmd, nil); err != nil {
		t.Fatalf("runValidate: %v", err)
	}

	if _, err := os.Stat(validateFlags.reportPath); err != nil {
		t.Errorf("expected report file to exist: %v", err)
	}
}
