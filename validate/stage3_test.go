package validate

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/urbanarchive/submiteval/archive"
	"github.com/urbanarchive/submiteval/dispatch"
	"github.com/urbanarchive/submiteval/rules"
)

// minimalPDF is just enough of the format for mimetype's magic-number
// sniffing to recognize it as application/pdf.
const minimalPDF = "%PDF-1.4\n1 0 obj<<>>endobj\ntrailer<<>>\n%%EOF"

func buildZipWithEntries(t *testing.T, entries map[string][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "submission.zip")
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()
	for name, data := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	return path
}

func TestR14PdfSniffMatches(t *testing.T) {
	path := buildZipWithEntries(t, map[string][]byte{
		"Predare/PDF/memoriu.pdf": []byte(minimalPDF),
	})
	ctx := &dispatch.RunContext{
		ArchivePath: path,
		View:        &archive.View{PDFsList: []string{"memoriu.pdf"}},
	}
	outcome, _, err := R14(ctx, &rules.Rule{Value: "pdf"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Pass {
		t.Errorf("expected Pass, got %v", outcome)
	}
}

func TestR14PdfSniffMismatch(t *testing.T) {
	path := buildZipWithEntries(t, map[string][]byte{
		"Predare/PDF/memoriu.pdf": []byte("not actually a pdf"),
	})
	ctx := &dispatch.RunContext{
		ArchivePath: path,
		View:        &archive.View{PDFsList: []string{"memoriu.pdf"}},
	}
	outcome, verify, err := R14(ctx, &rules.Rule{Value: "pdf"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail, got %v", outcome)
	}
	if offenders, ok := verify.([]string); !ok || len(offenders) != 1 || offenders[0] != "memoriu.pdf" {
		t.Errorf("expected [memoriu.pdf] flagged, got %v", verify)
	}
}

func TestR15GeoPackageLayersPresent(t *testing.T) {
	ctx := &dispatch.RunContext{View: &archive.View{
		Layers:     map[string]*archive.Table{"zone": {}},
		GpkgDriver: "GPKG",
	}}
	outcome, _, err := R15(ctx, &rules.Rule{Value: "gpkg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Pass {
		t.Errorf("expected Pass, got %v", outcome)
	}
}

func TestR15NoLayers(t *testing.T) {
	ctx := &dispatch.RunContext{View: &archive.View{Layers: map[string]*archive.Table{}}}
	outcome, _, err := R15(ctx, &rules.Rule{Value: "GPKG"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail, got %v", outcome)
	}
}

func TestR15DriverMismatch(t *testing.T) {
	ctx := &dispatch.RunContext{View: &archive.View{
		Layers:     map[string]*archive.Table{"zone": {}},
		GpkgDriver: "GPKG",
	}}
	outcome, verify, err := R15(ctx, &rules.Rule{Value: "SHP"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail, got %v", outcome)
	}
	if verify != "GPKG" {
		t.Errorf("expected verify to report observed driver, got %v", verify)
	}
}
