package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urbanarchive/submiteval/gpkg"
)

// View is everything the dispatcher and validators need from a submission
// archive: the raw entry list, the derived file/folder partitions, and the
// parsed GeoPackage layers.
type View struct {
	FileList   []string
	MainDirs   []string
	FolderList []string
	PDFsList   []string
	AvizeList  []string
	GpkgList   []string
	Layers     map[string]*Table
	GpkgDriver string
}

// Introspect opens path read-only, partitions its entries per spec, extracts
// the first GeoPackage to a scoped temp directory, and reads its layers.
// The temp directory is always removed before Introspect returns, on every
// exit path.
func Introspect(path string) (*View, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	view := &View{Layers: map[string]*Table{}}
	seenMainDir := map[string]bool{}
	seenFolder := map[string]bool{}

	for _, f := range r.File {
		name := f.Name
		view.FileList = append(view.FileList, name)

		segments := strings.Split(strings.Trim(name, "/"), "/")
		if len(segments) > 0 && segments[0] != "" && !seenMainDir[segments[0]] {
			seenMainDir[segments[0]] = true
			view.MainDirs = append(view.MainDirs, segments[0])
		}
		if len(segments) > 1 && segments[1] != "" && !seenFolder[segments[1]] {
			seenFolder[segments[1]] = true
			view.FolderList = append(view.FolderList, segments[1])
		}

		base := filepath.Base(name)
		lower := strings.ToLower(base)
		switch {
		case strings.HasSuffix(lower, ".pdf"):
			view.PDFsList = append(view.PDFsList, base)
			if strings.HasPrefix(base, "4_") {
				view.AvizeList = append(view.AvizeList, base)
			}
		case strings.HasSuffix(lower, ".gpkg"):
			view.GpkgList = append(view.GpkgList, base)
		}
	}

	if len(view.GpkgList) == 0 {
		return view, fmt.Errorf("archive contains no GeoPackage")
	}

	tmpDir, err := os.MkdirTemp("", "submiteval-gpkg-*")
	if err != nil {
		return view, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	var extractedPath string
	for _, f := range r.File {
		if strings.ToLower(filepath.Base(f.Name)) == strings.ToLower(view.GpkgList[0]) {
			extractedPath, err = extractEntry(f, tmpDir)
			if err != nil {
				return view, fmt.Errorf("extract geopackage: %w", err)
			}
			break
		}
	}
	if extractedPath == "" {
		return view, fmt.Errorf("geopackage entry %q not found in archive", view.GpkgList[0])
	}

	layers, err := gpkg.Read(extractedPath)
	if err != nil {
		return view, fmt.Errorf("read geopackage: %w", err)
	}
	view.GpkgDriver = gpkg.Driver
	for name, tbl := range layers {
		view.Layers[name] = &Table{
			Columns:        tbl.Columns,
			Rows:           tbl.Rows,
			GeometryColumn: tbl.GeometryColumn,
			CRS:            tbl.CRS,
			GeometryHasZ:   tbl.GeometryHasZ,
		}
	}

	return view, nil
}

// ReadEntry opens archivePath and returns the bytes of the first entry
// whose base name matches entryName (case-insensitive). Used by validators
// that need to sniff a PDF's content rather than just its name.
func ReadEntry(archivePath, entryName string) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if strings.EqualFold(filepath.Base(f.Name), entryName) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("entry %q not found in archive", entryName)
}

// extractEntry writes a single zip entry to destDir, guarding against
// zip-slip the same way the upstream ruleset downloader does for rule
// bundles.
func extractEntry(f *zip.File, destDir string) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	path := filepath.Join(destDir, filepath.Base(f.Name))

	cleanDest := filepath.Clean(destDir)
	cleanPath := filepath.Clean(path)
	relPath, err := filepath.Rel(cleanDest, cleanPath)
	if err != nil || (len(relPath) > 0 && (relPath[0:1] == "." || filepath.IsAbs(relPath))) {
		return "", fmt.Errorf("illegal file path: %s", f.Name)
	}

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return "", err
	}
	return path, nil
}
