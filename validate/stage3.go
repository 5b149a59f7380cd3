package validate

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/urbanarchive/submiteval/archive"
	"github.com/urbanarchive/submiteval/dispatch"
	"github.com/urbanarchive/submiteval/rules"
)

func init() {
	register(map[int]dispatch.Validator{
		14: R14,
		15: R15,
	})
}

// R14: every PDF entry is sniffed by magic-number and must identify as the
// extension in valoare_regula.
func R14(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	wantExt := "." + strings.TrimPrefix(strings.TrimSpace(r.Value), ".")

	var offenders []string
	for _, name := range view.PDFsList {
		data, err := archive.ReadEntry(ctx.ArchivePath, name)
		if err != nil {
			return dispatch.Error, nil, fmt.Errorf("read %s: %w", name, err)
		}
		mtype := mimetype.Detect(data)
		if !strings.EqualFold(mtype.Extension(), wantExt) {
			offenders = append(offenders, name)
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, offenders, nil
	}
	return dispatch.Pass, nil, nil
}

// R15: the GeoPackage opens via the geospatial reader and self-identifies
// as the driver in valoare_regula, matching R14's magic-number pattern one
// stage up - here the "magic number" is the reader's own driver string.
func R15(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if view.GpkgDriver == "" || len(view.Layers) == 0 {
		return dispatch.Fail, view.GpkgDriver, nil
	}
	if !strings.EqualFold(view.GpkgDriver, strings.TrimSpace(r.Value)) {
		return dispatch.Fail, view.GpkgDriver, nil
	}
	return dispatch.Pass, nil, nil
}
