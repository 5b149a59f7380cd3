package validate

import (
	"fmt"
	"strings"

	"github.com/urbanarchive/submiteval/dispatch"
	"github.com/urbanarchive/submiteval/rules"
)

func init() {
	register(map[int]dispatch.Validator{
		3:  R3,
		4:  R4,
		5:  R5,
		6:  R6,
		7:  R7,
		8:  R8,
		9:  R9,
		10: R10,
		11: R11,
		12: R12,
		13: R13,
	})
}

// R3: |main_dirs| equals the integer valoare_regula.
func R3(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	want, err := rules.Int(r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if len(view.MainDirs) != want {
		return dispatch.Fail, view.MainDirs, nil
	}
	return dispatch.Pass, nil, nil
}

// R4: the unique main dir matches the regex in valoare_regula.
func R4(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	mainDir, err := requireUniqueMainDir(view)
	if err != nil {
		return dispatch.Error, nil, err
	}
	re, err := compileRegex(r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if !re.MatchString(mainDir) {
		return dispatch.Fail, mainDir, nil
	}
	return dispatch.Pass, nil, nil
}

// R5: |folder_list| equals the integer valoare_regula.
func R5(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	want, err := rules.Int(r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if len(view.FolderList) != want {
		return dispatch.Fail, view.FolderList, nil
	}
	return dispatch.Pass, nil, nil
}

// R6: each configured sub-folder name appears in folder_list.
func R6(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	expected := rules.CommaList(r.Value)
	present := map[string]bool{}
	for _, f := range view.FolderList {
		present[f] = true
	}

	var missing []string
	for _, f := range expected {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return dispatch.Fail, missing, nil
	}
	return dispatch.Pass, nil, nil
}

// R7: for each folder listed, main_dir/folder/ exists as a path prefix in
// file_list.
func R7(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	mainDir, err := requireUniqueMainDir(view)
	if err != nil {
		return dispatch.Error, nil, err
	}

	var missing []string
	for _, folder := range rules.CommaList(r.Value) {
		prefix := fmt.Sprintf("%s/%s/", mainDir, folder)
		found := false
		for _, f := range view.FileList {
			if strings.HasPrefix(f, prefix) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, folder)
		}
	}
	if len(missing) > 0 {
		return dispatch.Fail, missing, nil
	}
	return dispatch.Pass, nil, nil
}

// R8: number of .gpkg entries equals valoare_regula.
func R8(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	want, err := rules.Int(r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if len(view.GpkgList) != want {
		return dispatch.Fail, view.GpkgList, nil
	}
	return dispatch.Pass, nil, nil
}

// R9: the unique GeoPackage name matches the regex.
func R9(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if len(view.GpkgList) != 1 {
		return dispatch.Error, nil, fmt.Errorf("expected exactly one geopackage, found %d", len(view.GpkgList))
	}
	re, err := compileRegex(r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if !re.MatchString(view.GpkgList[0]) {
		return dispatch.Fail, view.GpkgList[0], nil
	}
	return dispatch.Pass, nil, nil
}

// R10: non-archive PDF count (|pdfs| - |avize|) <= valoare_regula.
func R10(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	max, err := rules.Int(r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}
	nonArchive := len(view.PDFsList) - len(view.AvizeList)
	if nonArchive > max {
		return dispatch.Fail, nonArchive, nil
	}
	return dispatch.Pass, nil, nil
}

// R11: each configured PDF filename is present in pdfs_list.
func R11(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	present := map[string]bool{}
	for _, f := range view.PDFsList {
		present[f] = true
	}

	var missing []string
	for _, f := range rules.CommaList(r.Value) {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return dispatch.Fail, missing, nil
	}
	return dispatch.Pass, nil, nil
}

// R12: |avize| <= valoare_regula.
func R12(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	max, err := rules.Int(r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}
	if len(view.AvizeList) > max {
		return dispatch.Fail, len(view.AvizeList), nil
	}
	return dispatch.Pass, nil, nil
}

// R13: every archive-PDF name matches the regex.
func R13(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	view, err := requireView(ctx)
	if err != nil {
		return dispatch.Error, nil, err
	}
	re, err := compileRegex(r.Value)
	if err != nil {
		return dispatch.Error, nil, err
	}

	var offenders []string
	for _, name := range view.AvizeList {
		if !re.MatchString(name) {
			offenders = append(offenders, name)
		}
	}
	if len(offenders) > 0 {
		return dispatch.Fail, offenders, nil
	}
	return dispatch.Pass, nil, nil
}
