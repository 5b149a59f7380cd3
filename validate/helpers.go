// Package validate implements the ~46 rule-kind validators the dispatcher
// routes to. Each file groups validators by the stage they belong to in
// the rule table's tip_validare_id bucketing.
package validate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/urbanarchive/submiteval/archive"
	"github.com/urbanarchive/submiteval/dispatch"
	"github.com/urbanarchive/submiteval/reference"
)

// requireView returns ctx.View or an error if introspection never
// produced one - every stage-2-and-later rule depends on it.
func requireView(ctx *dispatch.RunContext) (*archive.View, error) {
	if ctx.View == nil {
		return nil, fmt.Errorf("archive view unavailable")
	}
	return ctx.View, nil
}

// requireLayer looks up a named layer in the archive view.
func requireLayer(ctx *dispatch.RunContext, name string) (*archive.Table, error) {
	view, err := requireView(ctx)
	if err != nil {
		return nil, err
	}
	layer, ok := view.Layers[name]
	if !ok {
		return nil, fmt.Errorf("layer %q not found", name)
	}
	return layer, nil
}

// requireUniqueMainDir returns the archive's single top-level directory,
// failing if there isn't exactly one.
func requireUniqueMainDir(view *archive.View) (string, error) {
	if len(view.MainDirs) != 1 {
		return "", fmt.Errorf("expected exactly one main directory, found %d", len(view.MainDirs))
	}
	return view.MainDirs[0], nil
}

// compileRegex wraps regexp.Compile with a consistent error message so
// validators don't each format their own.
func compileRegex(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	return re, nil
}

// dictLookup finds the row in a reference dictionary whose "definitie"
// column equals code, and returns its "definite_lung" long form.
func dictLookup(dict *archive.Table, code string) (string, bool) {
	if dict == nil {
		return "", false
	}
	idx := dict.ColumnIndex("definitie")
	if idx < 0 {
		return "", false
	}
	for i := range dict.Rows {
		v, ok := dict.StringValue(i, "definitie")
		if ok && v == code {
			long, _ := dict.StringValue(i, "definite_lung")
			return long, true
		}
	}
	return "", false
}

// dictContains reports whether code appears in dict's "definitie" column.
func dictContains(dict *archive.Table, code string) bool {
	_, ok := dictLookup(dict, code)
	return ok
}

// digitPrefix strips every non-digit rune from s, used to compare HILUCS
// hierarchy codes where the parent is a digit-prefix of the child.
func digitPrefix(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// getDict fetches a loaded dictionary from the run context, erroring if it
// was never loaded by the orchestrator.
func getDict(ctx *dispatch.RunContext, kind reference.DictKind) (*archive.Table, error) {
	d, ok := ctx.Dicts[kind]
	if !ok {
		return nil, fmt.Errorf("dictionary %s not loaded", kind)
	}
	return d, nil
}

// indicesToAny adapts a []int of offending 0-based row indices to the
// report's verify payload shape.
func indicesToAny(indices []int) any {
	if len(indices) == 0 {
		return nil
	}
	return indices
}

// runContext returns ctx.Ctx, falling back to a background context when
// the caller (commonly a test) left it unset.
func runContext(ctx *dispatch.RunContext) context.Context {
	if ctx.Ctx != nil {
		return ctx.Ctx
	}
	return context.Background()
}

// register is a small convenience so each stage file's init() reads as a
// flat table instead of repeated dispatch.Register calls.
func register(table map[int]dispatch.Validator) {
	for id, v := range table {
		dispatch.Register(id, v)
	}
}
