// Package orchestrator wires archive introspection, reference-data
// loading, rule parsing, and dispatch into the single pipeline the CLI
// invokes for one validation run.
package orchestrator

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urbanarchive/submiteval/archive"
	"github.com/urbanarchive/submiteval/dispatch"
	"github.com/urbanarchive/submiteval/output"
	"github.com/urbanarchive/submiteval/reference"
	"github.com/urbanarchive/submiteval/report"
	"github.com/urbanarchive/submiteval/rules"
	_ "github.com/urbanarchive/submiteval/validate"
)

// Config carries everything a single run needs beyond the Loader and
// Logger, which callers construct themselves so they can substitute stubs
// in tests.
type Config struct {
	ArchivePath    string
	Category       int
	RulesVersion   string
	ReportPath     string
	LocalRulesYAML string // when non-empty, read the rule table from this file instead of Loader.LoadRules
}

// Run executes one validation pass: introspect the archive, load the rule
// table and dictionaries, parse and filter the rules to cfg.Category, run
// the dispatcher against every rule in order, and write the CSV report.
// It returns the aggregate verdict (false iff no rule applies to the
// category or a Blocker rule failed or errored) and a non-nil error only when the run could not be completed at
// all - a failing or erroring rule is itself a successful run with verdict
// false, not an error return.
func Run(ctx context.Context, cfg Config, loader reference.Loader, log *output.Logger) (bool, error) {
	if !rules.ValidCategory(cfg.Category) {
		return false, fmt.Errorf("invalid category %d", cfg.Category)
	}

	stopIntrospect := log.StartTiming(output.StageIntrospect)
	view, err := archive.Introspect(cfg.ArchivePath)
	stopIntrospect()
	if err != nil {
		return false, fmt.Errorf("introspect archive: %w", err)
	}
	log.Statistic("found %d file(s), %d gpkg layer(s)", len(view.FileList), len(view.Layers))

	stopLoad := log.StartTiming(output.StageLoadReference)
	ruleTable, err := loadRuleTable(ctx, cfg, loader)
	if err != nil {
		stopLoad()
		return false, fmt.Errorf("load rule table: %w", err)
	}

	dicts := map[reference.DictKind]*archive.Table{}
	for _, kind := range []reference.DictKind{reference.ZFZRS, reference.H1, reference.H2, reference.H3} {
		d, err := loader.LoadDict(ctx, kind)
		if err != nil {
			stopLoad()
			return false, fmt.Errorf("load dictionary %s: %w", kind, err)
		}
		dicts[kind] = d
	}
	stopLoad()

	parsed, err := rules.Parse(ruleTable)
	if err != nil {
		return false, fmt.Errorf("parse rule table: %w", err)
	}
	ordered := rules.ForCategory(parsed, cfg.Category)
	log.Progress("evaluating %d rule(s) for category %s", len(ordered), rules.CategoryName(cfg.Category))

	sink := report.NewSink(cfg.ReportPath)
	if err := sink.Reset(); err != nil {
		return false, fmt.Errorf("reset report: %w", err)
	}

	runCtx := &dispatch.RunContext{
		Ctx:         ctx,
		ArchivePath: cfg.ArchivePath,
		View:        view,
		Dicts:       dicts,
		Loader:      loader,
		Category:    cfg.Category,
		Log:         log,
	}

	stopDispatch := log.StartTiming(output.StageDispatch)
	verdict, err := dispatch.Run(runCtx, ordered, sink)
	stopDispatch()
	if err != nil {
		return false, fmt.Errorf("run rules: %w", err)
	}

	if log.IsVerbose() {
		log.PrintTimingSummary()
	}
	return verdict, nil
}

// loadRuleTable reads cfg.LocalRulesYAML when set, otherwise fetches the
// rule table for cfg.RulesVersion/Category from loader.
func loadRuleTable(ctx context.Context, cfg Config, loader reference.Loader) (*archive.Table, error) {
	if cfg.LocalRulesYAML != "" {
		return reference.LoadLocalRules(cfg.LocalRulesYAML)
	}
	return loader.LoadRules(ctx, cfg.RulesVersion, strconv.Itoa(cfg.Category))
}
