// Package dispatch routes each rule descriptor to its validator and
// reduces the results into a single run verdict.
package dispatch

import (
	"context"
	"fmt"

	"github.com/urbanarchive/submiteval/archive"
	"github.com/urbanarchive/submiteval/output"
	"github.com/urbanarchive/submiteval/reference"
	"github.com/urbanarchive/submiteval/report"
	"github.com/urbanarchive/submiteval/rules"
)

// Outcome is a validator's classification of a single rule.
type Outcome int

const (
	Pass Outcome = iota
	Fail
	Error
)

// RunContext bundles everything a validator may need. Validators pull only
// the fields relevant to their rule; the struct itself carries no
// behavior.
type RunContext struct {
	Ctx         context.Context
	ArchivePath string
	View        *archive.View
	Dicts       map[reference.DictKind]*archive.Table
	Loader      reference.Loader
	Category    int
	// Log is optional: when set, Run drives its rule-evaluation progress
	// bar as each rule completes. Nil is safe (no progress reporting).
	Log *output.Logger
}

// Validator evaluates one rule against ctx and returns its outcome plus an
// optional verify payload describing offending rows/files/pairs. An
// error return is itself converted to an Error outcome by the dispatcher -
// a validator need not do that translation itself, though it may still
// return (Error, verify, nil) directly when it has a descriptive message
// instead of a native error.
type Validator func(ctx *RunContext, r *rules.Rule) (Outcome, any, error)

// registry is the static rule-kind-id -> validator dispatch table. Kept as
// a package-level map literal rather than a switch so adding a rule kind
// never touches the routing logic.
var registry = map[int]Validator{}

// Register adds or replaces the validator for a rule-kind id. Called from
// each validator family's init() so the registry is fully populated before
// any Run.
func Register(ruleKindID int, v Validator) {
	registry[ruleKindID] = v
}

// Run evaluates every rule in ordered (already filtered to a category and
// sorted per the stage/number ordering invariant), writes one report row
// per rule, and returns the aggregate verdict: false iff ordered is empty
// or any Blocker rule failed or errored.
func Run(ctx *RunContext, ordered []rules.Rule, sink *report.Sink) (bool, error) {
	verdict := len(ordered) > 0

	if ctx.Log != nil {
		_ = ctx.Log.StartRuleProgress(len(ordered))
		defer func() { _ = ctx.Log.FinishProgress() }()
	}

	for i := range ordered {
		r := &ordered[i]

		if ctx.Log != nil {
			ctx.Log.SetProgressDescription(fmt.Sprintf("rule %d", r.Number))
		}

		outcome, verify, err := safeRun(ctx, r)

		switch outcome {
		case Pass:
			if emitErr := sink.EmitPass(r); emitErr != nil {
				return false, fmt.Errorf("emit pass row for rule %d: %w", r.Number, emitErr)
			}
		case Fail:
			if emitErr := sink.EmitFail(r, verify); emitErr != nil {
				return false, fmt.Errorf("emit fail row for rule %d: %w", r.Number, emitErr)
			}
			if r.AlertID == rules.Blocker {
				verdict = false
			}
		case Error:
			if verify == nil && err != nil {
				verify = truncateOneLine(err.Error())
			}
			if emitErr := sink.EmitError(r, verify); emitErr != nil {
				return false, fmt.Errorf("emit error row for rule %d: %w", r.Number, emitErr)
			}
			if r.AlertID == rules.Blocker {
				verdict = false
			}
		}

		if ctx.Log != nil {
			_ = ctx.Log.UpdateProgress(1)
		}
	}
	return verdict, nil
}

// safeRun invokes the validator for r, converting an unknown rule-kind id,
// a returned error, or a panic inside the validator into an Error outcome.
// No validator panic ever escapes to the orchestrator.
func safeRun(ctx *RunContext, r *rules.Rule) (outcome Outcome, verify any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			outcome = Error
			verify = nil
			err = fmt.Errorf("validator panicked: %v", rec)
		}
	}()

	v, ok := registry[r.ValidatorID]
	if !ok {
		return Error, nil, fmt.Errorf("no validator registered for rule kind %d", r.ValidatorID)
	}

	outcome, verify, err = v(ctx, r)
	if err != nil && outcome != Error {
		outcome = Error
	}
	return outcome, verify, err
}

func truncateOneLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
