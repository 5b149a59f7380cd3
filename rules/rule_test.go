package rules

import (
	"testing"

	"github.com/urbanarchive/submiteval/archive"
)

func ruleTableFixture() *archive.Table {
	cols := []string{
		"numar_regula", "tip_regula_id", "categorie_regula_id", "tip_validare_id",
		"tip_alerta_id", "formula_regula", "valoare_regula", "descriere",
		"pass_alerta", "fail_alerta", "error_alerta", "mesaj_modificare", "eroare_modificare",
	}
	return &archive.Table{
		Columns:        cols,
		GeometryColumn: -1,
		Rows: [][]any{
			{int64(3), int64(16), int64(1), int64(4), int64(1), "", "1", "minimum layer count", "ok", "too few layers", "error", "add a layer", "fix input"},
			{int64(1), int64(1), int64(1), int64(1), int64(1), "", "", "archive exists", "ok", "missing", "error", "-", "-"},
			{int64(2), int64(2), int64(1), int64(1), int64(1), "", "", "valid zip", "ok", "corrupt", "error", "-", "-"},
			{int64(9), int64(40), int64(2), int64(4), int64(2), "ZoneFunctionale", "cod", "warning only", "ok", "duplicate", "error", "-", "-"},
		},
	}
}

func TestParseRules(t *testing.T) {
	rules, err := Parse(ruleTableFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 4 {
		t.Fatalf("expected 4 rules, got %d", len(rules))
	}
	if rules[0].Number != 3 || rules[0].ValidatorID != 16 || rules[0].AlertID != Blocker {
		t.Errorf("unexpected first rule: %+v", rules[0])
	}
	if rules[3].AlertID != Warning {
		t.Errorf("expected fourth rule to be a Warning, got %v", rules[3].AlertID)
	}
}

func TestForCategoryOrdering(t *testing.T) {
	rules, err := Parse(ruleTableFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ordered := ForCategory(rules, CategoryPUG)
	if len(ordered) != 3 {
		t.Fatalf("expected 3 rules for category 1, got %d", len(ordered))
	}
	// Stage 1 rules (numbers 1, 2) must precede stage 4 (number 3).
	if ordered[0].Number != 1 || ordered[1].Number != 2 || ordered[2].Number != 3 {
		t.Errorf("unexpected order: %v %v %v", ordered[0].Number, ordered[1].Number, ordered[2].Number)
	}
}

func TestForCategoryFiltersOtherCategories(t *testing.T) {
	rules, err := Parse(ruleTableFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ordered := ForCategory(rules, CategoryPUZ)
	if len(ordered) != 1 || ordered[0].Number != 9 {
		t.Fatalf("expected only rule 9 for category 2, got %v", ordered)
	}
}

func TestAlertKindString(t *testing.T) {
	if Blocker.String() != "Blocker" {
		t.Errorf("expected Blocker, got %s", Blocker.String())
	}
	if Warning.String() != "Warning" {
		t.Errorf("expected Warning, got %s", Warning.String())
	}
	if AlertKind(99).String() != "99" {
		t.Errorf("expected numeric pass-through, got %s", AlertKind(99).String())
	}
}
