package validate

import (
	"testing"

	"github.com/urbanarchive/submiteval/archive"
	"github.com/urbanarchive/submiteval/dispatch"
	"github.com/urbanarchive/submiteval/reference"
	"github.com/urbanarchive/submiteval/rules"
)

func schemaCtx(layers map[string]*archive.Table, dicts map[reference.DictKind]*archive.Table) *dispatch.RunContext {
	return &dispatch.RunContext{
		View:  &archive.View{Layers: layers},
		Dicts: dicts,
	}
}

func TestR16LayerCountThreshold(t *testing.T) {
	ctx := schemaCtx(map[string]*archive.Table{"a": {}, "b": {}}, nil)
	outcome, _, err := R16(ctx, &rules.Rule{Value: "3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail, got %v", outcome)
	}
}

func TestR17NamedLayerPresent(t *testing.T) {
	ctx := schemaCtx(map[string]*archive.Table{"UTR": {}}, nil)
	outcome, _, err := R17(ctx, &rules.Rule{Value: "UTR"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Pass {
		t.Errorf("expected Pass, got %v", outcome)
	}
	outcome, _, err = R17(ctx, &rules.Rule{Value: "Missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail, got %v", outcome)
	}
}

func TestR18NonGeometryColumnCount(t *testing.T) {
	layer := &archive.Table{Columns: []string{"id", "name", "geom"}, GeometryColumn: 2}
	ctx := schemaCtx(map[string]*archive.Table{"zone": layer}, nil)
	outcome, _, err := R18(ctx, &rules.Rule{Formula: "zone", Value: "3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail (2 non-geometry columns < 3), got %v", outcome)
	}
}

func TestR19AllColumnsPresent(t *testing.T) {
	layer := &archive.Table{Columns: []string{"id", "name"}, GeometryColumn: -1}
	ctx := schemaCtx(map[string]*archive.Table{"zone": layer}, nil)
	outcome, _, err := R19(ctx, &rules.Rule{Formula: "zone", Value: "id,name"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Pass {
		t.Errorf("expected Pass, got %v", outcome)
	}
	outcome, verify, err := R19(ctx, &rules.Rule{Formula: "zone", Value: "id,missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail, got %v", outcome)
	}
	missing, ok := verify.([]string)
	if !ok || len(missing) != 1 || missing[0] != "missing" {
		t.Errorf("expected [missing], got %v", verify)
	}
}

func TestR20RequiresAtLeastOneRow(t *testing.T) {
	empty := &archive.Table{Columns: []string{"id"}, GeometryColumn: -1}
	ctx := schemaCtx(map[string]*archive.Table{"zone": empty}, nil)
	outcome, _, err := R20(ctx, &rules.Rule{Formula: "zone"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail, got %v", outcome)
	}
}

func TestR21NullReportingWithPOTExemption(t *testing.T) {
	layer := &archive.Table{
		Columns:        []string{"denumire", "POT"},
		GeometryColumn: -1,
		Rows: [][]any{
			{"Zona A", nil},
			{nil, nil},
		},
	}
	ctx := schemaCtx(map[string]*archive.Table{"zone": layer}, nil)

	outcome, verify, err := R21(ctx, &rules.Rule{Formula: "zone", Value: "denumire"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail for nil denumire, got %v", outcome)
	}
	if indices, ok := verify.([]int); !ok || len(indices) != 1 || indices[0] != 1 {
		t.Errorf("expected row 1 only, got %v", verify)
	}

	// POT is nil in every row, so the exemption still fails it (entirely empty).
	outcome, _, err = R21(ctx, &rules.Rule{Formula: "zone", Value: "POT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail for entirely-empty POT column, got %v", outcome)
	}
}

func TestR21POTExemptionPassesWhenPartiallyPopulated(t *testing.T) {
	layer := &archive.Table{
		Columns:        []string{"POT"},
		GeometryColumn: -1,
		Rows: [][]any{
			{"0.4"},
			{nil},
		},
	}
	ctx := schemaCtx(map[string]*archive.Table{"zone": layer}, nil)
	outcome, _, err := R21(ctx, &rules.Rule{Formula: "zone", Value: "POT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Pass {
		t.Errorf("expected Pass since POT is not entirely empty, got %v", outcome)
	}
}

func TestR22DtypeMismatch(t *testing.T) {
	layer := &archive.Table{
		Columns:        []string{"id", "suprafata"},
		GeometryColumn: -1,
		Rows: [][]any{
			{int64(1), "not-a-number"},
		},
	}
	ctx := schemaCtx(map[string]*archive.Table{"zone": layer}, nil)
	outcome, _, err := R22(ctx, &rules.Rule{Formula: "zone", Value: "id-int64,suprafata-float64"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail, got %v", outcome)
	}
}

func TestR23CheckCodAgainstDictionary(t *testing.T) {
	layer := &archive.Table{
		Columns:        []string{"cod"},
		GeometryColumn: -1,
		Rows:           [][]any{{"ZF01"}, {"UNKNOWN"}},
	}
	dict := &archive.Table{
		Columns: []string{"definitie", "definite_lung"},
		Rows:    [][]any{{"ZF01", "Zona functionala 1"}},
	}
	ctx := schemaCtx(
		map[string]*archive.Table{"zone": layer},
		map[reference.DictKind]*archive.Table{reference.ZFZRS: dict},
	)
	outcome, verify, err := R23(ctx, &rules.Rule{Formula: "zone", Value: "cod-check_cod"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail, got %v", outcome)
	}
	if indices, ok := verify.([]int); !ok || len(indices) != 1 || indices[0] != 1 {
		t.Errorf("expected row 1 flagged, got %v", verify)
	}
}

func TestR23EnumLiteral(t *testing.T) {
	layer := &archive.Table{
		Columns:        []string{"stare"},
		GeometryColumn: -1,
		Rows:           [][]any{{"activ"}, {"desfiintat"}},
	}
	ctx := schemaCtx(map[string]*archive.Table{"zone": layer}, nil)
	outcome, _, err := R23(ctx, &rules.Rule{Formula: "zone", Value: "stare-activ_inactiv"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail since 'desfiintat' is not in the allowed set, got %v", outcome)
	}
}

func TestR24UnsupportedColumnCombinationIsError(t *testing.T) {
	layer := &archive.Table{Columns: []string{"Altceva"}, GeometryColumn: -1, Rows: [][]any{{"x"}}}
	ctx := schemaCtx(map[string]*archive.Table{"zone": layer}, nil)
	outcome, _, err := R24(ctx, &rules.Rule{Formula: "zone", Value: "Altceva"})
	if err == nil {
		t.Fatal("expected an error for an unrecognized column combination")
	}
	if outcome != dispatch.Error {
		t.Errorf("expected Error, got %v", outcome)
	}
}

func TestR24RevizieMustNotBeInFuture(t *testing.T) {
	layer := &archive.Table{
		Columns:        []string{"Revizie"},
		GeometryColumn: -1,
		Rows:           [][]any{{"2999-01-01"}},
	}
	ctx := schemaCtx(map[string]*archive.Table{"zone": layer}, nil)
	outcome, _, err := R24(ctx, &rules.Rule{Formula: "zone", Value: "Revizie"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != dispatch.Fail {
		t.Errorf("expected Fail for a revision date far in the future, got %v", outcome)
	}
}
