package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/urbanarchive/submiteval/rules"
)

func testRule() *rules.Rule {
	return &rules.Rule{
		Number:       5,
		AlertID:      rules.Blocker,
		Description:  "layer must exist",
		PassMessage:  "layer present",
		FailMessage:  "layer missing",
		ErrorMessage: "could not read layer",
		FixHint:      "add the layer",
		ErrorFixHint: "check the archive",
	}
}

func readAllRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	return rows
}

func TestSinkResetAndEmit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	sink := NewSink(path)

	if err := sink.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := sink.EmitPass(testRule()); err != nil {
		t.Fatalf("EmitPass: %v", err)
	}

	rows := readAllRows(t, path)
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}
	if rows[0][0] != "Nr. Regula" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][1] != "Pass" || rows[1][6] != "-" {
		t.Errorf("unexpected pass row: %v", rows[1])
	}
}

func TestSinkEmitFailWithIndices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	sink := NewSink(path)
	if err := sink.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := sink.EmitFail(testRule(), []int{0, 4}); err != nil {
		t.Fatalf("EmitFail: %v", err)
	}

	rows := readAllRows(t, path)
	if rows[1][1] != "Fail" {
		t.Errorf("expected Fail status, got %s", rows[1][1])
	}
	if rows[1][6] != "1, 5" {
		t.Errorf("expected 1-based indices '1, 5', got %q", rows[1][6])
	}
}

func TestSinkResetTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	sink := NewSink(path)
	if err := sink.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := sink.EmitPass(testRule()); err != nil {
		t.Fatalf("EmitPass: %v", err)
	}
	if err := sink.Reset(); err != nil {
		t.Fatalf("second Reset: %v", err)
	}

	rows := readAllRows(t, path)
	if len(rows) != 1 {
		t.Fatalf("expected only the header row after reset, got %d rows", len(rows))
	}
}

func TestStringify(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "-"},
		{"", "-"},
		{"custom message", "custom message"},
		{[]string{"a", "b"}, "a\nb"},
		{[]int{}, "-"},
		{[]int{0, 2}, "1, 3"},
		{[][2]int{{0, 1}}, "(1,2)"},
	}
	for _, c := range cases {
		if got := Stringify(c.in); got != c.want {
			t.Errorf("Stringify(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
