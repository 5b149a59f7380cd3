// Package rules parses the remotely-served rule table into typed Rule
// records and provides shared helpers for decoding the overloaded
// formula_regula/valoare_regula argument fields each validator reads.
package rules

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/urbanarchive/submiteval/archive"
)

// AlertKind is the severity of a rule's Fail/Error outcome.
type AlertKind int

const (
	AlertUnknown AlertKind = iota
	Blocker
	Warning
)

// String renders the alert kind the way the report column expects it.
func (a AlertKind) String() string {
	switch a {
	case Blocker:
		return "Blocker"
	case Warning:
		return "Warning"
	default:
		return strconv.Itoa(int(a))
	}
}

// Rule is one row of the remotely-served rule table: the descriptor a
// validator consumes and the dispatcher routes on.
type Rule struct {
	Number       int
	ValidatorID  int
	CategoryID   int
	StageID      int
	AlertID      AlertKind
	Formula      string
	Value        string
	Description  string
	PassMessage  string
	FailMessage  string
	ErrorMessage string
	FixHint      string
	ErrorFixHint string
}

// Parse reads every row of the rule table into Rule records, in source
// order. Unparseable integer columns are treated as zero so a malformed
// row surfaces as a routing error at dispatch time rather than aborting
// the whole table load.
func Parse(table *archive.Table) ([]Rule, error) {
	if table == nil {
		return nil, fmt.Errorf("rule table is nil")
	}

	out := make([]Rule, 0, len(table.Rows))
	for i := range table.Rows {
		r := Rule{
			Number:       parseInt(table, i, "numar_regula"),
			ValidatorID:  parseInt(table, i, "tip_regula_id"),
			CategoryID:   parseInt(table, i, "categorie_regula_id"),
			StageID:      parseInt(table, i, "tip_validare_id"),
			AlertID:      AlertKind(parseInt(table, i, "tip_alerta_id")),
			Formula:      stringCol(table, i, "formula_regula"),
			Value:        stringCol(table, i, "valoare_regula"),
			Description:  stringCol(table, i, "descriere"),
			PassMessage:  stringCol(table, i, "pass_alerta"),
			FailMessage:  stringCol(table, i, "fail_alerta"),
			ErrorMessage: stringCol(table, i, "error_alerta"),
			FixHint:      stringCol(table, i, "mesaj_modificare"),
			ErrorFixHint: stringCol(table, i, "eroare_modificare"),
		}
		out = append(out, r)
	}
	return out, nil
}

func parseInt(table *archive.Table, row int, col string) int {
	v, ok := table.Value(row, col)
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case float64:
		return int(x)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func stringCol(table *archive.Table, row int, col string) string {
	s, _ := table.StringValue(row, col)
	return s
}

// ForCategory filters to rows matching category, partitions by stage, and
// sorts each stage ascending by Number, per the ordering invariant.
func ForCategory(all []Rule, category int) []Rule {
	var selected []Rule
	for _, r := range all {
		if r.CategoryID == category {
			selected = append(selected, r)
		}
	}

	byStage := map[int][]Rule{}
	var stages []int
	for _, r := range selected {
		if _, ok := byStage[r.StageID]; !ok {
			stages = append(stages, r.StageID)
		}
		byStage[r.StageID] = append(byStage[r.StageID], r)
	}
	sort.Ints(stages)

	ordered := make([]Rule, 0, len(selected))
	for _, stage := range stages {
		rows := byStage[stage]
		sort.Slice(rows, func(i, j int) bool { return rows[i].Number < rows[j].Number })
		ordered = append(ordered, rows...)
	}
	return ordered
}
