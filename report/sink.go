// Package report writes the fixed 7-column CSV report that is this tool's
// sole durable output.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urbanarchive/submiteval/rules"
)

// Header is the report's fixed column contract.
var Header = []string{"Nr. Regula", "Status", "Tip Alerta", "Regula", "Mesaj", "Modificare", "Verifica"}

// Sink appends rows to a CSV report file. Each emit opens, appends, and
// closes the file so the report stays observable on disk if the process
// terminates mid-run - no file handle is held across validator calls.
type Sink struct {
	path string
}

// NewSink returns a Sink that writes to path.
func NewSink(path string) *Sink {
	return &Sink{path: path}
}

// Reset truncates the report file and writes the header row. Called once
// at the start of a run.
func (s *Sink) Reset() error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("reset report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	w.Flush()
	return w.Error()
}

// EmitPass appends a Pass row for r.
func (s *Sink) EmitPass(r *rules.Rule) error {
	return s.append([]string{
		strconv.Itoa(r.Number),
		"Pass",
		r.AlertID.String(),
		r.Description,
		r.PassMessage,
		"-",
		"-",
	})
}

// EmitFail appends a Fail row for r, with verify stringified.
func (s *Sink) EmitFail(r *rules.Rule, verify any) error {
	return s.append([]string{
		strconv.Itoa(r.Number),
		"Fail",
		r.AlertID.String(),
		r.Description,
		r.FailMessage,
		r.FixHint,
		Stringify(verify),
	})
}

// EmitError appends an Error row for r, with verify stringified.
func (s *Sink) EmitError(r *rules.Rule, verify any) error {
	return s.append([]string{
		strconv.Itoa(r.Number),
		"Error",
		r.AlertID.String(),
		r.Description,
		r.ErrorMessage,
		r.ErrorFixHint,
		Stringify(verify),
	})
}

func (s *Sink) append(row []string) error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open report for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write report row: %w", err)
	}
	w.Flush()
	return w.Error()
}

// Stringify renders a verify payload in the language-neutral, human
// readable form the report column expects. nil or empty collections render
// as "-".
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		if x == "" {
			return "-"
		}
		return x
	case []string:
		if len(x) == 0 {
			return "-"
		}
		return strings.Join(x, "\n")
	case []int:
		if len(x) == 0 {
			return "-"
		}
		parts := make([]string, len(x))
		for i, n := range x {
			parts[i] = strconv.Itoa(n + 1) // report 1-based indices
		}
		return strings.Join(parts, ", ")
	case [][2]int:
		if len(x) == 0 {
			return "-"
		}
		parts := make([]string, len(x))
		for i, pair := range x {
			parts[i] = fmt.Sprintf("(%d,%d)", pair[0]+1, pair[1]+1)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", x)
	}
}
