// Package summary accumulates per-case scores for a run and renders the
// final report.
package summary

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Summary is the running score accumulator for one run.
// It is owned by a single runner goroutine and is not safe for concurrent use;
// parallel callers should keep one Summary per worker and Merge them.
type Summary struct {
	achieved    float64
	possible    float64
	passed      int
	failedNames []string
	colorOutput bool
}

// New creates an empty Summary.
func New() *Summary {
	return &Summary{}
}

// SetColor enables colored table styles in Render.
func (s *Summary) SetColor(enabled bool) {
	s.colorOutput = enabled
}

// RecordPass credits points to both the achieved and possible totals.
func (s *Summary) RecordPass(points float64) {
	s.achieved += points
	s.possible += points
	s.passed++
}

// RecordFail adds points to the possible total only and remembers the case name.
func (s *Summary) RecordFail(points float64, name string) {
	s.possible += points
	s.failedNames = append(s.failedNames, name)
}

// Merge folds other into s. Failing names from other follow those of s.
func (s *Summary) Merge(other *Summary) {
	if other == nil {
		return
	}
	s.achieved += other.achieved
	s.possible += other.possible
	s.passed += other.passed
	s.failedNames = append(s.failedNames, other.failedNames...)
}

// Achieved returns the total score of passing cases.
func (s *Summary) Achieved() float64 { return s.achieved }

// Possible returns the total score of every recorded case.
func (s *Summary) Possible() float64 { return s.possible }

// Passed returns the number of passing cases.
func (s *Summary) Passed() int { return s.passed }

// Failed returns the names of failing cases in record order.
func (s *Summary) Failed() []string {
	out := make([]string, len(s.failedNames))
	copy(out, s.failedNames)
	return out
}

// Total returns the number of recorded cases.
func (s *Summary) Total() int { return s.passed + len(s.failedNames) }

// AllPassed reports whether no case failed.
func (s *Summary) AllPassed() bool { return len(s.failedNames) == 0 }

// Render writes the score table followed by the failing case names.
func (s *Summary) Render(w io.Writer) error {
	var buf bytes.Buffer

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetTitle("Score Summary")
	t.AppendHeader(table.Row{"Cases", "Passed", "Failed", "Score", "Possible"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Cases", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Score", Align: text.AlignRight},
		{Name: "Possible", Align: text.AlignRight},
	})
	t.AppendRow(table.Row{
		s.Total(),
		s.passed,
		len(s.failedNames),
		FormatScore(s.achieved),
		FormatScore(s.possible),
	})

	switch {
	case !s.colorOutput:
		t.SetStyle(table.StyleLight)
	case s.AllPassed():
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}
	t.Style().Title.Format = text.FormatDefault
	t.Render()

	if len(s.failedNames) > 0 {
		buf.WriteString("Failed cases:\n")
		for _, name := range s.failedNames {
			fmt.Fprintf(&buf, "  - %s\n", name)
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// FormatScore prints a score without trailing zeros ("5", "2.5").
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
