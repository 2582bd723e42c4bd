package executor

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/harrison/caserun/internal/display"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Separator frames each block of a mismatch report.
var Separator = strings.Repeat("=", 20)

// DiffReporter prints expected and actual output when a comparison fails.
type DiffReporter struct {
	writer      io.Writer
	colorOutput bool

	// Detailed appends a line-level diff after the framed blocks.
	Detailed bool
}

// NewDiffReporter creates a DiffReporter writing to w.
// If w is nil, reports are discarded.
func NewDiffReporter(w io.Writer, colorOutput, detailed bool) *DiffReporter {
	return &DiffReporter{writer: w, colorOutput: colorOutput, Detailed: detailed}
}

// Report writes separator, expected block, separator, actual block, separator.
// Non-empty mismatched (zero-based line indices) adds a line naming them.
func (d *DiffReporter) Report(actual, expected string, mismatched []int) {
	if d == nil || d.writer == nil {
		return
	}

	var sb strings.Builder
	sep := display.StyleMuted.Sprint(d.colorOutput, Separator)

	sb.WriteString(sep + "\n")
	sb.WriteString(display.StyleHeader.Sprint(d.colorOutput, "Expected:") + "\n")
	sb.WriteString(withTrailingNewline(expected))
	sb.WriteString(sep + "\n")
	sb.WriteString(display.StyleHeader.Sprint(d.colorOutput, "Actual:") + "\n")
	sb.WriteString(withTrailingNewline(actual))
	sb.WriteString(sep + "\n")

	if len(mismatched) > 0 {
		nums := make([]string, len(mismatched))
		for i, idx := range mismatched {
			nums[i] = strconv.Itoa(idx + 1)
		}
		sb.WriteString(display.StyleWarn.Sprint(d.colorOutput, "Mismatched lines: "+strings.Join(nums, ", ")) + "\n")
	}

	if d.Detailed {
		sb.WriteString(display.StyleHeader.Sprint(d.colorOutput, "Diff:") + "\n")
		sb.WriteString(d.lineDiff(expected, actual))
		sb.WriteString(sep + "\n")
	}

	fmt.Fprint(d.writer, sb.String())
}

// lineDiff renders a line-oriented diff: "-" lines only in expected,
// "+" lines only in actual, "  " shared lines.
func (d *DiffReporter) lineDiff(expected, actual string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(expected, actual)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, diff := range diffs {
		var prefix string
		style := display.StylePlain
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			prefix, style = "- ", display.StyleFail
		case diffmatchpatch.DiffInsert:
			prefix, style = "+ ", display.StyleOK
		default:
			prefix = "  "
		}
		for _, line := range splitKeepingContent(diff.Text) {
			sb.WriteString(style.Sprint(d.colorOutput, prefix+line) + "\n")
		}
	}
	return sb.String()
}

// splitKeepingContent splits text into lines without a phantom empty last line.
func splitKeepingContent(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

func withTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
