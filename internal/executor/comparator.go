package executor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/acarl005/stripansi"
)

// WildcardMarker exempts a line pair from equality checks in fuzzy mode when
// it appears on either side. Programs print tick counters that vary per run.
const WildcardMarker = "Ticks"

// Mode selects an output comparison policy.
type Mode string

const (
	ModeExact Mode = "exact"
	ModeFuzzy Mode = "fuzzy"
)

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeExact:
		return ModeExact, nil
	case ModeFuzzy:
		return ModeFuzzy, nil
	default:
		return "", fmt.Errorf("unknown comparison mode %q (want exact or fuzzy)", s)
	}
}

// Comparator decides whether actual output matches the expected answer.
type Comparator interface {
	Compare(actual, expected string) bool
}

// ExactComparator requires byte-for-byte equal text.
type ExactComparator struct{}

// Compare implements Comparator.
func (ExactComparator) Compare(actual, expected string) bool {
	return actual == expected
}

// FuzzyComparator compares sanitized actual output line by line, letting
// wildcard lines match anything. Line counts must agree.
type FuzzyComparator struct {
	// StripANSI removes whole ANSI escape sequences before sanitizing.
	StripANSI bool
}

// Compare implements Comparator.
func (f FuzzyComparator) Compare(actual, expected string) bool {
	ok, _ := f.compareLines(actual, expected)
	return ok
}

// Mismatches returns the zero-based indices of non-wildcard lines that
// differ. It returns nil when line counts differ, since no pairing exists.
func (f FuzzyComparator) Mismatches(actual, expected string) []int {
	_, bad := f.compareLines(actual, expected)
	return bad
}

func (f FuzzyComparator) compareLines(actual, expected string) (bool, []int) {
	actualLines := strings.Split(f.Sanitize(actual), "\n")
	expectedLines := strings.Split(expected, "\n")

	if len(actualLines) != len(expectedLines) {
		return false, nil
	}

	var bad []int
	for i := range actualLines {
		a, e := actualLines[i], expectedLines[i]
		if strings.Contains(a, WildcardMarker) || strings.Contains(e, WildcardMarker) {
			continue
		}
		if a != e {
			bad = append(bad, i)
		}
	}
	return len(bad) == 0, bad
}

// Sanitize keeps printable characters and newlines, dropping other control
// characters such as carriage returns and escape bytes.
func (f FuzzyComparator) Sanitize(s string) string {
	if f.StripANSI {
		s = stripansi.Strip(s)
	}
	return strings.Map(func(r rune) rune {
		if r == '\n' || unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
}

// NewComparator returns the Comparator for mode.
func NewComparator(mode Mode, stripANSI bool) Comparator {
	if mode == ModeExact {
		return ExactComparator{}
	}
	return FuzzyComparator{StripANSI: stripANSI}
}

// Compare runs the comparison policy named by mode.
func Compare(actual, expected string, mode Mode) bool {
	return NewComparator(mode, false).Compare(actual, expected)
}
