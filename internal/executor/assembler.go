package executor

import "github.com/harrison/caserun/internal/models"

// AssembleOptions tunes command assembly.
type AssembleOptions struct {
	// SpreadSingleElement spreads one-element and empty args sequences into
	// the argument vector instead of appending the sequence as one item.
	SpreadSingleElement bool
}

// AssembleCommand builds the argument vector for a case.
//
// A sequence with more than one element is spread after the command. Any
// other args value (a scalar, or a sequence of length <= 1) is appended as a
// single element; for such a sequence that element is the sequence's JSON
// text, so ["x"] yields [command, `["x"]`]. Existing case files rely on this,
// so spreading short sequences is opt-in via SpreadSingleElement.
func AssembleCommand(c models.Case, opts AssembleOptions) []string {
	args := c.Args
	if args.IsSequence() && (args.Len() > 1 || opts.SpreadSingleElement) {
		return append([]string{c.Command}, args.Values()...)
	}
	return []string{c.Command, args.Raw()}
}
