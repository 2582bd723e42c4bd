package models

import (
	"fmt"
	"strings"
	"time"
)

// Case status constants
const (
	StatusOK     = "OK"     // Output matched the expected answer
	StatusFailed = "FAILED" // Mismatch, launch failure or timeout
)

// FailureReason says why a case failed. Empty for passing cases.
type FailureReason string

const (
	ReasonNone     FailureReason = ""
	ReasonMismatch FailureReason = "mismatch"
	ReasonLaunch   FailureReason = "could not launch"
	ReasonTimeout  FailureReason = "timeout"
)

// CaseResult represents the result of running a single case
type CaseResult struct {
	Index    int           // Position of the case in the suite
	Case     Case          // The case that was run
	Argv     []string      // Argument vector handed to the process executor
	Mode     string        // Comparison mode used
	Actual   string        // Captured stdout
	Expected string        // Resolved expected answer
	Passed   bool          // Comparison verdict
	Reason   FailureReason // Why the case failed
	Err      error         // Launch or timeout error, if any
	Duration time.Duration // Time spent running the command

	// MismatchedLines holds zero-based indices of differing non-wildcard
	// lines for a fuzzy mismatch with equal line counts.
	MismatchedLines []int
}

// Status returns StatusOK or StatusFailed.
func (r CaseResult) Status() string {
	if r.Passed {
		return StatusOK
	}
	return StatusFailed
}

// ConfigError is a fatal problem with the case file or an answer file.
// It aborts the whole run and is never attributed to a single case's score.
type ConfigError struct {
	Path  string // File the problem was found in
	Index int    // Case index, or -1 when not case specific
	Field string // Offending field, if any
	Err   error
}

// NewConfigError creates a ConfigError that is not tied to a case.
func NewConfigError(path string, err error) *ConfigError {
	return &ConfigError{Path: path, Index: -1, Err: err}
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration error")
	if e.Path != "" {
		sb.WriteString(fmt.Sprintf(" in %s", e.Path))
	}
	if e.Index >= 0 {
		sb.WriteString(fmt.Sprintf(": case %d", e.Index))
	}
	if e.Field != "" {
		sb.WriteString(fmt.Sprintf(": field %q", e.Field))
	}
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
