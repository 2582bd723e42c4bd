// Package exitcodes defines the process exit codes used by caserun.
//
// * Success (0): every case passed, or no case file was given
// * CaseFailure (1): one or more cases failed
// * ConfigErr (2): configuration, usage or runtime error
package exitcodes

import (
	"errors"
	"strconv"
)

const (
	Success     = 0
	CaseFailure = 1
	ConfigErr   = 2
)

// ExitError carries the exit code a command wants alongside its error.
type ExitError struct {
	Code int
	Err  error
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status " + strconv.Itoa(e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// New wraps err with an exit code.
func New(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

// FromError picks the exit code for err: nil is Success, an ExitError
// carries its own code, anything else is ConfigErr.
func FromError(err error) int {
	if err == nil {
		return Success
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ConfigErr
}
