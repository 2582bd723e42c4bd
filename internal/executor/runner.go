// Package executor runs the cases of a suite: it assembles each command,
// executes it, compares the captured output with the expected answer and
// records the verdict in a score summary.
//
// Cases run strictly one after another. Per-case failures (mismatch, launch
// failure, timeout) are scored zero and the run continues; only
// configuration errors abort it.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/caserun/internal/models"
	"github.com/harrison/caserun/internal/summary"
)

// Logger receives per-case status and the final summary.
type Logger interface {
	LogCaseStart(index int, c models.Case)
	LogCaseResult(result models.CaseResult)
	LogSummary(s *summary.Summary)
}

// RunnerConfig holds run-wide settings.
type RunnerConfig struct {
	RunID     string          // Identifier for this run (generated when empty)
	Mode      Mode            // Default comparison mode
	Timeout   time.Duration   // Default per-case bound (0 = wait forever)
	StripANSI bool            // Strip ANSI sequences before fuzzy comparison
	Assemble  AssembleOptions // Command assembly options
	BaseDir   string          // Directory relative answer files resolve against
}

// RunResult is everything a finished run produced.
type RunResult struct {
	RunID     string
	SuitePath string
	StartedAt time.Time
	Duration  time.Duration
	Summary   *summary.Summary
	Results   []models.CaseResult
}

// Runner drives each case of a suite through assemble, execute, compare
// and record.
type Runner struct {
	commands CommandRunner
	logger   Logger
	diff     *DiffReporter
	cfg      RunnerConfig
}

// NewRunner creates a Runner. A nil logger or diff reporter disables that output.
func NewRunner(commands CommandRunner, logger Logger, diff *DiffReporter, cfg RunnerConfig) *Runner {
	if cfg.Mode == "" {
		cfg.Mode = ModeFuzzy
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	return &Runner{
		commands: commands,
		logger:   logger,
		diff:     diff,
		cfg:      cfg,
	}
}

// Run executes every case of suite in order and renders the summary at the end.
// The returned error is a *models.ConfigError or a context error; in both
// cases the partial RunResult is returned too.
func (r *Runner) Run(ctx context.Context, suite *models.Suite) (*RunResult, error) {
	res := &RunResult{
		RunID:     r.cfg.RunID,
		SuitePath: suite.Path,
		StartedAt: time.Now(),
		Summary:   summary.New(),
		Results:   make([]models.CaseResult, 0, len(suite.Cases)),
	}

	for i, c := range suite.Cases {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(res.StartedAt)
			return res, err
		}

		result, err := r.runCase(ctx, i, c, suite.Path)
		if err != nil {
			res.Duration = time.Since(res.StartedAt)
			return res, err
		}

		if result.Passed {
			res.Summary.RecordPass(c.Score)
		} else {
			if result.Reason == models.ReasonMismatch {
				r.diff.Report(result.Actual, result.Expected, result.MismatchedLines)
			}
			res.Summary.RecordFail(c.Score, c.Name)
		}
		res.Results = append(res.Results, result)

		if r.logger != nil {
			r.logger.LogCaseResult(result)
		}
	}

	res.Duration = time.Since(res.StartedAt)
	if r.logger != nil {
		r.logger.LogSummary(res.Summary)
	}
	return res, nil
}

// runCase takes one case from start to verdict without touching the summary.
func (r *Runner) runCase(ctx context.Context, index int, c models.Case, suitePath string) (models.CaseResult, error) {
	if r.logger != nil {
		r.logger.LogCaseStart(index, c)
	}

	mode := r.cfg.Mode
	if c.Mode != "" {
		m, err := ParseMode(c.Mode)
		if err != nil {
			return models.CaseResult{}, &models.ConfigError{Path: suitePath, Index: index, Field: "mode", Err: err}
		}
		mode = m
	}

	timeout := r.cfg.Timeout
	if d, ok, err := c.TimeoutDuration(); err != nil {
		return models.CaseResult{}, &models.ConfigError{Path: suitePath, Index: index, Field: "timeout", Err: err}
	} else if ok {
		timeout = d
	}

	result := models.CaseResult{
		Index: index,
		Case:  c,
		Argv:  AssembleCommand(c, r.cfg.Assemble),
		Mode:  string(mode),
	}

	caseCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		caseCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	actual, runErr := r.commands.Run(caseCtx, result.Argv)
	result.Duration = time.Since(start)
	result.Actual = actual

	if runErr != nil && ctx.Err() != nil {
		return models.CaseResult{}, ctx.Err()
	}

	expected, err := r.resolveExpected(c)
	if err != nil {
		return models.CaseResult{}, &models.ConfigError{Path: suitePath, Index: index, Field: "answer", Err: err}
	}
	result.Expected = expected

	switch {
	case runErr == nil:
		comparator := NewComparator(mode, r.cfg.StripANSI)
		result.Passed = comparator.Compare(actual, expected)
		if !result.Passed {
			result.Reason = models.ReasonMismatch
			if fuzzy, ok := comparator.(FuzzyComparator); ok {
				result.MismatchedLines = fuzzy.Mismatches(actual, expected)
			}
		}
	case errors.Is(runErr, context.DeadlineExceeded), errors.Is(runErr, ErrTimeout):
		result.Reason = models.ReasonTimeout
		result.Err = fmt.Errorf("%w after %v", ErrTimeout, timeout)
	default:
		result.Reason = models.ReasonLaunch
		result.Err = runErr
	}

	return result, nil
}

// resolveExpected returns the answer text, reading the answer file when isfile is set.
func (r *Runner) resolveExpected(c models.Case) (string, error) {
	if !c.IsFile {
		return c.Answer, nil
	}
	path := c.Answer
	if !filepath.IsAbs(path) && r.cfg.BaseDir != "" {
		path = filepath.Join(r.cfg.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read answer file: %w", err)
	}
	return string(data), nil
}
