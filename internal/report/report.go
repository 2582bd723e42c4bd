// Package report converts a finished run into a JSON document for CI
// pipelines. One file is written per run; nothing is accumulated across runs.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/harrison/caserun/internal/executor"
	"github.com/harrison/caserun/internal/filelock"
)

// Report is the JSON shape of a run.
type Report struct {
	RunID      string       `json:"run_id"`
	SuitePath  string       `json:"suite_path"`
	StartedAt  time.Time    `json:"started_at"`
	DurationMs int64        `json:"duration_ms"`
	Achieved   float64      `json:"achieved"`
	Possible   float64      `json:"possible"`
	Passed     int          `json:"passed"`
	Failed     int          `json:"failed"`
	FailedCase []string     `json:"failed_cases"`
	Cases      []CaseReport `json:"cases"`
}

// CaseReport is one case's entry in a Report.
type CaseReport struct {
	Name       string   `json:"case_name"`
	Argv       []string `json:"argv"`
	Mode       string   `json:"mode"`
	Status     string   `json:"status"`
	Reason     string   `json:"reason,omitempty"`
	Error      string   `json:"error,omitempty"`
	Score      float64  `json:"score"`
	DurationMs int64    `json:"duration_ms"`
}

// FromRun builds a Report from a RunResult.
func FromRun(res *executor.RunResult) *Report {
	r := &Report{
		RunID:      res.RunID,
		SuitePath:  res.SuitePath,
		StartedAt:  res.StartedAt.UTC(),
		DurationMs: res.Duration.Milliseconds(),
		Achieved:   res.Summary.Achieved(),
		Possible:   res.Summary.Possible(),
		Passed:     res.Summary.Passed(),
		Failed:     len(res.Summary.Failed()),
		FailedCase: res.Summary.Failed(),
		Cases:      make([]CaseReport, 0, len(res.Results)),
	}

	for _, cr := range res.Results {
		entry := CaseReport{
			Name:       cr.Case.Name,
			Argv:       cr.Argv,
			Mode:       cr.Mode,
			Status:     cr.Status(),
			Reason:     string(cr.Reason),
			Score:      cr.Case.Score,
			DurationMs: cr.Duration.Milliseconds(),
		}
		if cr.Err != nil {
			entry.Error = cr.Err.Error()
		}
		r.Cases = append(r.Cases, entry)
	}
	return r
}

// Write serializes the report and writes it to path atomically under a file lock.
func Write(path string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')
	if err := filelock.LockAndWrite(path, data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
