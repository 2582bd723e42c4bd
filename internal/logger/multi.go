package logger

import (
	"github.com/harrison/caserun/internal/executor"
	"github.com/harrison/caserun/internal/models"
	"github.com/harrison/caserun/internal/summary"
)

// MultiLogger implements executor.Logger by delegating to multiple loggers.
type MultiLogger struct {
	loggers []executor.Logger
}

// NewMultiLogger creates a MultiLogger. Nil loggers are skipped.
func NewMultiLogger(loggers ...executor.Logger) *MultiLogger {
	ml := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			ml.loggers = append(ml.loggers, l)
		}
	}
	return ml
}

// LogCaseStart forwards to all loggers
func (ml *MultiLogger) LogCaseStart(index int, c models.Case) {
	for _, l := range ml.loggers {
		l.LogCaseStart(index, c)
	}
}

// LogCaseResult forwards to all loggers
func (ml *MultiLogger) LogCaseResult(result models.CaseResult) {
	for _, l := range ml.loggers {
		l.LogCaseResult(result)
	}
}

// LogSummary forwards to all loggers
func (ml *MultiLogger) LogSummary(s *summary.Summary) {
	for _, l := range ml.loggers {
		l.LogSummary(s)
	}
}
