// Package logger provides logging implementations for caserun runs.
//
// Loggers receive per-case status lines and the final score summary. The
// console logger writes human-readable, optionally colorized lines; the file
// logger keeps a plain per-run log on disk. Implementations are safe to
// share between goroutines.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/harrison/caserun/internal/display"
	"github.com/harrison/caserun/internal/models"
	"github.com/harrison/caserun/internal/summary"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger writes run progress to a writer with [HH:MM:SS] prefixes.
// It supports log level filtering and optional color output.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string, colorOutput bool) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: colorOutput,
	}
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

// IsValidLevel reports whether level names a known log level.
func IsValidLevel(level string) bool {
	normalized := strings.ToLower(strings.TrimSpace(level))
	return normalizeLogLevel(normalized) == normalized
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	style := display.StylePlain
	switch level {
	case "DEBUG":
		style = display.StyleMuted
	case "WARN":
		style = display.StyleWarn
	case "ERROR":
		style = display.StyleFail
	}

	cl.write(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), style.Sprint(cl.colorOutput, level), message))
}

// LogCaseStart logs the "running" status line at INFO level.
// Format: "[HH:MM:SS] running <name>"
func (cl *ConsoleLogger) LogCaseStart(index int, c models.Case) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}
	label := display.StyleRunning.Sprint(cl.colorOutput, "running")
	cl.write(fmt.Sprintf("[%s] %s %s\n", timestamp(), label, c.Name))

	if cl.shouldLog("debug") {
		cl.write(fmt.Sprintf("[%s] [%s] case %d: command=%q args=%s score=%s\n",
			timestamp(), display.StyleMuted.Sprint(cl.colorOutput, "DEBUG"),
			index, c.Command, c.Args.Raw(), summary.FormatScore(c.Score)))
	}
}

// LogCaseResult logs the OK or FAILED status line at INFO level.
// Format: "[HH:MM:SS] OK <name>" or "[HH:MM:SS] FAILED <name> (<reason>)"
func (cl *ConsoleLogger) LogCaseResult(result models.CaseResult) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	ts := timestamp()
	var out string
	if result.Passed {
		out = fmt.Sprintf("[%s] %s %s\n", ts, display.StyleOK.Sprint(cl.colorOutput, models.StatusOK), result.Case.Name)
	} else {
		out = fmt.Sprintf("[%s] %s %s (%s)\n", ts,
			display.StyleFail.Sprint(cl.colorOutput, models.StatusFailed), result.Case.Name, result.Reason)
		if result.Err != nil {
			out += fmt.Sprintf("[%s]   %s\n", ts, display.StyleWarn.Sprint(cl.colorOutput, result.Err.Error()))
		}
	}

	if cl.shouldLog("debug") {
		out += fmt.Sprintf("[%s] [%s] %s mode=%s duration=%s\n", ts,
			display.StyleMuted.Sprint(cl.colorOutput, "DEBUG"),
			strings.Join(result.Argv, " "), result.Mode, formatDuration(result.Duration))
	}

	cl.write(out)
}

// LogSummary renders the score summary. It is printed at every level below
// "error" so a quiet run still ends with its score.
func (cl *ConsoleLogger) LogSummary(s *summary.Summary) {
	if cl.writer == nil || s == nil || !cl.shouldLog("warn") {
		return
	}

	s.SetColor(cl.colorOutput)
	var buf bytes.Buffer
	buf.WriteString("\n")
	if err := s.Render(&buf); err != nil {
		return
	}
	cl.write(buf.String())
}

func (cl *ConsoleLogger) write(s string) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.writer.Write([]byte(s))
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a short human-readable string.
// Examples: "850ms", "5s", "1m30s"
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	}
}
