package logger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/caserun/internal/models"
	"github.com/harrison/caserun/internal/summary"
)

// FileLogger writes a plain-text log of one run to
// <logDir>/run-YYYYMMDD-HHMMSS.log and points latest.log at it.
// Output captured from failing cases is included in full.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger in logDir, creating the directory if needed.
// The run ID is written into the log header.
func NewFileLogger(logDir, logLevel, runID string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	ts := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", ts))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== caserun Run Log ===\n")
	fl.writeRunLog(fmt.Sprintf("Run ID: %s\n", runID))
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return fl, nil
}

// Path returns the path of the run log file.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogCaseStart records the start of a case.
func (fl *FileLogger) LogCaseStart(index int, c models.Case) {
	if !fl.shouldLog("info") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] running %s (case %d, command %q, args %s)\n",
		timestamp(), c.Name, index, c.Command, c.Args.Raw()))
}

// LogCaseResult records a case verdict. Failures carry the expected and
// actual output so the log can be read without rerunning the suite.
func (fl *FileLogger) LogCaseResult(result models.CaseResult) {
	if !fl.shouldLog("info") {
		return
	}

	var sb strings.Builder
	ts := timestamp()
	if result.Passed {
		sb.WriteString(fmt.Sprintf("[%s] OK %s (%s)\n", ts, result.Case.Name, formatDuration(result.Duration)))
	} else {
		sb.WriteString(fmt.Sprintf("[%s] FAILED %s (%s, %s)\n", ts, result.Case.Name, result.Reason, formatDuration(result.Duration)))
		if result.Err != nil {
			sb.WriteString(fmt.Sprintf("  error: %v\n", result.Err))
		}
		sb.WriteString(fmt.Sprintf("  argv: %q\n", result.Argv))
		sb.WriteString("  --- expected ---\n")
		sb.WriteString(indent(result.Expected))
		sb.WriteString("  --- actual ---\n")
		sb.WriteString(indent(result.Actual))
	}
	fl.writeRunLog(sb.String())
}

// LogSummary writes the final score table.
func (fl *FileLogger) LogSummary(s *summary.Summary) {
	if s == nil {
		return
	}
	s.SetColor(false)
	var buf bytes.Buffer
	buf.WriteString("\n")
	if err := s.Render(&buf); err != nil {
		fl.LogError(fmt.Sprintf("failed to render summary: %v", err))
		return
	}
	fl.writeRunLog(buf.String())
}

// Close closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog == nil {
		return nil
	}
	fl.runLog.WriteString(fmt.Sprintf("\nFinished at: %s\n", time.Now().Format(time.RFC3339)))
	err := fl.runLog.Close()
	fl.runLog = nil
	return err
}

func (fl *FileLogger) writeRunLog(s string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog == nil {
		return
	}
	fl.runLog.WriteString(s)
}

func indent(s string) string {
	if s == "" {
		return "    (empty)\n"
	}
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString("    ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}
