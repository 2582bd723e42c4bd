package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/caserun/internal/models"
	"github.com/harrison/caserun/internal/summary"
)

func readRunLog(t *testing.T, fl *FileLogger) string {
	t.Helper()
	data, err := os.ReadFile(fl.Path())
	if err != nil {
		t.Fatalf("failed to read run log: %v", err)
	}
	return string(data)
}

// TestNewFileLogger verifies the log file, header and latest.log symlink.
func TestNewFileLogger(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")

	fl, err := NewFileLogger(logDir, "info", "run-123")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer fl.Close()

	if !strings.HasPrefix(filepath.Base(fl.Path()), "run-") || !strings.HasSuffix(fl.Path(), ".log") {
		t.Errorf("unexpected run log name %q", fl.Path())
	}

	target, err := os.Readlink(filepath.Join(logDir, "latest.log"))
	if err != nil {
		t.Fatalf("latest.log symlink missing: %v", err)
	}
	if target != filepath.Base(fl.Path()) {
		t.Errorf("latest.log -> %q, want %q", target, filepath.Base(fl.Path()))
	}

	content := readRunLog(t, fl)
	if !strings.Contains(content, "=== caserun Run Log ===") || !strings.Contains(content, "Run ID: run-123") {
		t.Errorf("missing header in %q", content)
	}
}

// TestFileLoggerReplacesSymlink checks a second run repoints latest.log.
func TestFileLoggerReplacesSymlink(t *testing.T) {
	logDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(logDir, "latest.log"), []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	fl, err := NewFileLogger(logDir, "info", "r")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer fl.Close()

	if _, err := os.Readlink(filepath.Join(logDir, "latest.log")); err != nil {
		t.Errorf("latest.log should be a symlink: %v", err)
	}
}

// TestFileLoggerCaseLifecycle logs a pass, a failure and the summary.
func TestFileLoggerCaseLifecycle(t *testing.T) {
	fl, err := NewFileLogger(t.TempDir(), "info", "r")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	fl.LogCaseStart(0, models.Case{Name: "first", Command: "echo", Args: models.ScalarArgs("hi")})
	fl.LogCaseResult(models.CaseResult{Case: models.Case{Name: "first"}, Passed: true})
	fl.LogCaseResult(models.CaseResult{
		Case:     models.Case{Name: "second"},
		Argv:     []string{"cat", `["x"]`},
		Reason:   models.ReasonMismatch,
		Expected: "want\n",
		Actual:   "",
	})
	fl.LogCaseResult(models.CaseResult{
		Case:   models.Case{Name: "third"},
		Reason: models.ReasonTimeout,
		Err:    errors.New("command timed out after 1s"),
	})

	s := summary.New()
	s.SetColor(true)
	s.RecordPass(1)
	s.RecordFail(1, "second")
	fl.LogSummary(s)

	if err := fl.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	content := readRunLog(t, fl)
	for _, want := range []string{
		`running first (case 0, command "echo", args hi)`,
		"OK first",
		"FAILED second (mismatch",
		`argv: ["cat" "[\"x\"]"]`,
		"    want\n",
		"    (empty)\n",
		"FAILED third (timeout",
		"error: command timed out after 1s",
		"Score Summary",
		"Finished at:",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("expected %q in run log:\n%s", want, content)
		}
	}
	if strings.Contains(content, "\x1b[") {
		t.Error("run log must not contain color escapes")
	}
}

// TestFileLoggerCloseTwice is safe and stops further writes.
func TestFileLoggerCloseTwice(t *testing.T) {
	fl, err := NewFileLogger(t.TempDir(), "info", "r")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	if err := fl.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := fl.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	fl.LogInfo("after close")
}

func TestIndent(t *testing.T) {
	if got := indent("a\nb\n"); got != "    a\n    b\n" {
		t.Errorf("indent() = %q", got)
	}
	if got := indent(""); got != "    (empty)\n" {
		t.Errorf("indent(\"\") = %q", got)
	}
}
