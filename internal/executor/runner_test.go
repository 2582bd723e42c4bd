package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrison/caserun/internal/models"
	"github.com/harrison/caserun/internal/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FakeCommandRunner is a test double for CommandRunner keyed by the joined argv.
type FakeCommandRunner struct {
	outputs  map[string]string
	errors   map[string]error
	delays   map[string]time.Duration
	commands [][]string
}

// NewFakeCommandRunner creates a new FakeCommandRunner
func NewFakeCommandRunner() *FakeCommandRunner {
	return &FakeCommandRunner{
		outputs: make(map[string]string),
		errors:  make(map[string]error),
		delays:  make(map[string]time.Duration),
	}
}

func argvKey(argv []string) string { return strings.Join(argv, " ") }

// SetOutput sets the stdout for an argument vector
func (f *FakeCommandRunner) SetOutput(argv []string, output string) {
	f.outputs[argvKey(argv)] = output
}

// SetError sets the error for an argument vector
func (f *FakeCommandRunner) SetError(argv []string, err error) {
	f.errors[argvKey(argv)] = err
}

// SetDelay makes an argument vector block until the delay passes or ctx ends
func (f *FakeCommandRunner) SetDelay(argv []string, d time.Duration) {
	f.delays[argvKey(argv)] = d
}

// Run implements CommandRunner
func (f *FakeCommandRunner) Run(ctx context.Context, argv []string) (string, error) {
	f.commands = append(f.commands, argv)
	k := argvKey(argv)

	if d, ok := f.delays[k]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err, ok := f.errors[k]; ok {
		return f.outputs[k], err
	}
	return f.outputs[k], nil
}

// recordingLogger captures logger calls in order.
type recordingLogger struct {
	events  []string
	results []models.CaseResult
	summary *summary.Summary
}

func (l *recordingLogger) LogCaseStart(index int, c models.Case) {
	l.events = append(l.events, "start:"+c.Name)
}

func (l *recordingLogger) LogCaseResult(r models.CaseResult) {
	l.events = append(l.events, r.Status()+":"+r.Case.Name)
	l.results = append(l.results, r)
}

func (l *recordingLogger) LogSummary(s *summary.Summary) {
	l.events = append(l.events, "summary")
	l.summary = s
}

func newTestRunner(cmds CommandRunner, log Logger, diff *DiffReporter, mode Mode) *Runner {
	return NewRunner(cmds, log, diff, RunnerConfig{RunID: "test-run", Mode: mode})
}

// === Scenarios ===

func TestRunner_EchoExactPass(t *testing.T) {
	cmds := NewFakeCommandRunner()
	cmds.SetOutput([]string{"echo", "hi"}, "hi\n")

	suite := &models.Suite{Cases: []models.Case{
		{Name: "echo", Command: "echo", Args: models.ScalarArgs("hi"), Answer: "hi\n", Score: 2},
	}}

	log := &recordingLogger{}
	res, err := newTestRunner(cmds, log, nil, ModeExact).Run(context.Background(), suite)
	require.NoError(t, err)

	assert.Equal(t, 2.0, res.Summary.Achieved())
	assert.Equal(t, 2.0, res.Summary.Possible())
	assert.True(t, res.Summary.AllPassed())
	assert.Equal(t, []string{"start:echo", "OK:echo", "summary"}, log.events)
}

func TestRunner_TicksLineFuzzyPass(t *testing.T) {
	cmds := NewFakeCommandRunner()
	cmds.SetOutput([]string{"bench", "run"}, "Elapsed Ticks: 42\nDone\n")

	suite := &models.Suite{Cases: []models.Case{
		{Name: "ticks", Command: "bench", Args: models.ScalarArgs("run"), Answer: "Elapsed Ticks: 99\nDone\n", Score: 1},
	}}

	res, err := newTestRunner(cmds, nil, nil, ModeFuzzy).Run(context.Background(), suite)
	require.NoError(t, err)
	assert.True(t, res.Results[0].Passed)
}

func TestRunner_LineCountMismatchFails(t *testing.T) {
	cmds := NewFakeCommandRunner()
	cmds.SetOutput([]string{"gen", "3"}, "a\nb\nc")

	suite := &models.Suite{Cases: []models.Case{
		{Name: "lines", Command: "gen", Args: models.ScalarArgs("3"), Answer: "a\nb", Score: 1},
	}}

	var diff bytes.Buffer
	res, err := newTestRunner(cmds, nil, NewDiffReporter(&diff, false, false), ModeFuzzy).Run(context.Background(), suite)
	require.NoError(t, err)

	assert.False(t, res.Results[0].Passed)
	assert.Equal(t, models.ReasonMismatch, res.Results[0].Reason)
	assert.Contains(t, diff.String(), "Expected:\na\nb\n")
	assert.Contains(t, diff.String(), "Actual:\na\nb\nc\n")
}

func TestRunner_SingleElementArgsQuirk(t *testing.T) {
	cmds := NewFakeCommandRunner()

	suite := &models.Suite{Cases: []models.Case{
		{Name: "quirk", Command: "cat", Args: models.SequenceArgs("x"), Answer: "", Score: 1},
	}}

	res, err := newTestRunner(cmds, nil, nil, ModeExact).Run(context.Background(), suite)
	require.NoError(t, err)

	require.Len(t, cmds.commands, 1)
	assert.Equal(t, []string{"cat", `["x"]`}, cmds.commands[0])
	assert.Equal(t, []string{"cat", `["x"]`}, res.Results[0].Argv)
}

func TestRunner_MixedSuiteScores(t *testing.T) {
	cmds := NewFakeCommandRunner()
	cmds.SetOutput([]string{"good", "a"}, "yes")
	cmds.SetOutput([]string{"bad", "a"}, "no")

	suite := &models.Suite{Cases: []models.Case{
		{Name: "pass", Command: "good", Args: models.ScalarArgs("a"), Answer: "yes", Score: 5},
		{Name: "fail", Command: "bad", Args: models.ScalarArgs("a"), Answer: "yes", Score: 3},
	}}

	log := &recordingLogger{}
	res, err := newTestRunner(cmds, log, nil, ModeExact).Run(context.Background(), suite)
	require.NoError(t, err)

	assert.Equal(t, 5.0, res.Summary.Achieved())
	assert.Equal(t, 8.0, res.Summary.Possible())
	assert.Equal(t, []string{"fail"}, res.Summary.Failed())
	assert.Equal(t, []string{"start:pass", "OK:pass", "start:fail", "FAILED:fail", "summary"}, log.events)
	assert.Same(t, res.Summary, log.summary)
}

func TestRunner_FuzzyMismatchReportsLines(t *testing.T) {
	cmds := NewFakeCommandRunner()
	cmds.SetOutput([]string{"p", "x"}, "a\nX\nTicks 1\nY")

	suite := &models.Suite{Cases: []models.Case{
		{Name: "lines", Command: "p", Args: models.ScalarArgs("x"), Answer: "a\nb\nTicks 2\nd", Score: 1},
	}}

	var diff bytes.Buffer
	res, err := newTestRunner(cmds, nil, NewDiffReporter(&diff, false, false), ModeFuzzy).Run(context.Background(), suite)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3}, res.Results[0].MismatchedLines)
	assert.Contains(t, diff.String(), "Mismatched lines: 2, 4")
}

func TestRunner_ExactMismatchHasNoLineIndices(t *testing.T) {
	cmds := NewFakeCommandRunner()
	cmds.SetOutput([]string{"p", "x"}, "a\nX")

	suite := &models.Suite{Cases: []models.Case{
		{Name: "exact", Command: "p", Args: models.ScalarArgs("x"), Answer: "a\nb", Score: 1},
	}}

	var diff bytes.Buffer
	res, err := newTestRunner(cmds, nil, NewDiffReporter(&diff, false, false), ModeExact).Run(context.Background(), suite)
	require.NoError(t, err)

	assert.Nil(t, res.Results[0].MismatchedLines)
	assert.NotContains(t, diff.String(), "Mismatched lines")
}

// === Failure kinds ===

func TestRunner_LaunchFailureContinues(t *testing.T) {
	cmds := NewFakeCommandRunner()
	launchErr := &LaunchError{Program: "missing", Kind: LaunchNotFound, Err: errors.New("not found")}
	cmds.SetError([]string{"missing", "x"}, launchErr)
	cmds.SetOutput([]string{"ok", "x"}, "fine")

	suite := &models.Suite{Cases: []models.Case{
		{Name: "broken", Command: "missing", Args: models.ScalarArgs("x"), Answer: "fine", Score: 4},
		{Name: "next", Command: "ok", Args: models.ScalarArgs("x"), Answer: "fine", Score: 1},
	}}

	var diff bytes.Buffer
	res, err := newTestRunner(cmds, nil, NewDiffReporter(&diff, false, false), ModeExact).Run(context.Background(), suite)
	require.NoError(t, err)

	require.Len(t, res.Results, 2)
	assert.Equal(t, models.ReasonLaunch, res.Results[0].Reason)
	assert.ErrorIs(t, res.Results[0].Err, launchErr)
	assert.True(t, res.Results[1].Passed)
	assert.Equal(t, 1.0, res.Summary.Achieved())
	assert.Equal(t, 5.0, res.Summary.Possible())
	assert.Empty(t, diff.String(), "launch failures print no diff block")
}

func TestRunner_TimeoutContinues(t *testing.T) {
	cmds := NewFakeCommandRunner()
	cmds.SetDelay([]string{"slow", "x"}, 5*time.Second)
	cmds.SetOutput([]string{"fast", "x"}, "ok")

	suite := &models.Suite{Cases: []models.Case{
		{Name: "slow", Command: "slow", Args: models.ScalarArgs("x"), Answer: "ok", Score: 2},
		{Name: "fast", Command: "fast", Args: models.ScalarArgs("x"), Answer: "ok", Score: 1},
	}}

	r := NewRunner(cmds, nil, nil, RunnerConfig{Mode: ModeExact, Timeout: 50 * time.Millisecond})
	res, err := r.Run(context.Background(), suite)
	require.NoError(t, err)

	assert.Equal(t, models.ReasonTimeout, res.Results[0].Reason)
	assert.ErrorIs(t, res.Results[0].Err, ErrTimeout)
	assert.True(t, res.Results[1].Passed)
	assert.Equal(t, []string{"slow"}, res.Summary.Failed())
}

func TestRunner_PerCaseTimeoutOverride(t *testing.T) {
	cmds := NewFakeCommandRunner()
	cmds.SetDelay([]string{"slow", "x"}, 5*time.Second)

	suite := &models.Suite{Cases: []models.Case{
		{Name: "slow", Command: "slow", Args: models.ScalarArgs("x"), Answer: "", Score: 1, Timeout: "20ms"},
	}}

	res, err := newTestRunner(cmds, nil, nil, ModeExact).Run(context.Background(), suite)
	require.NoError(t, err)
	assert.Equal(t, models.ReasonTimeout, res.Results[0].Reason)
}

func TestRunner_PerCaseModeOverride(t *testing.T) {
	cmds := NewFakeCommandRunner()
	cmds.SetOutput([]string{"p", "x"}, "Ticks 1\r\n")

	suite := &models.Suite{Cases: []models.Case{
		{Name: "fuzzy-case", Command: "p", Args: models.ScalarArgs("x"), Answer: "Ticks 2\n", Score: 1, Mode: "fuzzy"},
	}}

	res, err := newTestRunner(cmds, nil, nil, ModeExact).Run(context.Background(), suite)
	require.NoError(t, err)
	assert.True(t, res.Results[0].Passed)
	assert.Equal(t, "fuzzy", res.Results[0].Mode)
}

// === Answer files and configuration errors ===

func TestRunner_AnswerFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "answer.txt"), []byte("from file\n"), 0644))

	cmds := NewFakeCommandRunner()
	cmds.SetOutput([]string{"prog", "x"}, "from file\n")

	suite := &models.Suite{Cases: []models.Case{
		{Name: "file", Command: "prog", Args: models.ScalarArgs("x"), Answer: "answer.txt", IsFile: true, Score: 1},
	}}

	r := NewRunner(cmds, nil, nil, RunnerConfig{Mode: ModeExact, BaseDir: dir})
	res, err := r.Run(context.Background(), suite)
	require.NoError(t, err)
	assert.True(t, res.Results[0].Passed)
	assert.Equal(t, "from file\n", res.Results[0].Expected)
}

func TestRunner_MissingAnswerFileIsFatal(t *testing.T) {
	cmds := NewFakeCommandRunner()

	suite := &models.Suite{Path: "cases.json", Cases: []models.Case{
		{Name: "first", Command: "prog", Args: models.ScalarArgs("x"), Answer: "", Score: 1},
		{Name: "second", Command: "prog", Args: models.ScalarArgs("x"), Answer: filepath.Join(t.TempDir(), "nope.txt"), IsFile: true, Score: 1},
		{Name: "third", Command: "prog", Args: models.ScalarArgs("x"), Answer: "", Score: 1},
	}}

	log := &recordingLogger{}
	res, err := newTestRunner(cmds, log, nil, ModeExact).Run(context.Background(), suite)
	require.Error(t, err)

	var cfgErr *models.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, 1, cfgErr.Index)
	assert.Equal(t, "answer", cfgErr.Field)
	assert.Equal(t, "cases.json", cfgErr.Path)

	assert.Len(t, res.Results, 1, "run stops at the misconfigured case")
	assert.NotContains(t, log.events, "summary")
}

func TestRunner_ContextCancelledStopsRun(t *testing.T) {
	cmds := NewFakeCommandRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	suite := &models.Suite{Cases: []models.Case{
		{Name: "a", Command: "a", Args: models.ScalarArgs("x"), Score: 1},
	}}

	res, err := newTestRunner(cmds, nil, nil, ModeExact).Run(ctx, suite)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Results)
	assert.Empty(t, cmds.commands)
}

// === Properties ===

func TestRunner_PossibleEqualsSumOfScores(t *testing.T) {
	cmds := NewFakeCommandRunner()
	cmds.SetOutput([]string{"p", "1"}, "ok")

	suite := &models.Suite{}
	for i, score := range []float64{1, 2.5, 0, 7} {
		answer := "ok"
		if i%2 == 1 {
			answer = "nope"
		}
		suite.Cases = append(suite.Cases, models.Case{Name: "c", Command: "p", Args: models.ScalarArgs("1"), Answer: answer, Score: score})
	}

	res, err := newTestRunner(cmds, nil, nil, ModeExact).Run(context.Background(), suite)
	require.NoError(t, err)

	assert.Equal(t, suite.TotalScore(), res.Summary.Possible())
	assert.LessOrEqual(t, res.Summary.Achieved(), res.Summary.Possible())
	assert.Equal(t, 1.0, res.Summary.Achieved())
}

func TestRunner_Idempotent(t *testing.T) {
	cmds := NewFakeCommandRunner()
	cmds.SetOutput([]string{"p", "a"}, "A\n")
	cmds.SetOutput([]string{"p", "b"}, "wrong\n")

	suite := &models.Suite{Cases: []models.Case{
		{Name: "a", Command: "p", Args: models.ScalarArgs("a"), Answer: "A\n", Score: 1},
		{Name: "b", Command: "p", Args: models.ScalarArgs("b"), Answer: "B\n", Score: 2},
	}}

	render := func() string {
		res, err := newTestRunner(cmds, nil, nil, ModeFuzzy).Run(context.Background(), suite)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, res.Summary.Render(&buf))
		return buf.String()
	}

	assert.Equal(t, render(), render())
}

func TestNewRunner_Defaults(t *testing.T) {
	r := NewRunner(NewFakeCommandRunner(), nil, nil, RunnerConfig{})
	assert.Equal(t, ModeFuzzy, r.cfg.Mode)
	assert.NotEmpty(t, r.cfg.RunID)
}
