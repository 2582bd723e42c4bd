package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/caserun/internal/config"
	"github.com/harrison/caserun/internal/display"
	"github.com/harrison/caserun/internal/executor"
	"github.com/harrison/caserun/internal/exitcodes"
	"github.com/harrison/caserun/internal/logger"
	"github.com/harrison/caserun/internal/parser"
	"github.com/harrison/caserun/internal/report"
	"github.com/spf13/cobra"
)

// NoCaseFileMessage is printed when caserun is started without a case file.
const NoCaseFileMessage = "no test case file"

// addRunFlags registers the flags that configure a run.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .caserun/config.yaml)")
	cmd.Flags().String("mode", "", "Comparison mode: exact or fuzzy (default from config, else fuzzy)")
	cmd.Flags().String("timeout", "", "Per-case timeout (e.g., 10s, 2m); 0 disables")
	cmd.Flags().Bool("diff", false, "Append a line-level diff to mismatch reports")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for per-run log files (disabled when empty)")
	cmd.Flags().String("report", "", "Write a JSON run report to this path")
	cmd.Flags().String("dir", "", "Directory commands run in and relative answer files resolve against")
	cmd.Flags().Bool("strict", false, "Treat a missing case file argument as an error")
	cmd.Flags().Bool("spread-single-args", false, "Spread one-element args lists instead of passing the list as one argument")
}

// loadConfigFile loads the file named by --config, or .caserun/config.yaml
// in the working directory when the flag is empty.
func loadConfigFile(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfigFromDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// loadRunConfig loads the config file and applies flag overrides.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfigFile(cmd)
	if err != nil {
		return nil, err
	}

	var flags config.Flags
	if cmd.Flags().Changed("mode") {
		v, _ := cmd.Flags().GetString("mode")
		flags.Mode = &v
	}
	if cmd.Flags().Changed("timeout") {
		raw, _ := cmd.Flags().GetString("timeout")
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", raw, err)
		}
		flags.Timeout = &timeout
	}
	if cmd.Flags().Changed("diff") {
		v, _ := cmd.Flags().GetBool("diff")
		flags.ShowDiff = &v
	}
	if cmd.Flags().Changed("no-color") {
		if v, _ := cmd.Flags().GetBool("no-color"); v {
			never := string(display.ColorNever)
			flags.Color = &never
		}
	}
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		flags.LogLevel = &v
	}
	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		flags.LogDir = &v
	}
	if cmd.Flags().Changed("report") {
		v, _ := cmd.Flags().GetString("report")
		flags.ReportPath = &v
	}
	if cmd.Flags().Changed("dir") {
		v, _ := cmd.Flags().GetString("dir")
		flags.BaseDir = &v
	}
	if cmd.Flags().Changed("strict") {
		v, _ := cmd.Flags().GetBool("strict")
		flags.Strict = &v
	}
	if cmd.Flags().Changed("spread-single-args") {
		v, _ := cmd.Flags().GetBool("spread-single-args")
		flags.SpreadArgs = &v
	}

	cfg.MergeWithFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// strictWithoutCaseFile decides the exit status of a run with no case file.
// --strict wins; otherwise the config file is consulted, and an unreadable
// config file falls back to the non-strict notice.
func strictWithoutCaseFile(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("strict") {
		strict, _ := cmd.Flags().GetBool("strict")
		return strict
	}
	cfg, err := loadConfigFile(cmd)
	if err != nil {
		return false
	}
	return cfg.Strict
}

// runCommand implements the root command: run one case file.
func runCommand(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		fmt.Fprintln(out, NoCaseFileMessage)
		if strictWithoutCaseFile(cmd) {
			return exitcodes.New(exitcodes.ConfigErr, fmt.Errorf("%s", NoCaseFileMessage))
		}
		return nil
	}

	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return exitcodes.New(exitcodes.ConfigErr, err)
	}

	suite, err := parser.ParseFile(args[0])
	if err != nil {
		return exitcodes.New(exitcodes.ConfigErr, err)
	}

	mode, err := executor.ParseMode(cfg.Mode)
	if err != nil {
		return exitcodes.New(exitcodes.ConfigErr, err)
	}

	colorOutput := display.UseColor(out, display.ColorMode(cfg.Color))
	runID := uuid.NewString()

	consoleLog := logger.NewConsoleLogger(out, cfg.LogLevel, colorOutput)
	loggers := []executor.Logger{consoleLog}

	var fileLog *logger.FileLogger
	if cfg.LogDir != "" {
		fileLog, err = logger.NewFileLogger(cfg.LogDir, cfg.LogLevel, runID)
		if err != nil {
			return exitcodes.New(exitcodes.ConfigErr, fmt.Errorf("failed to create file logger: %w", err))
		}
		defer fileLog.Close()
		loggers = append(loggers, fileLog)
	}

	processRunner := executor.NewProcessRunner(cfg.BaseDir)
	processRunner.Stderr = cmd.ErrOrStderr()

	runner := executor.NewRunner(
		processRunner,
		logger.NewMultiLogger(loggers...),
		executor.NewDiffReporter(out, colorOutput, cfg.ShowDiff),
		executor.RunnerConfig{
			RunID:     runID,
			Mode:      mode,
			Timeout:   cfg.Timeout,
			StripANSI: cfg.StripANSI,
			Assemble:  executor.AssembleOptions{SpreadSingleElement: cfg.SpreadSingleElementArgs},
			BaseDir:   cfg.BaseDir,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consoleLog.LogDebug(fmt.Sprintf("run %s: %d case(s) from %s, mode %s", runID, len(suite.Cases), suite.Path, mode))

	result, runErr := runner.Run(ctx, suite)

	if cfg.ReportPath != "" && result != nil {
		if err := report.Write(cfg.ReportPath, report.FromRun(result)); err != nil {
			consoleLog.LogError(err.Error())
			if fileLog != nil {
				fileLog.LogError(err.Error())
			}
		} else {
			consoleLog.LogInfo(fmt.Sprintf("Report written to: %s", cfg.ReportPath))
			if fileLog != nil {
				fileLog.LogInfo(fmt.Sprintf("Report written to: %s", cfg.ReportPath))
			}
		}
	}
	if fileLog != nil {
		if runErr != nil {
			fileLog.LogError(fmt.Sprintf("run aborted: %v", runErr))
		}
		consoleLog.LogInfo(fmt.Sprintf("Log written to: %s", fileLog.Path()))
	}

	if runErr != nil {
		return exitcodes.New(exitcodes.ConfigErr, runErr)
	}
	if !result.Summary.AllPassed() {
		return exitcodes.New(exitcodes.CaseFailure, fmt.Errorf("%d case(s) failed", len(result.Summary.Failed())))
	}
	return nil
}
