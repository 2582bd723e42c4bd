package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for caserun.
// Running the root command with a case file runs the suite.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caserun [case-file]",
		Short: "Run command-line test cases and score their output",
		Long: `caserun reads a JSON list of test cases, runs each case's command,
captures its standard output and compares it with the expected answer.

Cases run one after another in file order. Each passing case earns its
score; the run ends with a score summary and the names of failing cases.

Comparison modes:
  exact   output must equal the answer byte for byte
  fuzzy   control characters are dropped from the output, then lines are
          compared one by one; any line containing "Ticks" on either side
          matches (default)

Configuration is loaded from .caserun/config.yaml if present.
CLI flags override configuration file settings.

Exit code: 0 if every case passed, 1 if any case failed, 2 on configuration errors

Examples:
  caserun cases.json
  caserun --mode exact cases.json
  caserun --timeout 10s --diff cases.json
  caserun --report out/run.json cases.json
  caserun validate cases.json`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runCommand,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addRunFlags(cmd)
	cmd.AddCommand(NewValidateCommand())

	return cmd
}
