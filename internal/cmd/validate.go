package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/harrison/caserun/internal/executor"
	"github.com/harrison/caserun/internal/exitcodes"
	"github.com/harrison/caserun/internal/parser"
	"github.com/harrison/caserun/internal/summary"
	"github.com/spf13/cobra"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <case-file>",
		Short: "Validate a case file without running it",
		Long: `Parse and validate a case file, checking that:
  - the file is a JSON array of case objects
  - every case has case_name, command, args, answer, isfile and score
  - optional mode and timeout overrides are well formed

Prints each case's argument vector, assembled with the same
spread_single_element_args setting a run would use, and the total
possible score.

Exit code: 0 if valid, 2 if errors found`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigFile(cmd)
			if err != nil {
				return exitcodes.New(exitcodes.ConfigErr, err)
			}
			spread := cfg.SpreadSingleElementArgs
			if cmd.Flags().Changed("spread-single-args") {
				spread, _ = cmd.Flags().GetBool("spread-single-args")
			}
			if err := validateCaseFile(args[0], spread, cmd.OutOrStdout()); err != nil {
				return exitcodes.New(exitcodes.ConfigErr, err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .caserun/config.yaml)")
	cmd.Flags().Bool("spread-single-args", false, "Show argument vectors with one-element args lists spread (default from config)")

	return cmd
}

// validateCaseFile loads path and prints what a run would execute.
func validateCaseFile(path string, spread bool, output io.Writer) error {
	suite, err := parser.ParseFile(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Case file %s is valid\n", path)
	fmt.Fprintf(output, "  Cases: %d\n", len(suite.Cases))
	fmt.Fprintf(output, "  Possible score: %s\n", summary.FormatScore(suite.TotalScore()))

	opts := executor.AssembleOptions{SpreadSingleElement: spread}
	for i, c := range suite.Cases {
		argv := executor.AssembleCommand(c, opts)
		fmt.Fprintf(output, "  %d. %s: %s\n", i+1, c.Name, strings.Join(quoteAll(argv), " "))
	}

	return nil
}

func quoteAll(argv []string) []string {
	out := make([]string, len(argv))
	for i, a := range argv {
		out[i] = fmt.Sprintf("%q", a)
	}
	return out
}
