package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/harrison/caserun/internal/cmd"
	"github.com/harrison/caserun/internal/exitcodes"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitcodes.ExitError
		if !errors.As(err, &exitErr) || exitErr.Code != exitcodes.CaseFailure {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitcodes.FromError(err))
	}
}
