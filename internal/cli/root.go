package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gavelhq/gavel/internal/output"
)

const version = "0.1.0"

// Exit codes are part of the CLI contract so CI and git hooks can gate on them.
const (
	ExitSuccess      = 0
	ExitFindings     = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "gavel",
	Short: "LLM code review CLI",
	Long:  "Gavel sends source files or git diffs to an LLM backend and renders structured review findings with deterministic exit codes.",
}

// Run executes the CLI and reports the process exit code.
func Run() int {
	output.ToolVersion = version

	rootCmd.AddCommand(reviewCmd, configCmd, modelsCmd, historyCmd,
		cacheCmd, hookCmd, githubCmd, mcpCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// cobra has already printed the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode carries a non-zero status out of handlers that print their own errors.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print gavel version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "gavel version %s\n", version)
	},
}
