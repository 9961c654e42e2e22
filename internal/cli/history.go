package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gavelhq/gavel/internal/history"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history [path]",
	Short: "Show recorded review scores for a project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		entries, err := history.New().Load(root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stdout, "No review history recorded.")
			return nil
		}

		delta, hasDelta := history.Delta(entries)

		if flagHistoryLimit > 0 && flagHistoryLimit < len(entries) {
			entries = entries[len(entries)-flagHistoryLimit:]
		}

		fmt.Fprintf(os.Stdout, "%-20s  %-11s  %-24s  %5s  %8s  %7s  %5s\n",
			"TIMESTAMP", "MODE", "MODEL", "FILES", "FINDINGS", "DANGERS", "SCORE")
		for _, e := range entries {
			fmt.Fprintf(os.Stdout, "%-20s  %-11s  %-24s  %5d  %8d  %7d  %5d\n",
				e.Timestamp, e.Mode, e.Model, e.Files, e.Findings, e.Dangers, e.Score)
		}

		if hasDelta {
			fmt.Fprintf(os.Stdout, "\nTrend: %+d since previous review\n", delta)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 0, "Show only the most recent N entries")
}
