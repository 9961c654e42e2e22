package cli

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/gavelhq/gavel/internal/mcpserver"
)

var flagMCPPath string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve gavel review tools over MCP stdio",
	Long:  "Start an MCP server on stdio so agent-capable editors can request reviews of the project at --path.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagMCPPath == "" {
			flagMCPPath = "."
		}
		// The diff tool shells out to git in the working directory, so serve
		// from inside the project.
		if err := os.Chdir(flagMCPPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		s := mcpserver.New(".")
		if err := server.ServeStdio(s); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
		}
		return nil
	},
}

func init() {
	mcpCmd.Flags().StringVar(&flagMCPPath, "path", "", "Project path (defaults to current working directory)")
}
