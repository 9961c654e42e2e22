package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gavelhq/gavel/internal/output"
)

// New creates an MCP server with all gavel review tools registered.
// projectPath is the root of the project the tools operate on; git-backed
// tools additionally require the process working directory to be inside
// that repository, which the serve command arranges before calling this.
func New(projectPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"gavel",
		output.ToolVersion,
		server.WithToolCapabilities(true),
	)

	registerTools(s, projectPath)

	return s
}
