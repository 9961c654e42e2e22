// Package mcpserver exposes gavel reviews as MCP tools over stdio, so
// agent-capable editors can request reviews without shelling out to the CLI.
//
// Three tools are registered: gavel_review_files reviews a file or directory,
// gavel_review_diff reviews pending or ranged git changes, and gavel_history
// returns recorded review scores. Results are JSON on success and a plain
// error message with the error flag set on failure.
//
// The diff tool shells out to git in the process working directory, so the
// serving process must chdir into the project before calling [New].
package mcpserver
