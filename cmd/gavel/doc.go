// Gavel is a local-first CLI for reviewing code with LLM providers.
//
// It reviews directories, single files, and git diffs, emitting structured
// findings with deterministic exit codes suitable for CI gating and git
// hooks.
//
// Usage:
//
//	gavel review dir [path]           # review all reviewable files under a directory
//	gavel review file <path>          # review one file in depth
//	gavel review diff                 # review unstaged working tree changes
//	gavel review diff --staged        # review staged changes
//	gavel review diff --commit <sha>  # review a specific commit
//	gavel review diff --range origin/main..HEAD  # review a revision range
//	gavel github <pr-number>          # review a GitHub pull request
//	gavel mcp                         # serve reviews over the Model Context Protocol
//
// See https://github.com/gavelhq/gavel for full documentation.
package main
