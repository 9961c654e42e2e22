// Package cli wires together the Cobra command tree for the gavel binary.
//
// It defines the root command and all subcommands (review, config, models,
// history, cache, hook, github, mcp, version), binds flags, assembles the
// review pipeline, and returns deterministic exit codes for CI gating.
package cli
