// Package config loads and merges gavel configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (GAVEL_MODEL, GAVEL_FORMAT, GAVEL_FAIL_UNDER, etc.)
//  3. Config file ($XDG_CONFIG_HOME/gavel/config.json)
//  4. Built-in defaults
//
// A per-repository .gavel.yaml, loaded with [LoadProject] and merged with
// [ApplyProject], overlays the effective config for runs in that repository.
//
// API keys resolve through [Config.APIKey]: the persisted key first, then
// the provider's environment variable (OPENAI_API_KEY, GOOGLE_API_KEY).
package config
