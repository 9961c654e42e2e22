// Package history persists per-project review scores in an append-only
// JSON file under .gavel/ at the project root. Only scored runs are
// recorded; single-file reviews carry no score and are skipped.
package history
