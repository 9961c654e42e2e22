// Package output renders review results for display or machine consumption.
//
// Four formats are supported:
//   - text: styled terminal report with syntax-highlighted fix snippets (default)
//   - json: the full structured result
//   - markdown: PR-comment-friendly, collapsible per-file sections
//   - sarif: SARIF v2.1.0 for upload to code-scanning backends
//
// Use [GetWriter] to obtain a [Writer] for a format string, then call its
// Write method with an [io.Writer] and a [*review.ReviewResult].
// [WriteReport] handles destination selection (file or stdout).
package output
