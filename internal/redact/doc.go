// Package redact removes secrets from review inputs before they are sent
// to any model provider.
//
// Detection uses regex heuristics covering common secret shapes: API key
// assignments, AWS access key IDs and secret keys, bearer tokens, JWTs,
// private key blocks, and provider tokens (OpenAI, Google, Anthropic,
// GitHub, Slack).
//
// Path-based redaction is also supported: files whose paths match
// configured glob patterns have their entire content replaced with
// [REDACTED] rather than being scanned line by line. [Apply] runs the
// whole policy over a set of review inputs.
package redact
