// Package cache provides a file-based cache for model responses.
//
// Entries are keyed by a SHA-256 hash of provider, model, and full prompt
// material, so any change to the prompt text is a miss. Each entry stores
// the raw response string with a creation timestamp and a TTL in seconds;
// expired entries are removed on read.
//
// [Wrap] decorates a [providers.Client] so cache hits never reach the
// network. The default cache directory is $XDG_CACHE_HOME/gavel (or the
// OS-appropriate equivalent). Payloads reaching the cache have already
// been through secret redaction.
package cache
