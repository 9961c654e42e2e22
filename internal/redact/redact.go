package redact

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gavelhq/gavel/internal/review"
)

const placeholder = "[REDACTED]"

// secretPatterns are regex heuristics for common secret shapes.
var secretPatterns = []*regexp.Regexp{
	// api_key/apikey assignments with long hex or base64 values
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	// AWS secret access keys
	regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`),
	// secret/token/password assignments
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
	// Bearer tokens
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	// JWTs, three dot-joined base64 segments
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	// Private key blocks
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+)?PRIVATE KEY-----`),
	// GitHub tokens
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	// Slack tokens
	regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`),
	// Google API keys
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
	// Anthropic API keys
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	// OpenAI API keys
	regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
	// Long hex strings in key-like assignments
	regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`),
}

// Secrets masks anything matching the secret patterns with [REDACTED].
func Secrets(text string) string {
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllString(result, placeholder)
	}
	return result
}

// ShouldRedactPath checks if a file path matches any of the redaction
// path patterns.
func ShouldRedactPath(path string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		// Patterns like "**/.env" also match on the bare filename.
		cleanPattern := strings.TrimPrefix(pattern, "**/")
		if cleanPattern != pattern {
			base := filepath.Base(path)
			matched, err = filepath.Match(cleanPattern, base)
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}

// Content redacts secrets from content, or replaces it entirely when the
// file path matches a redaction pattern.
func Content(content, path string, redactPaths []string) string {
	if ShouldRedactPath(path, redactPaths) {
		return placeholder + " (file content redacted by path policy)\n"
	}
	return Secrets(content)
}

// Apply runs the redaction policy over review inputs and returns a new
// slice. Path-matched files lose their content and diff entirely; when
// secrets is true the remaining text is scanned pattern by pattern.
// Redaction happens before anything leaves the process, so cached
// payloads are covered too.
func Apply(files []review.SourceFile, secrets bool, redactPaths []string) []review.SourceFile {
	if !secrets && len(redactPaths) == 0 {
		return files
	}
	out := make([]review.SourceFile, len(files))
	for i, f := range files {
		if ShouldRedactPath(f.Path, redactPaths) {
			f.Content = placeholder + " (file content redacted by path policy)\n"
			if f.Diff != "" {
				f.Diff = placeholder + " (diff redacted by path policy)\n"
			}
		} else if secrets {
			f.Content = Secrets(f.Content)
			if f.Diff != "" {
				f.Diff = Secrets(f.Diff)
			}
		}
		out[i] = f
	}
	return out
}
