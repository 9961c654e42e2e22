package scan

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gavelhq/gavel/internal/review"
)

// maxFileBytes caps how much of a single file is read for review.
// Files larger than this are skipped rather than truncated.
const maxFileBytes = 512 * 1024

var skipDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	"dist":         true,
	"bin":          true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
	"testdata":     true,
}

// sourceExtensions maps reviewable file extensions to a language name.
var sourceExtensions = map[string]string{
	".go":     "go",
	".js":     "javascript",
	".jsx":    "javascript",
	".mjs":    "javascript",
	".cjs":    "javascript",
	".ts":     "typescript",
	".tsx":    "typescript",
	".py":     "python",
	".rb":     "ruby",
	".java":   "java",
	".kt":     "kotlin",
	".c":      "c",
	".h":      "c",
	".cpp":    "cpp",
	".cc":     "cpp",
	".hpp":    "cpp",
	".cs":     "csharp",
	".rs":     "rust",
	".php":    "php",
	".swift":  "swift",
	".scala":  "scala",
	".sh":     "bash",
	".bash":   "bash",
	".sql":    "sql",
	".tf":     "terraform",
	".proto":  "protobuf",
	".vue":    "vue",
	".svelte": "svelte",
}

// Options filters which files a directory scan picks up. Empty Include
// means everything; Exclude patterns always win over Include.
type Options struct {
	Include []string
	Exclude []string
}

// IsSupported reports whether the file extension is on the review allow-list.
func IsSupported(path string) bool {
	_, ok := sourceExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Language returns the language name for a file path, or "" if unknown.
func Language(path string) string {
	return sourceExtensions[strings.ToLower(filepath.Ext(path))]
}

// Dir walks root and returns reviewable files in lexical walk order.
// Paths in the result are relative to root.
func Dir(root string, opts Options) ([]review.SourceFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []review.SourceFile
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			if path != absRoot && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !IsSupported(rel) {
			return nil
		}
		if !included(rel, opts.Include) || excluded(rel, opts.Exclude) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > maxFileBytes {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if looksBinary(data) {
			return nil
		}

		files = append(files, review.SourceFile{
			Path:    rel,
			Content: string(data),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return files, nil
}

// File reads a single explicitly named file. The extension allow-list does
// not apply: naming a file directly overrides filtering.
func File(path string) (review.SourceFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return review.SourceFile{}, err
	}
	if info.IsDir() {
		return review.SourceFile{}, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxFileBytes {
		return review.SourceFile{}, fmt.Errorf("%s is too large to review (%d bytes)", path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return review.SourceFile{}, err
	}
	if looksBinary(data) {
		return review.SourceFile{}, fmt.Errorf("%s looks like a binary file", path)
	}
	return review.SourceFile{
		Path:    filepath.ToSlash(path),
		Content: string(data),
	}, nil
}

func included(rel string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if globMatch(p, rel) {
			return true
		}
	}
	return false
}

func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if globMatch(p, rel) {
			return true
		}
	}
	return false
}

// globMatch matches relPath against pattern using filepath.Match syntax,
// extended so a leading "**/" matches any directory depth, a trailing
// "/**" matches everything under a prefix, and "**/name/**" matches any
// path containing a segment named name.
func globMatch(pattern, relPath string) bool {
	if pattern == "**" || pattern == "**/*" {
		return true
	}
	if ok, err := filepath.Match(pattern, relPath); err == nil && ok {
		return true
	}
	if rest, found := strings.CutPrefix(pattern, "**/"); found {
		if mid, dirPattern := strings.CutSuffix(rest, "/**"); dirPattern {
			for _, seg := range strings.Split(relPath, "/") {
				if ok, err := filepath.Match(mid, seg); err == nil && ok {
					return true
				}
			}
		}
		if ok, err := filepath.Match(rest, filepath.Base(relPath)); err == nil && ok {
			return true
		}
		if ok, err := filepath.Match(rest, relPath); err == nil && ok {
			return true
		}
	}
	if prefix, found := strings.CutSuffix(pattern, "/**"); found {
		if relPath == prefix || strings.HasPrefix(relPath, prefix+"/") {
			return true
		}
	}
	return false
}

// looksBinary sniffs the first chunk of data for NUL bytes.
func looksBinary(data []byte) bool {
	const sniffLen = 8192
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	return bytes.IndexByte(data, 0) != -1
}
