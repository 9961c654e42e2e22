package scan_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gavelhq/gavel/internal/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func TestDir_CollectsSupportedFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go":       "package main\n",
		"lib/util.py":   "def f(): pass\n",
		"web/app.ts":    "export {}\n",
		"README.md":     "# readme\n",
		"assets/x.png":  "not source",
		"Makefile":      "all:\n",
		"lib/query.sql": "select 1;\n",
	})

	files, err := scan.Dir(root, scan.Options{})
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Contains(t, paths, "main.go")
	assert.Contains(t, paths, "lib/util.py")
	assert.Contains(t, paths, "web/app.ts")
	assert.Contains(t, paths, "lib/query.sql")
	assert.NotContains(t, paths, "README.md")
	assert.NotContains(t, paths, "assets/x.png")
	assert.NotContains(t, paths, "Makefile")
}

func TestDir_OrderIsDeterministic(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.go":     "package b\n",
		"a.go":     "package a\n",
		"sub/c.go": "package c\n",
	})

	files, err := scan.Dir(root, scan.Options{})
	require.NoError(t, err)
	require.Len(t, files, 3)

	// WalkDir is lexical, so order is stable across runs.
	assert.Equal(t, "a.go", files[0].Path)
	assert.Equal(t, "b.go", files[1].Path)
	assert.Equal(t, "sub/c.go", files[2].Path)
}

func TestDir_SkipsDefaultDirs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go":                "package main\n",
		"vendor/dep/dep.go":      "package dep\n",
		"node_modules/x/x.js":    "module.exports = {}\n",
		".git/hooks/pre-push.sh": "#!/bin/sh\n",
		"testdata/fixture.go":    "package fixture\n",
	})

	files, err := scan.Dir(root, scan.Options{})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.go", files[0].Path)
}

func TestDir_ExcludePatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go":          "package main\n",
		"gen/api.gen.go":   "package gen\n",
		"internal/util.go": "package util\n",
	})

	files, err := scan.Dir(root, scan.Options{
		Exclude: []string{"**/*.gen.go", "internal/**"},
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.go", files[0].Path)
}

func TestDir_IncludePatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go":    "package main\n",
		"web/app.ts": "export {}\n",
	})

	files, err := scan.Dir(root, scan.Options{
		Include: []string{"**/*.go"},
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.go", files[0].Path)
}

func TestDir_SkipsBinaryContent(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go": "package main\n",
	})
	bin := append([]byte("#!/bin/sh\n"), 0x00, 0x01, 0x02)
	require.NoError(t, os.WriteFile(filepath.Join(root, "tool.sh"), bin, 0o755))

	files, err := scan.Dir(root, scan.Options{})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.go", files[0].Path)
}

func TestDir_ReadsContent(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go": "package main\n\nfunc main() {}\n",
	})

	files, err := scan.Dir(root, scan.Options{})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "package main\n\nfunc main() {}\n", files[0].Content)
	assert.Empty(t, files[0].Diff)
}

func TestFile_ReadsExplicitPath(t *testing.T) {
	root := writeTree(t, map[string]string{
		"notes.txt": "anything goes\n",
	})

	// Explicit paths bypass the extension allow-list.
	f, err := scan.File(filepath.Join(root, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "anything goes\n", f.Content)
}

func TestFile_RejectsDirectory(t *testing.T) {
	_, err := scan.File(t.TempDir())
	assert.Error(t, err)
}

func TestFile_RejectsMissing(t *testing.T) {
	_, err := scan.File(filepath.Join(t.TempDir(), "absent.go"))
	assert.Error(t, err)
}

func TestIsSupported(t *testing.T) {
	assert.True(t, scan.IsSupported("a/b/c.go"))
	assert.True(t, scan.IsSupported("x.TS"))
	assert.False(t, scan.IsSupported("image.png"))
	assert.False(t, scan.IsSupported("LICENSE"))
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, "go", scan.Language("main.go"))
	assert.Equal(t, "typescript", scan.Language("app.tsx"))
	assert.Equal(t, "", scan.Language("file.unknown"))
}
