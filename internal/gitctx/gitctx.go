package gitctx

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/gavelhq/gavel/internal/review"
)

// maxFileBytes caps how much working-tree content is attached to a diff
// file for context.
const maxFileBytes = 1 << 20

// DiffOptions shapes the diff git is asked to produce.
type DiffOptions struct {
	ContextLines int
	MaxDiffBytes int
	Include      []string
	Exclude      []string
}

// DiffResult holds a collected diff split into per-file review units.
// Each SourceFile carries its own reconstructed unified diff plus the
// current working-tree content when available.
type DiffResult struct {
	Diff    string
	Files   []review.SourceFile
	Added   int
	Deleted int
	Mode    string
	Range   string
	Repo    RepoMeta
}

// RepoMeta identifies the repository a diff came from.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// GetRepoMeta queries git for the repository root, head and branch.
func GetRepoMeta() (RepoMeta, error) {
	root, err := gitOutput("rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, err := gitOutput("rev-parse", "HEAD")
	if err != nil {
		head = "" // repo has no commits yet
	}
	branch, err := gitOutput("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// Unstaged diffs the working tree against the index.
func Unstaged(opts DiffOptions) (DiffResult, error) {
	args := buildDiffArgs(opts)
	diff, err := gitOutput(append([]string{"diff"}, args...)...)
	if err != nil {
		return DiffResult{}, fmt.Errorf("git diff: %w", err)
	}
	return buildResult(diff, "unstaged", "", opts)
}

// Staged diffs the index against HEAD.
func Staged(opts DiffOptions) (DiffResult, error) {
	args := buildDiffArgs(opts)
	diff, err := gitOutput(append([]string{"diff", "--cached"}, args...)...)
	if err != nil {
		return DiffResult{}, fmt.Errorf("git diff --cached: %w", err)
	}
	return buildResult(diff, "staged", "", opts)
}

// Commit diffs one commit against its parent.
func Commit(sha string, opts DiffOptions) (DiffResult, error) {
	args := buildDiffArgs(opts)
	cmdArgs := append([]string{"diff", sha + "~1", sha}, args...)
	diff, err := gitOutput(cmdArgs...)
	if err != nil {
		// Might be the initial commit with no parent.
		diff, err = gitOutput("show", "--format=", fmt.Sprintf("-U%d", opts.ContextLines), sha)
		if err != nil {
			return DiffResult{}, fmt.Errorf("git show %s: %w", sha, err)
		}
	}
	return buildResult(diff, "commit", sha, opts)
}

// Range returns the combined diff for a revision range. If mergeBase is
// true, ".." is widened to "..." so the diff is taken from the merge base,
// which is what a pull-request review wants.
func Range(revRange string, mergeBase bool, opts DiffOptions) (DiffResult, error) {
	args := buildDiffArgs(opts)
	diffRange := revRange
	if mergeBase && strings.Contains(revRange, "..") && !strings.Contains(revRange, "...") {
		diffRange = strings.Replace(revRange, "..", "...", 1)
	}
	cmdArgs := append([]string{"diff", diffRange}, args...)
	diff, err := gitOutput(cmdArgs...)
	if err != nil {
		return DiffResult{}, fmt.Errorf("git diff %s: %w", revRange, err)
	}
	return buildResult(diff, "range", revRange, opts)
}

// Parse splits an externally obtained unified diff (for example a GitHub
// PR patch) into per-file review units without touching git.
func Parse(raw string, opts DiffOptions) (DiffResult, error) {
	return buildResult(raw, "patch", "", opts)
}

func buildDiffArgs(opts DiffOptions) []string {
	var args []string
	if opts.ContextLines > 0 {
		args = append(args, fmt.Sprintf("-U%d", opts.ContextLines))
	}
	args = append(args, "--")
	for _, p := range opts.Include {
		if p != "**/*" {
			args = append(args, p)
		}
	}
	return args
}

// buildResult parses the raw diff and rebuilds one review unit per file.
// Excluded files are dropped before the byte budget is applied so they do
// not consume it; once the budget is exceeded, remaining whole files are
// dropped rather than truncating mid-file, which would leave an
// unparseable fragment.
func buildResult(raw, mode, rangeStr string, opts DiffOptions) (DiffResult, error) {
	meta, err := GetRepoMeta()
	if err != nil {
		meta = RepoMeta{}
	}

	result := DiffResult{
		Mode:  mode,
		Range: rangeStr,
		Repo:  meta,
	}
	if strings.TrimSpace(raw) == "" {
		return result, nil
	}

	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return DiffResult{}, fmt.Errorf("parsing diff: %w", err)
	}

	var combined strings.Builder
	total := 0
	for _, f := range parsed {
		if f.IsBinary {
			continue
		}
		path := displayPath(f)
		if path == "" || MatchesAny(path, opts.Exclude) {
			continue
		}

		text := fileDiffText(f)
		if opts.MaxDiffBytes > 0 && total+len(text) > opts.MaxDiffBytes {
			break
		}
		total += len(text)
		combined.WriteString(text)

		result.Files = append(result.Files, review.SourceFile{
			Path:    path,
			Content: workingCopy(meta.Root, path, f.IsDelete),
			Diff:    text,
		})

		added, deleted := countChanges(f)
		result.Added += added
		result.Deleted += deleted
	}

	result.Diff = combined.String()
	return result, nil
}

func displayPath(f *gitdiff.File) string {
	if f.NewName != "" {
		return f.NewName
	}
	return f.OldName
}

// fileDiffText reconstructs a standalone unified diff for one parsed file.
func fileDiffText(f *gitdiff.File) string {
	var b strings.Builder
	path := displayPath(f)

	fmt.Fprintf(&b, "diff --git a/%s b/%s\n", path, path)
	switch {
	case f.IsNew:
		b.WriteString("new file mode 100644\n")
	case f.IsDelete:
		b.WriteString("deleted file mode 100644\n")
	case f.IsRename:
		fmt.Fprintf(&b, "rename from %s\n", f.OldName)
		fmt.Fprintf(&b, "rename to %s\n", f.NewName)
	}
	if f.IsNew {
		b.WriteString("--- /dev/null\n")
	} else {
		fmt.Fprintf(&b, "--- a/%s\n", f.OldName)
	}
	if f.IsDelete {
		b.WriteString("+++ /dev/null\n")
	} else {
		fmt.Fprintf(&b, "+++ b/%s\n", f.NewName)
	}

	for _, frag := range f.TextFragments {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@",
			frag.OldPosition, frag.OldLines,
			frag.NewPosition, frag.NewLines)
		if frag.Comment != "" {
			b.WriteString(" " + frag.Comment)
		}
		b.WriteString("\n")

		for _, line := range frag.Lines {
			switch line.Op {
			case gitdiff.OpContext:
				b.WriteString(" " + line.Line)
			case gitdiff.OpDelete:
				b.WriteString("-" + line.Line)
			case gitdiff.OpAdd:
				b.WriteString("+" + line.Line)
			}
			if !strings.HasSuffix(line.Line, "\n") {
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func countChanges(f *gitdiff.File) (added, deleted int) {
	for _, frag := range f.TextFragments {
		for _, line := range frag.Lines {
			switch line.Op {
			case gitdiff.OpAdd:
				added++
			case gitdiff.OpDelete:
				deleted++
			}
		}
	}
	return added, deleted
}

// workingCopy reads the current content of a changed file so renderers
// have surrounding context. Unreadable or oversized files yield "".
func workingCopy(root, path string, deleted bool) string {
	if deleted || root == "" {
		return ""
	}
	full := filepath.Join(root, filepath.FromSlash(path))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() || info.Size() > maxFileBytes {
		return ""
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return ""
	}
	return string(data)
}

// MatchesAny reports whether path matches any of the glob patterns.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		clean := strings.TrimPrefix(pattern, "**/")
		if clean != pattern {
			if dir, ok := strings.CutSuffix(clean, "/**"); ok {
				for _, seg := range strings.Split(path, "/") {
					if m, err := filepath.Match(dir, seg); err == nil && m {
						return true
					}
				}
			}
			matched, err = filepath.Match(clean, filepath.Base(path))
			if err == nil && matched {
				return true
			}
			matched, err = filepath.Match(clean, path)
			if err == nil && matched {
				return true
			}
		}
		if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
		}
	}
	return false
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
