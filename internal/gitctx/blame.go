package gitctx

import (
	"fmt"

	git "github.com/go-git/go-git/v5"

	"github.com/gavelhq/gavel/internal/review"
)

// Blamer resolves line authorship for files in one repository. It keeps
// per-file blame results cached because a review typically has several
// findings in the same file.
type Blamer struct {
	repo  *git.Repository
	cache map[string]*git.BlameResult
}

// NewBlamer opens the repository at root.
func NewBlamer(root string) (*Blamer, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("opening git repo: %w", err)
	}
	return &Blamer{
		repo:  repo,
		cache: make(map[string]*git.BlameResult),
	}, nil
}

// Author returns who last touched the given 1-based line of path, as
// "Name <email>". It returns "" when the line cannot be attributed:
// untracked or renamed files, out-of-range lines, uncommitted edits.
func (b *Blamer) Author(path string, line int) string {
	if line < 1 {
		return ""
	}
	blame, ok := b.cache[path]
	if !ok {
		var err error
		blame, err = b.blameFile(path)
		if err != nil {
			blame = nil
		}
		b.cache[path] = blame
	}
	if blame == nil || line > len(blame.Lines) {
		return ""
	}
	l := blame.Lines[line-1]
	if l.AuthorName != "" && l.Author != "" {
		return fmt.Sprintf("%s <%s>", l.AuthorName, l.Author)
	}
	if l.AuthorName != "" {
		return l.AuthorName
	}
	return l.Author
}

func (b *Blamer) blameFile(path string) (*git.BlameResult, error) {
	head, err := b.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("getting HEAD: %w", err)
	}
	commit, err := b.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD commit: %w", err)
	}
	return git.Blame(commit, path)
}

// Annotate attaches authors to every finding in the result. Findings whose
// lines cannot be attributed are left as they are.
func (b *Blamer) Annotate(result *review.ReviewResult) {
	for i := range result.Files {
		f := &result.Files[i]
		annotateFindings(b, f.Path, f.Dangers)
		annotateFindings(b, f.Path, f.Issues)
		annotateFindings(b, f.Path, f.Suggestions)
		annotateFindings(b, f.Path, f.GoodPractices)
	}
}

func annotateFindings(b *Blamer, path string, findings []review.Finding) {
	for i := range findings {
		if findings[i].Author == "" {
			findings[i].Author = b.Author(path, findings[i].Line)
		}
	}
}
