package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/gavelhq/gavel/internal/review"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, result *review.ReviewResult) error {
	fmt.Fprintf(w, "## Gavel Code Review\n\n")

	if score, ok := result.ScoreValue(); ok {
		fmt.Fprintf(w, "**Overall score: %d/100** %s\n\n", score, scoreEmoji(score))
	}
	if result.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", result.Summary)
	}

	// Per-file overview table
	fmt.Fprintf(w, "| File | Dangers | Issues | Suggestions | Score |\n")
	fmt.Fprintf(w, "|------|---------|--------|-------------|-------|\n")
	for i := range result.Files {
		f := &result.Files[i]
		fmt.Fprintf(w, "| `%s` | %d | %d | %d | %s |\n",
			f.Path, len(f.Dangers), len(f.Issues), len(f.Suggestions), mdFileScore(f))
	}
	fmt.Fprintln(w)

	if result.FindingCount() == 0 {
		fmt.Fprintln(w, "No issues found. :white_check_mark:")
		return nil
	}

	for i := range result.Files {
		f := &result.Files[i]
		if f.FindingCount() == 0 && len(f.Fixes) == 0 {
			continue
		}

		fmt.Fprintf(w, "<details>\n<summary><code>%s</code> (%d findings)</summary>\n\n", f.Path, f.FindingCount())

		if f.Summary != "" {
			fmt.Fprintf(w, "%s\n\n", f.Summary)
		}
		if f.Recovered > 0 {
			fmt.Fprintf(w, "> :warning: %d review unit(s) returned unusable output and were skipped.\n\n", f.Recovered)
		}

		for _, section := range f.Sections() {
			if len(section.Findings) == 0 {
				continue
			}
			fmt.Fprintf(w, "#### %s %s\n\n", mdSectionIcon(section.Name), sectionLabel(section.Name))
			for _, finding := range section.Findings {
				fmt.Fprintf(w, "- **`%s:%d`** %s", f.Path, finding.Line, finding.Description)
				if finding.Author != "" {
					fmt.Fprintf(w, " _(last touched by %s)_", finding.Author)
				}
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w)
		}

		for _, fix := range f.Fixes {
			fmt.Fprintf(w, "**Suggested fix (line %d):** %s\n\n", fix.Line, fix.Explanation)
			if fix.Code != "" {
				fmt.Fprintf(w, "```diff\n%s\n```\n\n", strings.TrimRight(fix.Code, "\n"))
			}
		}

		fmt.Fprintf(w, "</details>\n\n")
	}

	return nil
}

func mdFileScore(f *review.FileReview) string {
	if f.Score == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *f.Score)
}

func mdSectionIcon(name string) string {
	switch name {
	case "dangers":
		return ":red_circle:"
	case "issues":
		return ":orange_circle:"
	case "suggestions":
		return ":yellow_circle:"
	case "good_practices":
		return ":white_check_mark:"
	default:
		return ":white_circle:"
	}
}

func scoreEmoji(score int) string {
	switch {
	case score >= 80:
		return ":white_check_mark:"
	case score >= 60:
		return ":warning:"
	default:
		return ":red_circle:"
	}
}
