package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gavelhq/gavel/internal/review"
)

// Terminal palette. All rendering goes through lipgloss so the report
// degrades to plain text when the terminal lacks color support.
var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	pathStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8be9fd"))
	lineRefStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272a4"))
	authorStyle  = lipgloss.NewStyle().Faint(true).Italic(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)

	dangerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5555"))
	issueStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffb86c"))
	suggestionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f1fa8c"))
	praiseStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#50fa7b"))

	scoreGoodStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#50fa7b"))
	scoreWarnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f1fa8c"))
	scoreBadStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5555"))

	addedLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#50fa7b"))
	removedLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555"))
)

var separator = faintStyle.Render(strings.Repeat("─", 60))

// TextWriter outputs a human-readable terminal report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, result *review.ReviewResult) error {
	ew := &errWriter{w: w}

	ew.println(headerStyle.Render("Gavel Code Review"))
	ew.println(separator)

	if score, ok := result.ScoreValue(); ok {
		ew.printf("Overall score: %s\n", scoreStyleFor(score).Render(fmt.Sprintf("%d/100", score)))
	}
	if result.Summary != "" {
		for _, line := range wrapText(result.Summary, 70) {
			ew.println(line)
		}
	}

	if result.FindingCount() == 0 {
		ew.println("")
		ew.println(praiseStyle.Render("✓") + " No issues found. Looks good!")
		return ew.err
	}

	for i := range result.Files {
		t.writeFile(ew, &result.Files[i])
	}

	t.writeTotals(ew, result)
	return ew.err
}

func (t *TextWriter) writeFile(ew *errWriter, f *review.FileReview) {
	ew.println("")
	ew.println(pathStyle.Render(f.Path))
	if f.Score != nil {
		ew.printf("  Score: %s\n", scoreStyleFor(*f.Score).Render(fmt.Sprintf("%d/100", *f.Score)))
	}
	if f.Summary != "" {
		for _, line := range wrapText(f.Summary, 70) {
			ew.printf("  %s\n", line)
		}
	}
	if f.Recovered > 0 {
		ew.printf("  %s\n", faintStyle.Render(fmt.Sprintf("%d review unit(s) skipped: model output was not usable", f.Recovered)))
	}

	for _, section := range f.Sections() {
		if len(section.Findings) == 0 {
			continue
		}
		heading := fmt.Sprintf("%s %s (%d)", sectionIcon(section.Name), sectionLabel(section.Name), len(section.Findings))
		ew.printf("\n  %s\n", sectionStyle(section.Name).Render(heading))
		for _, finding := range section.Findings {
			ew.printf("    %s\n", lineRefStyle.Render(fmt.Sprintf("%s:%d", f.Path, finding.Line)))
			for _, line := range wrapText(finding.Description, 66) {
				ew.printf("      %s\n", line)
			}
			if finding.Author != "" {
				ew.printf("      %s\n", authorStyle.Render("last touched by "+finding.Author))
			}
		}
	}

	for _, fix := range f.Fixes {
		t.writeFix(ew, f.Path, fix)
	}
}

func (t *TextWriter) writeFix(ew *errWriter, path string, fix review.Fix) {
	ew.printf("\n  %s %s\n", suggestionStyle.Render("Suggested fix"), lineRefStyle.Render(fmt.Sprintf("(line %d)", fix.Line)))
	for _, line := range wrapText(fix.Explanation, 66) {
		ew.printf("    %s\n", line)
	}
	if fix.Code == "" {
		return
	}

	lines := strings.Split(strings.TrimRight(fix.Code, "\n"), "\n")
	stripped := make([]string, len(lines))
	for i, line := range lines {
		if len(line) > 0 && (line[0] == '+' || line[0] == '-') {
			stripped[i] = line[1:]
		} else {
			stripped[i] = line
		}
	}
	highlighted := highlightLines(path, stripped)

	ew.println("")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			ew.printf("    %s\n", addedLineStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			ew.printf("    %s\n", removedLineStyle.Render(line))
		default:
			ew.printf("    %s\n", renderTokens(highlighted[i]))
		}
	}
}

func (t *TextWriter) writeTotals(ew *errWriter, result *review.ReviewResult) {
	var dangers, issues, suggestions, praises int
	for i := range result.Files {
		f := &result.Files[i]
		dangers += len(f.Dangers)
		issues += len(f.Issues)
		suggestions += len(f.Suggestions)
		praises += len(f.GoodPractices)
	}

	parts := []string{
		dangerStyle.Render(fmt.Sprintf("%d dangers", dangers)),
		issueStyle.Render(fmt.Sprintf("%d issues", issues)),
		suggestionStyle.Render(fmt.Sprintf("%d suggestions", suggestions)),
	}
	if praises > 0 {
		parts = append(parts, praiseStyle.Render(fmt.Sprintf("%d good practices", praises)))
	}

	ew.println("")
	ew.println(separator)
	ew.printf("%d file(s) reviewed: %s\n", len(result.Files), strings.Join(parts, ", "))
}

// renderTokens joins highlighted tokens back into one styled line.
func renderTokens(tokens []token) string {
	var b strings.Builder
	for _, tok := range tokens {
		if tok.color == "" {
			b.WriteString(tok.text)
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(tok.color)).Render(tok.text))
	}
	return b.String()
}

func scoreStyleFor(score int) lipgloss.Style {
	switch {
	case score >= 80:
		return scoreGoodStyle
	case score >= 60:
		return scoreWarnStyle
	default:
		return scoreBadStyle
	}
}

func sectionStyle(name string) lipgloss.Style {
	switch name {
	case "dangers":
		return dangerStyle
	case "issues":
		return issueStyle
	case "suggestions":
		return suggestionStyle
	default:
		return praiseStyle
	}
}

func sectionIcon(name string) string {
	switch name {
	case "dangers":
		return "✗"
	case "issues":
		return "⚠"
	case "suggestions":
		return "•"
	default:
		return "✓"
	}
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
