package review

import (
	"fmt"
	"strings"
)

// Mode selects the system instruction for a review run. Diff takes priority
// over SingleFile, which takes priority over Standard.
type Mode int

const (
	ModeStandard Mode = iota
	ModeSingleFile
	ModeDiff
)

// SelectMode resolves the review mode from the run flags.
func SelectMode(singleFile, diffReview bool) Mode {
	switch {
	case diffReview:
		return ModeDiff
	case singleFile:
		return ModeSingleFile
	default:
		return ModeStandard
	}
}

func (m Mode) String() string {
	switch m {
	case ModeSingleFile:
		return "single-file"
	case ModeDiff:
		return "diff"
	default:
		return "standard"
	}
}

const standardSystemPrompt = `You are a senior software architect performing a rigorous code review. You review source files and produce structured findings in JSON format.

Rules:
1. Categorize every finding: "dangers" for verified real risks (crashes, data loss, security holes), "issues" for bugs and correctness problems, "suggestions" for improvements, "good_practices" for things done well.
2. Only report a danger when you can verify a real, concrete risk in the code shown. Never speculate about security problems you cannot demonstrate from the code. An empty dangers array is the correct answer for safe code.
3. Each finding has "line" (1-based line number in the file) and "description" (a single sentence).
4. Propose fixes in the "fix" array. Each fix has "line", "explanation", and "code". The code is a unified-diff-style snippet containing only the changed lines, prefixed with "-" for removals and "+" for additions.
5. "score" is an integer 0-100 rating overall quality. 100 means nothing to improve.
6. "summary" is a prose assessment of the file. The higher the score, the shorter the summary; a near-perfect file needs only a sentence.

You MUST respond with ONLY a JSON object. No markdown, no explanation, no preamble.

The object must have this exact structure:
{
  "dangers": [{"line": 1, "description": "..."}],
  "issues": [{"line": 1, "description": "..."}],
  "suggestions": [{"line": 1, "description": "..."}],
  "good_practices": [{"line": 1, "description": "..."}],
  "fix": [{"line": 1, "explanation": "...", "code": "- old\n+ new"}],
  "score": 85,
  "summary": "..."
}

Empty arrays are fine. Omit nothing else.`

const singleFileSystemPrompt = `You are a senior software architect performing a rigorous code review. You review one source file and produce structured findings in JSON format.

Rules:
1. Categorize every finding: "dangers" for verified real risks (crashes, data loss, security holes), "issues" for bugs and correctness problems, "suggestions" for improvements, "good_practices" for things done well.
2. Only report a danger when you can verify a real, concrete risk in the code shown. Never speculate about security problems you cannot demonstrate from the code. An empty dangers array is the correct answer for safe code.
3. Each finding has "line" (1-based line number in the file) and "description" (a single sentence).
4. Propose fixes in the "fix" array. Each fix has "line", "explanation", and "code". The code is a unified-diff-style snippet containing only the changed lines, prefixed with "-" for removals and "+" for additions.
5. Do NOT produce a "score" field. Do NOT produce a "summary" field.

You MUST respond with ONLY a JSON object. No markdown, no explanation, no preamble.

The object must have this exact structure:
{
  "dangers": [{"line": 1, "description": "..."}],
  "issues": [{"line": 1, "description": "..."}],
  "suggestions": [{"line": 1, "description": "..."}],
  "good_practices": [{"line": 1, "description": "..."}],
  "fix": [{"line": 1, "explanation": "...", "code": "- old\n+ new"}]
}

Empty arrays are fine.`

const diffSystemPrompt = `You are a senior software architect reviewing a pull request. You are shown a unified diff and you judge strictly the implications of the change: what the new code breaks, risks, or improves. Do not review unchanged code and do not praise existing code.

Rules:
1. Categorize every finding: "dangers" for verified real risks introduced by the change, "issues" for bugs and correctness problems in the change, "suggestions" for improvements to the change.
2. Do NOT produce a "good_practices" field. This is a change review, not an audit.
3. Only report a danger when you can verify a real, concrete risk in the change shown. Never speculate about security problems you cannot demonstrate.
4. Each finding has "line" (1-based line number in the new version of the file) and "description" (a single sentence).
5. Propose fixes in the "fix" array. Each fix has "line", "explanation", and "code". The code is a unified-diff-style snippet containing only the changed lines, prefixed with "-" for removals and "+" for additions.
6. "score" is an integer 0-100 rating the quality of the change. "summary" is a prose assessment of the change; the higher the score, the shorter the summary.

You MUST respond with ONLY a JSON object. No markdown, no explanation, no preamble.

The object must have this exact structure:
{
  "dangers": [{"line": 1, "description": "..."}],
  "issues": [{"line": 1, "description": "..."}],
  "suggestions": [{"line": 1, "description": "..."}],
  "fix": [{"line": 1, "explanation": "...", "code": "- old\n+ new"}],
  "score": 85,
  "summary": "..."
}

Empty arrays are fine.`

// SystemPrompt returns the system instruction for a mode.
func SystemPrompt(mode Mode) string {
	switch mode {
	case ModeSingleFile:
		return singleFileSystemPrompt
	case ModeDiff:
		return diffSystemPrompt
	default:
		return standardSystemPrompt
	}
}

// BuildUserPrompt constructs the user prompt for reviewing one whole file.
func BuildUserPrompt(path, text string, mode Mode, focus []string) string {
	var b strings.Builder

	if mode == ModeDiff {
		fmt.Fprintf(&b, "Review the following change to %s.\n", path)
	} else {
		fmt.Fprintf(&b, "Review the following file: %s\n", path)
	}
	writeFocus(&b, focus)

	b.WriteString("\n--- BEGIN CONTENT ---\n")
	b.WriteString(text)
	b.WriteString("\n--- END CONTENT ---\n")

	return b.String()
}

// BuildChunkUserPrompt constructs the user prompt for one chunk of an
// oversized file. The model is told where the chunk sits so its commentary
// stays coherent; line numbers are still chunk-relative and remapped during
// aggregation.
func BuildChunkUserPrompt(path string, c Chunk, index, total int, mode Mode, focus []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Review part %d of %d of the file %s.\n", index, total, path)
	fmt.Fprintf(&b, "This part begins at line %d of the original file, but report \"line\" values relative to the content shown (first line shown = line 1).\n", c.StartLine)
	if total > 1 {
		b.WriteString("The file was split because of its size. Judge only what is shown.\n")
	}
	writeFocus(&b, focus)

	b.WriteString("\n--- BEGIN CONTENT ---\n")
	b.WriteString(c.Content)
	b.WriteString("\n--- END CONTENT ---\n")

	return b.String()
}

const summarySystemPrompt = `You are a senior software architect concluding a code review. You are given per-file review summaries and you synthesize one short executive narrative for the whole change set: overall health, the biggest risks, and the most valuable next step.

You MUST respond with ONLY a JSON object of this exact structure:
{"summary": "..."}

Keep the summary under five sentences.`

// SummarySystemPrompt returns the system instruction for the cross-file
// summary synthesis call.
func SummarySystemPrompt() string {
	return summarySystemPrompt
}

// BuildSummaryPrompt constructs the user prompt for the cross-file summary
// call from each file's own summary or headline finding.
func BuildSummaryPrompt(files []FileReview) string {
	var b strings.Builder

	b.WriteString("Synthesize an executive summary of this review.\n\n")
	for _, fr := range files {
		line := fr.Summary
		if line == "" {
			line = headline(fr)
		}
		if fr.Score != nil {
			fmt.Fprintf(&b, "- %s (score %d): %s\n", fr.Path, *fr.Score, line)
		} else {
			fmt.Fprintf(&b, "- %s: %s\n", fr.Path, line)
		}
	}

	return b.String()
}

// headline picks the most severe finding's description, for files whose
// review produced no summary of its own.
func headline(fr FileReview) string {
	for _, list := range [][]Finding{fr.Dangers, fr.Issues, fr.Suggestions} {
		if len(list) > 0 {
			return list[0].Description
		}
	}
	return "no findings"
}

func writeFocus(b *strings.Builder, focus []string) {
	if len(focus) == 0 {
		return
	}
	fmt.Fprintf(b, "Pay particular attention to: %s.\n", strings.Join(focus, ", "))
}
