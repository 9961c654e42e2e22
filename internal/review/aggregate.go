package review

import (
	"fmt"
	"math"
	"strings"
)

// chunkSummaryFallback is used when no chunk produced a summary of its own.
const chunkSummaryFallback = "Review completed for large file."

// aggregateChunks merges per-chunk partial results into one file-level
// body. Each chunk's line numbers are shifted by startLine-1 into the
// original file's coordinate space, arrays concatenate in chunk order, the
// score is the rounded mean over all chunks (a missing score counts as 0),
// and the summary strings join up prefixed with their 1-based chunk index.
// parts and chunks must be index-aligned.
func aggregateChunks(parts []partialReview, chunks []Chunk) partialReview {
	var out partialReview
	var scoreSum float64
	var summaries []string

	for i, part := range parts {
		shift := chunks[i].StartLine - 1

		out.Dangers = append(out.Dangers, shiftFindings(part.Dangers, shift)...)
		out.Issues = append(out.Issues, shiftFindings(part.Issues, shift)...)
		out.Suggestions = append(out.Suggestions, shiftFindings(part.Suggestions, shift)...)
		out.GoodPractices = append(out.GoodPractices, shiftFindings(part.GoodPractices, shift)...)
		out.Fixes = append(out.Fixes, shiftFixes(part.Fixes, shift)...)

		if part.Score != nil {
			scoreSum += float64(*part.Score)
		}
		if s := strings.TrimSpace(part.Summary); s != "" {
			summaries = append(summaries, fmt.Sprintf("%d. %s", i+1, s))
		}
	}

	score := 0
	if len(parts) > 0 {
		score = clampScore(int(math.Round(scoreSum / float64(len(parts)))))
	}
	out.Score = &score

	if len(summaries) > 0 {
		out.Summary = strings.Join(summaries, "\n")
	} else {
		out.Summary = chunkSummaryFallback
	}

	return out
}

func shiftFindings(findings []Finding, shift int) []Finding {
	if len(findings) == 0 {
		return nil
	}
	shifted := make([]Finding, len(findings))
	for i, f := range findings {
		f.Line += shift
		shifted[i] = f
	}
	return shifted
}

func shiftFixes(fixes []Fix, shift int) []Fix {
	if len(fixes) == 0 {
		return nil
	}
	shifted := make([]Fix, len(fixes))
	for i, f := range fixes {
		f.Line += shift
		shifted[i] = f
	}
	return shifted
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
