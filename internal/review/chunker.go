package review

import (
	"context"
	"strings"

	"github.com/gavelhq/gavel/internal/tokens"
)

// overlapLines is how many trailing lines of a closed chunk seed the next
// one, so the model keeps cross-boundary context.
const overlapLines = 50

// SplitIntoChunks splits content into token-bounded chunks, line by line.
// A chunk closes when adding the next line would push its token estimate
// past maxTokens and it already holds at least one line; the next chunk is
// seeded with the closed chunk's last 50 lines and the incoming line. Lines
// are never broken: a single line estimated over maxTokens still lands in a
// chunk of its own. The final remainder is always emitted.
func SplitIntoChunks(ctx context.Context, content string, est *tokens.Estimator, maxTokens int) ([]Chunk, error) {
	lines := strings.Split(content, "\n")

	var chunks []Chunk
	var cur []string
	start := 1

	for _, line := range lines {
		candidate := line
		if len(cur) > 0 {
			candidate = strings.Join(cur, "\n") + "\n" + line
		}
		n, err := est.Count(ctx, candidate)
		if err != nil {
			return nil, err
		}

		if n > maxTokens && len(cur) > 0 {
			chunks = append(chunks, Chunk{Content: strings.Join(cur, "\n"), StartLine: start})

			keep := overlapLines
			if keep > len(cur) {
				keep = len(cur)
			}
			start += len(cur) - keep
			seeded := make([]string, keep, keep+1)
			copy(seeded, cur[len(cur)-keep:])
			cur = append(seeded, line)
			continue
		}

		cur = append(cur, line)
	}

	if len(cur) > 0 {
		chunks = append(chunks, Chunk{Content: strings.Join(cur, "\n"), StartLine: start})
	}

	return chunks, nil
}

// ChunkBudget returns the per-chunk token ceiling for a context window.
// Normally 90% of the window, leaving headroom for the prompt scaffolding
// and the response. When token counts come from the characters/4 heuristic
// the margin widens to 80%, since the heuristic can undercount real
// tokenization badly enough to overflow the window at 90%.
func ChunkBudget(window int, heuristic bool) int {
	if heuristic {
		return window * 8 / 10
	}
	return window * 9 / 10
}
