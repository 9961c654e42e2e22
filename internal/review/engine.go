package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/gavelhq/gavel/internal/providers"
	"github.com/gavelhq/gavel/internal/tokens"
)

const (
	// responseTokens caps the completion size of every review call.
	responseTokens = 8192
	// summaryTokens caps the completion size of the cross-file summary call.
	summaryTokens = 1024
)

// Options configures one review run.
type Options struct {
	// Model is the model identifier. It also determines the provider, the
	// context window, and the tokenizer.
	Model string
	// SingleFile reviews one file on its own terms: the result carries no
	// cross-file score or summary at all.
	SingleFile bool
	// DiffReview switches to change-scoped prompts and result shape.
	DiffReview bool
	// Focus lists areas the prompts should weight, from project config.
	Focus []string
	// OnProgress, when set, is called exactly once per input file with the
	// number of files finished so far and the total.
	OnProgress func(completed, total int)
}

// Engine drives the full pipeline over a set of files: token estimation,
// chunk splitting, prompt selection, model invocation, parsing, and
// aggregation. Files and their chunks are processed strictly sequentially
// in input order; an Engine has at most one model call outstanding at any
// time, and the result's file order always matches the input order.
type Engine struct {
	client providers.Client
	est    *tokens.Estimator
	opts   Options
}

// NewEngine creates an engine around an already-constructed provider
// client. Credential resolution happens before this point; once an Engine
// exists the run can no longer fail for configuration reasons.
func NewEngine(client providers.Client, est *tokens.Estimator, opts Options) *Engine {
	return &Engine{client: client, est: est, opts: opts}
}

// Review reviews every file and assembles the cross-file result. Failures
// local to one file or chunk are logged and skipped, never aborting the
// batch. Review returns an error only when the context is done, and then
// still returns the partial result gathered so far.
func (e *Engine) Review(ctx context.Context, files []SourceFile) (*ReviewResult, error) {
	mode := SelectMode(e.opts.SingleFile, e.opts.DiffReview)

	result := &ReviewResult{
		Files:      make([]FileReview, 0, len(files)),
		ReviewType: ReviewTypeStandard,
	}
	if mode == ModeDiff {
		result.ReviewType = ReviewTypeDiff
	}

	total := len(files)
	for i, f := range files {
		fr, err := e.reviewFile(ctx, f, mode)
		switch {
		case err == nil:
			result.Files = append(result.Files, fr)
		case ctxDone(err):
			if mode != ModeSingleFile {
				result.Score = intPtr(crossFileScore(result.Files))
			}
			return result, err
		default:
			log.Printf("skipping %s: %v", f.Path, err)
		}
		if e.opts.OnProgress != nil {
			e.opts.OnProgress(i+1, total)
		}
	}

	if mode == ModeSingleFile {
		return result, nil
	}

	result.Score = intPtr(crossFileScore(result.Files))
	if len(result.Files) > 0 {
		result.Summary = e.synthesizeSummary(ctx, result.Files)
	}
	return result, nil
}

func (e *Engine) reviewFile(ctx context.Context, f SourceFile, mode Mode) (FileReview, error) {
	text := reviewText(f, mode)

	count, err := e.est.Count(ctx, text)
	if err != nil {
		return FileReview{}, fmt.Errorf("estimating %s: %w", f.Path, err)
	}

	window := tokens.ContextWindow(e.opts.Model)
	budget := ChunkBudget(window, e.est.Fallback())

	var body partialReview
	recovered := 0

	if count > budget {
		body, recovered, err = e.reviewChunked(ctx, f.Path, text, mode, budget)
		if err != nil {
			return FileReview{}, err
		}
	} else {
		raw, err := e.invoke(ctx, SystemPrompt(mode), BuildUserPrompt(f.Path, text, mode, e.opts.Focus))
		if err != nil {
			return FileReview{}, fmt.Errorf("reviewing %s: %w", f.Path, err)
		}
		body, err = parseReview(raw)
		if err != nil {
			log.Printf("unparseable review for %s, recording empty result: %v", f.Path, err)
			body = partialReview{}
			recovered = 1
		}
	}

	return buildFileReview(f, body, mode, recovered), nil
}

// reviewChunked splits the text and reviews chunk by chunk. A chunk whose
// call or parse fails contributes an empty partial result and is counted in
// recovered; only a dead context stops the loop.
func (e *Engine) reviewChunked(ctx context.Context, path, text string, mode Mode, budget int) (partialReview, int, error) {
	chunks, err := SplitIntoChunks(ctx, text, e.est, budget)
	if err != nil {
		return partialReview{}, 0, fmt.Errorf("splitting %s: %w", path, err)
	}

	recovered := 0
	parts := make([]partialReview, len(chunks))
	for i, c := range chunks {
		user := BuildChunkUserPrompt(path, c, i+1, len(chunks), mode, e.opts.Focus)
		raw, err := e.invoke(ctx, SystemPrompt(mode), user)
		if err != nil {
			if ctxDone(err) {
				return partialReview{}, recovered, err
			}
			log.Printf("chunk %d/%d of %s failed, recording empty result: %v", i+1, len(chunks), path, err)
			recovered++
			continue
		}
		part, err := parseReview(raw)
		if err != nil {
			log.Printf("unparseable chunk %d/%d of %s, recording empty result: %v", i+1, len(chunks), path, err)
			recovered++
			continue
		}
		parts[i] = part
	}

	return aggregateChunks(parts, chunks), recovered, nil
}

func (e *Engine) invoke(ctx context.Context, system, user string) (string, error) {
	resp, err := e.client.Complete(ctx, providers.Request{
		System:    system,
		User:      user,
		MaxTokens: responseTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// synthesizeSummary makes the secondary model call that turns per-file
// summaries into one executive narrative. Failure is not fatal: the result
// simply carries no cross-file summary.
func (e *Engine) synthesizeSummary(ctx context.Context, files []FileReview) string {
	resp, err := e.client.Complete(ctx, providers.Request{
		System:    SummarySystemPrompt(),
		User:      BuildSummaryPrompt(files),
		MaxTokens: summaryTokens,
	})
	if err != nil {
		log.Printf("summary synthesis failed: %v", err)
		return ""
	}

	obj, err := extractObject(resp.Content)
	if err != nil {
		log.Printf("summary synthesis failed: %v", err)
		return ""
	}
	var payload struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		log.Printf("summary synthesis failed: %v", err)
		return ""
	}
	return strings.TrimSpace(payload.Summary)
}

// buildFileReview shapes one file's final review for its mode. Single-file
// mode strips score and summary even if the model produced them; diff mode
// strips good_practices the same way.
func buildFileReview(f SourceFile, body partialReview, mode Mode, recovered int) FileReview {
	fr := FileReview{
		Path:          f.Path,
		Dangers:       ensureFindings(body.Dangers),
		Issues:        ensureFindings(body.Issues),
		Suggestions:   ensureFindings(body.Suggestions),
		GoodPractices: ensureFindings(body.GoodPractices),
		Fixes:         body.Fixes,
		Summary:       strings.TrimSpace(body.Summary),
		Diff:          f.Diff,
		Recovered:     recovered,
	}

	switch mode {
	case ModeSingleFile:
		fr.Score = nil
		fr.Summary = ""
	case ModeDiff:
		fr.GoodPractices = nil
		fr.Score = intPtr(clampScore(scoreOrZero(body.Score)))
	default:
		fr.Score = intPtr(clampScore(scoreOrZero(body.Score)))
	}

	return fr
}

// reviewText picks what the model actually reads: the unified diff in diff
// mode when one is attached, the raw content otherwise.
func reviewText(f SourceFile, mode Mode) string {
	if mode == ModeDiff && f.Diff != "" {
		return f.Diff
	}
	return f.Content
}

func crossFileScore(files []FileReview) int {
	if len(files) == 0 {
		return 0
	}
	var sum float64
	for i := range files {
		if files[i].Score != nil {
			sum += float64(*files[i].Score)
		}
	}
	return clampScore(int(math.Round(sum / float64(len(files)))))
}

func scoreOrZero(s *int) int {
	if s == nil {
		return 0
	}
	return *s
}

func ensureFindings(f []Finding) []Finding {
	if f == nil {
		return []Finding{}
	}
	return f
}

func ctxDone(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
