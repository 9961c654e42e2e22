package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gavelhq/gavel/internal/cache"
	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/gitctx"
	"github.com/gavelhq/gavel/internal/history"
	"github.com/gavelhq/gavel/internal/providers"
	"github.com/gavelhq/gavel/internal/redact"
	"github.com/gavelhq/gavel/internal/review"
	"github.com/gavelhq/gavel/internal/scan"
	"github.com/gavelhq/gavel/internal/tokens"
)

// registerTools registers all gavel MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string) {
	s.AddTool(
		mcplib.NewTool("gavel_review_files",
			mcplib.WithDescription("Review a file or directory and return the structured findings as JSON"),
			mcplib.WithString("path",
				mcplib.Required(),
				mcplib.Description("File or directory to review, relative to the project root"),
			),
			mcplib.WithString("model", mcplib.Description("Model override (defaults to the configured model)")),
		),
		handleReviewFiles(projectPath),
	)

	s.AddTool(
		mcplib.NewTool("gavel_review_diff",
			mcplib.WithDescription("Review pending git changes and return the structured findings as JSON"),
			mcplib.WithBoolean("staged", mcplib.Description("Review staged changes instead of the working tree")),
			mcplib.WithString("range", mcplib.Description("Review a commit range (A..B) instead of pending changes")),
			mcplib.WithString("model", mcplib.Description("Model override (defaults to the configured model)")),
		),
		handleReviewDiff(projectPath),
	)

	s.AddTool(
		mcplib.NewTool("gavel_history",
			mcplib.WithDescription("Return recorded review scores for the project, oldest first"),
			mcplib.WithNumber("limit", mcplib.Description("Return only the most recent N entries")),
		),
		handleHistory(projectPath),
	)
}

func handleReviewFiles(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		rel, err := request.RequireString("path")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		cfg, focus, err := config.LoadWithProject(projectPath, nil)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}
		if model, ok := request.GetArguments()["model"].(string); ok && model != "" {
			cfg.Model = model
		}

		target := filepath.Join(projectPath, rel)
		info, err := os.Stat(target)
		if err != nil {
			return errorResult(fmt.Sprintf("cannot read %s: %v", rel, err)), nil
		}

		var files []review.SourceFile
		single := false
		if info.IsDir() {
			files, err = scan.Dir(target, scan.Options{Include: cfg.Include, Exclude: cfg.Exclude})
		} else {
			var f review.SourceFile
			f, err = scan.File(target)
			files = []review.SourceFile{f}
			single = true
		}
		if err != nil {
			return errorResult(fmt.Sprintf("collecting files: %v", err)), nil
		}
		if len(files) == 0 {
			return errorResult("no reviewable files found"), nil
		}

		result, err := runReview(ctx, cfg, files, review.Options{
			Model:      cfg.Model,
			SingleFile: single,
			Focus:      focus,
		})
		if err != nil {
			return errorResult(fmt.Sprintf("review failed: %v", err)), nil
		}
		return jsonResult(result)
	}
}

func handleReviewDiff(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		cfg, focus, err := config.LoadWithProject(projectPath, nil)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}

		args := request.GetArguments()
		if model, ok := args["model"].(string); ok && model != "" {
			cfg.Model = model
		}
		staged, _ := args["staged"].(bool)
		revRange, _ := args["range"].(string)

		diffOpts := gitctx.DiffOptions{
			ContextLines: cfg.ContextLines,
			MaxDiffBytes: cfg.MaxDiffBytes,
			Include:      cfg.Include,
			Exclude:      cfg.Exclude,
		}

		var diff gitctx.DiffResult
		switch {
		case revRange != "":
			diff, err = gitctx.Range(revRange, false, diffOpts)
		case staged:
			diff, err = gitctx.Staged(diffOpts)
		default:
			diff, err = gitctx.Unstaged(diffOpts)
		}
		if err != nil {
			return errorResult(fmt.Sprintf("collecting diff: %v", err)), nil
		}
		if len(diff.Files) == 0 {
			return errorResult("no changes to review"), nil
		}

		result, err := runReview(ctx, cfg, diff.Files, review.Options{
			Model:      cfg.Model,
			DiffReview: true,
			Focus:      focus,
		})
		if err != nil {
			return errorResult(fmt.Sprintf("review failed: %v", err)), nil
		}
		return jsonResult(result)
	}
}

func handleHistory(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		entries, err := history.New().Load(projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading history: %v", err)), nil
		}

		if limit, ok := request.GetArguments()["limit"].(float64); ok && limit > 0 && int(limit) < len(entries) {
			entries = entries[len(entries)-int(limit):]
		}
		if entries == nil {
			entries = []history.Entry{}
		}
		return jsonResult(entries)
	}
}

// runReview assembles the provider client, estimator, cache, and redaction
// policy, then runs the engine over the files.
func runReview(ctx context.Context, cfg config.Config, files []review.SourceFile, opts review.Options) (*review.ReviewResult, error) {
	p := providers.Resolve(opts.Model)
	client, err := providers.New(ctx, p, opts.Model, cfg.APIKey(p))
	if err != nil {
		return nil, err
	}

	var counter tokens.Counter
	if c, ok := client.(tokens.Counter); ok {
		counter = c
	}
	est, err := tokens.NewEstimator(p, counter)
	if err != nil {
		return nil, err
	}

	store, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, err
	}

	files = redact.Apply(files, cfg.Privacy.RedactSecrets, cfg.Privacy.RedactPaths)

	engine := review.NewEngine(cache.Wrap(client, store), est, opts)
	return engine.Review(ctx, files)
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
