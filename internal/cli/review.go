package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gavelhq/gavel/internal/cache"
	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/gitctx"
	"github.com/gavelhq/gavel/internal/history"
	"github.com/gavelhq/gavel/internal/output"
	"github.com/gavelhq/gavel/internal/providers"
	"github.com/gavelhq/gavel/internal/redact"
	"github.com/gavelhq/gavel/internal/review"
	"github.com/gavelhq/gavel/internal/scan"
	"github.com/gavelhq/gavel/internal/tokens"
)

// Shared review flags
var (
	flagPaths     string
	flagExclude   string
	flagModel     string
	flagFormat    string
	flagOut       string
	flagFailUnder int
	flagFocus     string
	flagBlame     bool
	flagNoRedact  bool
	flagNoCache   bool
)

// Diff review flags
var (
	flagStaged       bool
	flagCommit       string
	flagRange        string
	flagMergeBase    bool
	flagContextLines int
	flagMaxDiffBytes int
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagPaths, "paths", "", "Include file path globs (comma-separated)")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude file path globs (comma-separated)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name (gemini-* routes to Google, everything else to OpenAI)")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, sarif)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().IntVar(&flagFailUnder, "fail-under", 0, "Exit 1 when the overall score is below this value")
	cmd.Flags().StringVar(&flagFocus, "focus", "", "Focus areas for the reviewer (comma-separated)")
	cmd.Flags().BoolVar(&flagBlame, "blame", false, "Annotate findings with the last author of each line")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the response cache")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailUnder > 0 {
		m["failUnder"] = fmt.Sprintf("%d", flagFailUnder)
	}
	if flagContextLines > 0 {
		m["contextLines"] = fmt.Sprintf("%d", flagContextLines)
	}
	if flagMaxDiffBytes > 0 {
		m["maxDiffBytes"] = fmt.Sprintf("%d", flagMaxDiffBytes)
	}
	return m
}

// loadEffectiveConfig layers the user config, the project overlay from the
// working directory, the environment, and flag overrides.
func loadEffectiveConfig() (config.Config, []string, error) {
	cfg, focus, err := config.LoadWithProject(".", buildOverrides())
	if err != nil {
		return config.Config{}, nil, err
	}
	if flagFocus != "" {
		focus = splitComma(flagFocus)
	}
	return cfg, focus, nil
}

func buildDiffOpts(cfg config.Config) gitctx.DiffOptions {
	opts := gitctx.DiffOptions{
		ContextLines: cfg.ContextLines,
		MaxDiffBytes: cfg.MaxDiffBytes,
		Include:      cfg.Include,
		Exclude:      cfg.Exclude,
	}
	if flagPaths != "" {
		opts.Include = splitComma(flagPaths)
	}
	if flagExclude != "" {
		opts.Exclude = append(opts.Exclude, splitComma(flagExclude)...)
	}
	return opts
}

func buildScanOpts(cfg config.Config) scan.Options {
	opts := scan.Options{
		Include: cfg.Include,
		Exclude: cfg.Exclude,
	}
	if flagPaths != "" {
		opts.Include = splitComma(flagPaths)
	}
	if flagExclude != "" {
		opts.Exclude = append(opts.Exclude, splitComma(flagExclude)...)
	}
	return opts
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// reviewRun carries the metadata executeReview needs beyond the files.
type reviewRun struct {
	mode   string
	root   string
	commit string
}

// headCommit returns the current HEAD SHA, or "" outside a repository.
func headCommit() string {
	meta, err := gitctx.GetRepoMeta()
	if err != nil {
		return ""
	}
	return meta.Head
}

// executeReview runs the full review pipeline and writes the report. It
// returns the result for callers that keep working with it, or nil after a
// failure (with exitCode already set).
func executeReview(files []review.SourceFile, opts review.Options, cfg config.Config, run reviewRun) *review.ReviewResult {
	if flagNoRedact {
		cfg.Privacy.RedactSecrets = false
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}
	if flagNoCache {
		cfg.Cache.Enabled = false
	}

	ctx := context.Background()

	p := providers.Resolve(opts.Model)
	client, err := providers.New(ctx, p, opts.Model, cfg.APIKey(p))
	if err != nil {
		failWith(err)
		return nil
	}

	// The token counter must come off the raw client; the cache decorator
	// does not forward it.
	var counter tokens.Counter
	if c, ok := client.(tokens.Counter); ok {
		counter = c
	}
	est, err := tokens.NewEstimator(p, counter)
	if err != nil {
		failWith(err)
		return nil
	}

	store, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		failWith(err)
		return nil
	}

	files = redact.Apply(files, cfg.Privacy.RedactSecrets, cfg.Privacy.RedactPaths)

	opts.OnProgress = func(completed, total int) {
		fmt.Fprintf(os.Stderr, "\rReviewing files... %d/%d", completed, total)
		if completed == total {
			fmt.Fprintln(os.Stderr)
		}
	}

	engine := review.NewEngine(cache.Wrap(client, store), est, opts)
	result, err := engine.Review(ctx, files)
	if err != nil {
		failWith(err)
		return nil
	}

	if flagBlame {
		if blamer, err := gitctx.NewBlamer("."); err == nil {
			blamer.Annotate(result)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: blame unavailable: %v\n", err)
		}
	}

	if err := output.WriteReport(result, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return nil
	}

	recordHistory(result, run, opts.Model)

	if cfg.FailUnder > 0 {
		if score, ok := result.ScoreValue(); ok && score < cfg.FailUnder {
			exitCode = ExitFindings
		}
	}

	return result
}

func failWith(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if providers.IsAuthError(err) {
		exitCode = ExitAuthError
		return
	}
	exitCode = ExitRuntimeError
}

// recordHistory appends a scored run to the project history and reports the
// score movement. History problems never fail the review.
func recordHistory(result *review.ReviewResult, run reviewRun, model string) {
	entry, ok := history.Record(result, run.mode, model, run.commit)
	if !ok {
		return
	}
	store := history.New()
	if err := store.Append(run.root, entry); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not record history: %v\n", err)
		return
	}
	entries, err := store.Load(run.root)
	if err != nil {
		return
	}
	if delta, ok := history.Delta(entries); ok {
		fmt.Fprintf(os.Stderr, "Score trend: %+d since last review\n", delta)
	}
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review source files or git changes",
	Long:  "Review source files or pending git changes with an LLM backend. Use subcommands to pick what gets reviewed.",
}

var reviewDirCmd = &cobra.Command{
	Use:   "dir [path]",
	Short: "Review every supported file under a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		cfg, focus, err := loadEffectiveConfig()
		if err != nil {
			return err
		}
		files, err := scan.Dir(root, buildScanOpts(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if len(files) == 0 {
			fmt.Fprintln(os.Stdout, "No reviewable files found.")
			return nil
		}
		executeReview(files, review.Options{Model: cfg.Model, Focus: focus}, cfg,
			reviewRun{mode: "standard", root: root, commit: headCommit()})
		return nil
	},
}

var reviewFileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Review a single file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, focus, err := loadEffectiveConfig()
		if err != nil {
			return err
		}
		f, err := scan.File(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		executeReview([]review.SourceFile{f}, review.Options{Model: cfg.Model, SingleFile: true, Focus: focus}, cfg,
			reviewRun{mode: "single-file", root: "."})
		return nil
	},
}

var reviewDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Review pending git changes",
	Long:  "Review unstaged changes by default. Use --staged for the index, --commit for a single commit, or --range for a revision range.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, focus, err := loadEffectiveConfig()
		if err != nil {
			return err
		}

		var diff gitctx.DiffResult
		switch {
		case flagCommit != "":
			diff, err = gitctx.Commit(flagCommit, buildDiffOpts(cfg))
		case flagRange != "":
			diff, err = gitctx.Range(flagRange, flagMergeBase, buildDiffOpts(cfg))
		case flagStaged:
			diff, err = gitctx.Staged(buildDiffOpts(cfg))
		default:
			diff, err = gitctx.Unstaged(buildDiffOpts(cfg))
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if len(diff.Files) == 0 {
			fmt.Fprintln(os.Stdout, "No changes to review.")
			return nil
		}
		executeReview(diff.Files, review.Options{Model: cfg.Model, DiffReview: true, Focus: focus}, cfg,
			reviewRun{mode: "diff", root: ".", commit: diff.Repo.Head})
		return nil
	},
}

func init() {
	reviewCmd.AddCommand(reviewDirCmd)
	reviewCmd.AddCommand(reviewFileCmd)
	reviewCmd.AddCommand(reviewDiffCmd)

	for _, cmd := range []*cobra.Command{
		reviewDirCmd,
		reviewFileCmd,
		reviewDiffCmd,
	} {
		addReviewFlags(cmd)
	}

	// Diff-specific flags
	reviewDiffCmd.Flags().BoolVar(&flagStaged, "staged", false, "Review staged changes (index vs HEAD)")
	reviewDiffCmd.Flags().StringVar(&flagCommit, "commit", "", "Review a single commit by SHA")
	reviewDiffCmd.Flags().StringVar(&flagRange, "range", "", "Review a revision range (e.g. origin/main..HEAD)")
	reviewDiffCmd.Flags().BoolVar(&flagMergeBase, "merge-base", true, "Use the merge base for range comparisons")
	reviewDiffCmd.Flags().IntVar(&flagContextLines, "context-lines", 0, "Number of context lines in the diff")
	reviewDiffCmd.Flags().IntVar(&flagMaxDiffBytes, "max-diff-bytes", 0, "Maximum diff size in bytes")
}
