package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gavelhq/gavel/internal/github"
	"github.com/gavelhq/gavel/internal/gitctx"
	"github.com/gavelhq/gavel/internal/review"
)

var (
	flagGHOwner  string
	flagGHRepo   string
	flagGHDryRun bool
)

var githubCmd = &cobra.Command{
	Use:   "github <pr-number>",
	Short: "Review a GitHub pull request",
	Long:  "Fetch a PR diff from GitHub, run a diff review, and optionally post the report as a PR review with inline comments.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prNumber, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid PR number %q\n", args[0])
			exitCode = ExitUsageError
			return nil
		}

		cfg, focus, err := loadEffectiveConfig()
		if err != nil {
			return err
		}

		// fall back to the origin remote for owner/repo
		owner, repo := flagGHOwner, flagGHRepo
		if owner == "" || repo == "" {
			detectedOwner, detectedRepo, err := github.DetectRepo()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\nUse --owner and --repo flags to specify manually.\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			if owner == "" {
				owner = detectedOwner
			}
			if repo == "" {
				repo = detectedRepo
			}
		}

		ghClient, err := github.NewClient()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}

		ctx := context.Background()

		fmt.Fprintf(os.Stderr, "Fetching PR #%d from %s/%s...\n", prNumber, owner, repo)
		rawDiff, err := ghClient.GetPRDiff(ctx, owner, repo, prNumber)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if rawDiff == "" {
			fmt.Fprintln(os.Stdout, "PR has no diff, nothing to review.")
			return nil
		}

		diff, err := gitctx.Parse(rawDiff, buildDiffOpts(cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if len(diff.Files) == 0 {
			fmt.Fprintln(os.Stdout, "No reviewable changes in this PR.")
			return nil
		}

		result := executeReview(diff.Files, review.Options{Model: cfg.Model, DiffReview: true, Focus: focus}, cfg,
			reviewRun{mode: "github-pr", root: "."})
		if result == nil {
			return nil
		}

		if flagGHDryRun {
			fmt.Fprintf(os.Stderr, "Dry run: %d finding(s), not posting to GitHub.\n", result.FindingCount())
			return nil
		}

		changed, err := ghClient.GetPRFiles(ctx, owner, repo, prNumber)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not fetch file list: %v\n", err)
		}
		diffFileSet := make(map[string]bool, len(changed))
		for _, f := range changed {
			diffFileSet[f] = true
		}

		ghReview, err := github.BuildReview(result, diffFileSet)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building review: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		fmt.Fprintf(os.Stderr, "Posting review (%d inline comment(s))...\n", len(ghReview.Comments))

		if err := ghClient.PostReview(ctx, owner, repo, prNumber, ghReview); err != nil {
			fmt.Fprintf(os.Stderr, "Error posting review: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(os.Stderr, "Review posted to PR #%d.\n", prNumber)
		return nil
	},
}

func init() {
	addReviewFlags(githubCmd)
	githubCmd.Flags().StringVar(&flagGHOwner, "owner", "", "GitHub repository owner (auto-detected if omitted)")
	githubCmd.Flags().StringVar(&flagGHRepo, "repo", "", "GitHub repository name (auto-detected if omitted)")
	githubCmd.Flags().BoolVar(&flagGHDryRun, "dry-run", false, "Run the review but do not post to GitHub")
}
