package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const (
	hookMarkerStart = "# >>> gavel pre-commit hook >>>"
	hookMarkerEnd   = "# <<< gavel pre-commit hook <<<"
)

var (
	hookFailUnder int
	hookFormat    string
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage the git pre-commit hook",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install gavel as a git pre-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		section := generateHookScript(hookFailUnder, hookFormat)

		existing, err := os.ReadFile(hookPath)
		if err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error reading hook: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		content := "#!/bin/sh\n" + section
		if len(existing) > 0 {
			content = replaceHookSection(string(existing), section)
		}

		if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating hooks directory: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		if !writeHook(hookPath, content) {
			return nil
		}

		fmt.Fprintf(os.Stdout, "Installed gavel pre-commit hook at %s\n", hookPath)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove gavel pre-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		existing, err := os.ReadFile(hookPath)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(os.Stdout, "No pre-commit hook installed.")
				return nil
			}
			fmt.Fprintf(os.Stderr, "Error reading hook: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		content := removeHookSection(string(existing))

		// Delete the file outright when only a shebang is left.
		switch strings.TrimSpace(content) {
		case "", "#!/bin/sh", "#!/bin/bash":
			if err := os.Remove(hookPath); err != nil {
				fmt.Fprintf(os.Stderr, "Error removing hook: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			fmt.Fprintf(os.Stdout, "Removed gavel pre-commit hook at %s\n", hookPath)
			return nil
		}

		if !writeHook(hookPath, content) {
			return nil
		}

		fmt.Fprintf(os.Stdout, "Removed gavel section from %s\n", hookPath)
		return nil
	},
}

func getHookPath() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--git-dir").Output()
	if err != nil {
		return "", fmt.Errorf("not inside a git repository")
	}
	return filepath.Join(strings.TrimSpace(string(out)), "hooks", "pre-commit"), nil
}

// writeHook writes the hook file executable. On failure it reports the
// error, sets the process exit code, and returns false.
func writeHook(path, content string) bool {
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing hook: %v\n", err)
		exitCode = ExitRuntimeError
		return false
	}
	return true
}

func generateHookScript(failUnder int, format string) string {
	return fmt.Sprintf(`%s
gavel review diff --staged --fail-under %d --format %s
GAVEL_EXIT=$?
if [ $GAVEL_EXIT -eq 1 ]; then
  echo "gavel: review score below threshold, commit blocked"
  exit 1
elif [ $GAVEL_EXIT -ge 2 ]; then
  echo "gavel: warning: review encountered an error (exit $GAVEL_EXIT), allowing commit"
fi
%s
`, hookMarkerStart, failUnder, format, hookMarkerEnd)
}

// spliceHookSection swaps the marker-delimited block for repl, eating the
// newline after the end marker. ok is false when no block exists.
func spliceHookSection(existing, repl string) (out string, ok bool) {
	start := strings.Index(existing, hookMarkerStart)
	end := strings.Index(existing, hookMarkerEnd)
	if start == -1 || end == -1 {
		return existing, false
	}
	after := strings.TrimPrefix(existing[end+len(hookMarkerEnd):], "\n")
	return existing[:start] + repl + after, true
}

func replaceHookSection(existing, section string) string {
	if out, ok := spliceHookSection(existing, section); ok {
		return out
	}
	if !strings.HasSuffix(existing, "\n") {
		existing += "\n"
	}
	return existing + section
}

func removeHookSection(existing string) string {
	out, _ := spliceHookSection(existing, "")
	return out
}

func init() {
	hookCmd.AddCommand(hookInstallCmd, hookUninstallCmd)
	hookInstallCmd.Flags().IntVar(&hookFailUnder, "fail-under", 60, "Block the commit when the review score is below this value")
	hookInstallCmd.Flags().StringVar(&hookFormat, "format", "text", "Output format (text, json, markdown, sarif)")
}
