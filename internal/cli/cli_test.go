package cli

import (
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/history"
	"github.com/gavelhq/gavel/internal/providers"
	"github.com/gavelhq/gavel/internal/tokens"
)

// resetFlags returns every package-level flag variable to its zero value
// so tests do not leak state into each other.
func resetFlags() {
	flagPaths = ""
	flagExclude = ""
	flagModel = ""
	flagFormat = ""
	flagOut = ""
	flagFailUnder = 0
	flagFocus = ""
	flagBlame = false
	flagNoRedact = false
	flagNoCache = false
	flagStaged = false
	flagCommit = ""
	flagRange = ""
	flagMergeBase = false
	flagContextLines = 0
	flagMaxDiffBytes = 0
	flagGHOwner = ""
	flagGHRepo = ""
	flagGHDryRun = false
	flagHistoryLimit = 0
	flagMCPPath = ""
	hookFailUnder = 0
	hookFormat = ""
}

func TestSplitComma(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string // parts joined with "|"; empty means nil result
	}{
		"empty input":        {"", ""},
		"one pattern":        {"vendor/**", "vendor/**"},
		"several patterns":   {"a,b,c", "a|b|c"},
		"surrounding spaces": {" a , b ", "a|b"},
		"blank segments":     {"a,,b", "a|b"},
		"only separators":    {",,,", ""},
		"trailing separator": {"x,y,", "x|y"},
		"leading separator":  {",x", "x"},
		"glob patterns":      {"*.go,src/**/*.ts", "*.go|src/**/*.ts"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := strings.Join(splitComma(tc.in), "|")
			if got != tc.want {
				t.Errorf("splitComma(%q) parts = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestBuildOverrides(t *testing.T) {
	t.Run("no flags set", func(t *testing.T) {
		resetFlags()
		if m := buildOverrides(); len(m) != 0 {
			t.Errorf("expected an empty override map, got %v", m)
		}
	})

	t.Run("every flag set", func(t *testing.T) {
		resetFlags()
		flagModel = "gemini-2.5-pro"
		flagFormat = "json"
		flagFailUnder = 70
		flagContextLines = 5
		flagMaxDiffBytes = 1000

		want := map[string]string{
			"model":        "gemini-2.5-pro",
			"format":       "json",
			"failUnder":    "70",
			"contextLines": "5",
			"maxDiffBytes": "1000",
		}
		if got := buildOverrides(); !maps.Equal(got, want) {
			t.Errorf("overrides = %v, want %v", got, want)
		}
	})

	t.Run("zero ints stay unset", func(t *testing.T) {
		resetFlags()
		flagModel = "gpt-5.2"
		got := buildOverrides()
		if len(got) != 1 || got["model"] != "gpt-5.2" {
			t.Errorf("overrides = %v, want only the model entry", got)
		}
	})
}

func TestBuildDiffOpts(t *testing.T) {
	cfg := config.Config{
		ContextLines: 4,
		MaxDiffBytes: 250000,
		Include:      []string{"**/*"},
		Exclude:      []string{"vendor/**", "**/*.gen.go"},
	}

	t.Run("config values pass through", func(t *testing.T) {
		resetFlags()
		opts := buildDiffOpts(cfg)
		if opts.ContextLines != 4 || opts.MaxDiffBytes != 250000 {
			t.Errorf("got lines=%d bytes=%d, want lines=4 bytes=250000",
				opts.ContextLines, opts.MaxDiffBytes)
		}
		if strings.Join(opts.Include, ",") != "**/*" {
			t.Errorf("Include = %v, want the config include set", opts.Include)
		}
		if strings.Join(opts.Exclude, ",") != "vendor/**,**/*.gen.go" {
			t.Errorf("Exclude = %v, want the config exclude set", opts.Exclude)
		}
	})

	t.Run("paths flag replaces the include set", func(t *testing.T) {
		resetFlags()
		flagPaths = "cmd/**,internal/**"
		opts := buildDiffOpts(cfg)
		if strings.Join(opts.Include, ",") != "cmd/**,internal/**" {
			t.Errorf("Include = %v, want the flag patterns alone", opts.Include)
		}
	})

	t.Run("exclude flag extends the config excludes", func(t *testing.T) {
		resetFlags()
		flagExclude = "testdata/**"
		opts := buildDiffOpts(cfg)
		if strings.Join(opts.Exclude, ",") != "vendor/**,**/*.gen.go,testdata/**" {
			t.Errorf("Exclude = %v, want config excludes then the flag pattern", opts.Exclude)
		}
	})
}

func TestBuildScanOpts(t *testing.T) {
	cfg := config.Config{
		Include: []string{"**/*.go"},
		Exclude: []string{"vendor/**"},
	}

	t.Run("config values pass through", func(t *testing.T) {
		resetFlags()
		opts := buildScanOpts(cfg)
		if strings.Join(opts.Include, ",") != "**/*.go" ||
			strings.Join(opts.Exclude, ",") != "vendor/**" {
			t.Errorf("opts = %+v, want config include and exclude sets", opts)
		}
	})

	t.Run("flags override and extend", func(t *testing.T) {
		resetFlags()
		flagPaths = "src/**"
		flagExclude = "docs/**"
		opts := buildScanOpts(cfg)
		if strings.Join(opts.Include, ",") != "src/**" {
			t.Errorf("Include = %v, want the flag pattern alone", opts.Include)
		}
		if strings.Join(opts.Exclude, ",") != "vendor/**,docs/**" {
			t.Errorf("Exclude = %v, want config exclude then the flag pattern", opts.Exclude)
		}
	})
}

func TestVersionCmd(t *testing.T) {
	if version == "" {
		t.Fatal("version constant must not be empty")
	}
	if err := versionCmd.Execute(); err != nil {
		t.Errorf("version: %v", err)
	}
}

func TestModelsList(t *testing.T) {
	modelsCmd.SetArgs([]string{"list"})
	if err := modelsCmd.Execute(); err != nil {
		t.Errorf("models list: %v", err)
	}
}

func TestModelsCatalog_CoversBothProviders(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range tokens.KnownModels() {
		seen[providers.Resolve(m).String()] = true
	}
	for _, p := range []string{"openai", "google"} {
		if !seen[p] {
			t.Errorf("catalog lists no %s models", p)
		}
	}
}

func TestConfigInit_CreatesFile(t *testing.T) {
	resetFlags()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)

	configCmd.SetArgs([]string{"init"})
	if err := configCmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmp, "gavel", "config.json"))
	if err != nil {
		t.Fatalf("reading created config: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("created config is not JSON: %v", err)
	}
	if cfg.Model == "" {
		t.Error("created config carries no default model")
	}
}

func TestConfigInit_KeepsExistingFile(t *testing.T) {
	resetFlags()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)

	cfgDir := filepath.Join(tmp, "gavel")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	existing := []byte(`{"model":"gpt-4o"}`)
	if err := os.WriteFile(filepath.Join(cfgDir, "config.json"), existing, 0o644); err != nil {
		t.Fatal(err)
	}

	configCmd.SetArgs([]string{"init"})
	if err := configCmd.Execute(); err != nil {
		t.Fatalf("init over existing file: %v", err)
	}

	after, err := os.ReadFile(filepath.Join(cfgDir, "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != string(existing) {
		t.Errorf("init rewrote an existing config: %s", after)
	}
}

func TestConfigSet(t *testing.T) {
	resetFlags()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)

	configCmd.SetArgs([]string{"set", "model", "gemini-2.5-pro"})
	if err := configCmd.Execute(); err != nil {
		t.Fatalf("set: %v", err)
	}

	cfg, err := config.LoadFile()
	if err != nil {
		t.Fatalf("reading back config: %v", err)
	}
	if cfg.Model != "gemini-2.5-pro" {
		t.Errorf("stored model = %q, want gemini-2.5-pro", cfg.Model)
	}
}

func TestConfigSet_RejectsUnknownKey(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	configCmd.SetArgs([]string{"set", "nonsense", "value"})
	if err := configCmd.Execute(); err == nil {
		t.Error("set accepted a key that does not exist")
	}
}

func TestConfigSet_RequiresTwoArgs(t *testing.T) {
	resetFlags()
	configCmd.SetArgs([]string{"set", "model"})
	if err := configCmd.Execute(); err == nil {
		t.Error("set accepted a single argument")
	}
}

func TestConfigGet_RejectsUnknownKey(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	configCmd.SetArgs([]string{"get", "nonsense"})
	if err := configCmd.Execute(); err == nil {
		t.Error("get accepted a key that does not exist")
	}
}

func TestConfigShowAndPath(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	for _, sub := range []string{"show", "path"} {
		configCmd.SetArgs([]string{sub})
		if err := configCmd.Execute(); err != nil {
			t.Errorf("config %s: %v", sub, err)
		}
	}
}

func TestCacheShow(t *testing.T) {
	resetFlags()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("XDG_CACHE_HOME", tmp)

	cacheCmd.SetArgs([]string{"show"})
	if err := cacheCmd.Execute(); err != nil {
		t.Errorf("cache show: %v", err)
	}
}

func TestCacheClear_RemovesEntries(t *testing.T) {
	resetFlags()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("XDG_CACHE_HOME", tmp)

	cacheDir := filepath.Join(tmp, "gavel")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cacheDir, "abc123.json"), []byte(`{"key":"x"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cacheCmd.SetArgs([]string{"clear"})
	if err := cacheCmd.Execute(); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	if remaining, _ := filepath.Glob(filepath.Join(cacheDir, "*.json")); len(remaining) != 0 {
		t.Errorf("entries left after clear: %v", remaining)
	}
}

func TestHistoryCmd_EmptyProject(t *testing.T) {
	resetFlags()
	historyCmd.SetArgs([]string{t.TempDir()})
	if err := historyCmd.Execute(); err != nil {
		t.Errorf("history on empty project: %v", err)
	}
}

func TestHistoryCmd_WithEntries(t *testing.T) {
	resetFlags()
	dir := t.TempDir()

	store := history.New()
	for _, e := range []history.Entry{
		{Timestamp: "2026-08-20T10:00:00Z", Mode: "standard", Model: "gpt-5.3-codex", Score: 61, Files: 4, Findings: 9, Dangers: 2},
		{Timestamp: "2026-08-21T10:00:00Z", Mode: "standard", Model: "gpt-5.3-codex", Score: 74, Files: 4, Findings: 5, Dangers: 0},
	} {
		if err := store.Append(dir, e); err != nil {
			t.Fatal(err)
		}
	}

	historyCmd.SetArgs([]string{dir})
	if err := historyCmd.Execute(); err != nil {
		t.Errorf("history with entries: %v", err)
	}
}

func TestGithubCmd_RejectsNonNumericPR(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	saved := exitCode
	t.Cleanup(func() { exitCode = saved })
	exitCode = ExitSuccess

	githubCmd.SetArgs([]string{"abc"})
	if err := githubCmd.Execute(); err != nil {
		t.Fatalf("github: %v", err)
	}
	if exitCode != ExitUsageError {
		t.Errorf("exitCode = %d after non-numeric PR, want %d", exitCode, ExitUsageError)
	}
}

func TestGithubCmd_RequiresPRArg(t *testing.T) {
	resetFlags()
	githubCmd.SetArgs([]string{})
	if err := githubCmd.Execute(); err == nil {
		t.Error("github ran without a PR number")
	}
}

func TestReviewCmd_Subcommands(t *testing.T) {
	var names []string
	for _, sub := range reviewCmd.Commands() {
		names = append(names, sub.Name())
	}
	joined := strings.Join(names, " ")
	for _, want := range []string{"dir", "file", "diff"} {
		if !strings.Contains(joined, want) {
			t.Errorf("review is missing the %q subcommand (have: %s)", want, joined)
		}
	}
}

func TestReviewFileCmd_RequiresPath(t *testing.T) {
	resetFlags()
	reviewCmd.SetArgs([]string{"file"})
	if err := reviewCmd.Execute(); err == nil {
		t.Error("review file ran without a path argument")
	}
}

func TestMCPCmd_HasPathFlag(t *testing.T) {
	if mcpCmd.Flags().Lookup("path") == nil {
		t.Error("mcp is missing its --path flag")
	}
}

func TestExitCodeContract(t *testing.T) {
	ordered := []int{ExitSuccess, ExitFindings, ExitUsageError, ExitAuthError, ExitRuntimeError}
	for want, code := range ordered {
		if code != want {
			t.Errorf("contract position %d holds %d", want, code)
		}
	}
}
