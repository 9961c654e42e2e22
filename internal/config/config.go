package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/gavelhq/gavel/internal/providers"
)

// Config represents the gavel configuration.
type Config struct {
	Model        string        `json:"model"`
	Format       string        `json:"format"`
	FailUnder    int           `json:"failUnder"`
	ContextLines int           `json:"contextLines"`
	Include      []string      `json:"include"`
	Exclude      []string      `json:"exclude"`
	MaxDiffBytes int           `json:"maxDiffBytes"`
	Keys         KeysConfig    `json:"keys"`
	Cache        CacheConfig   `json:"cache"`
	Privacy      PrivacyConfig `json:"privacy"`
}

// KeysConfig holds persisted API keys per provider. A key stored here
// takes precedence over the provider's environment variable.
type KeysConfig struct {
	OpenAI string `json:"openai,omitempty"`
	Google string `json:"google,omitempty"`
}

// CacheConfig governs the on-disk response cache.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// PrivacyConfig selects what gets scrubbed before anything leaves
// the machine.
type PrivacyConfig struct {
	RedactSecrets bool     `json:"redactSecrets"`
	RedactPaths   []string `json:"redactPaths,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Model:        "gpt-5.3-codex",
		Format:       "text",
		FailUnder:    0,
		ContextLines: 3,
		Include:      []string{"**/*"},
		Exclude:      []string{"vendor/**", "**/*.gen.go", "**/dist/**"},
		MaxDiffBytes: 500000,
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secrets*"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for gavel.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gavel"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "gavel"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "gavel"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "gavel"), nil
	default:
		return filepath.Join(home, ".config", "gavel"), nil
	}
}

// ConfigPath returns the location of the user config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile reads the user config file. A missing file yields a zero
// Config and no error.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to the user config file, creating its directory
// first. Stored API keys keep the file at mode 0600.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Load resolves the effective config without a project overlay. Later
// layers win: defaults, then the user file, then GAVEL_* environment
// variables, then flag overrides.
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

// LoadWithProject builds the effective config for a project rooted at root:
// defaults <- user file <- project overlay <- env <- overrides. The project's
// focus list is returned alongside because Config does not carry it.
func LoadWithProject(root string, overrides map[string]string) (Config, []string, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, nil, err
	}
	mergeFile(&cfg, fileCfg)

	proj, err := LoadProject(root)
	if err != nil {
		return Config{}, nil, err
	}
	ApplyProject(&cfg, proj)

	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, proj.Focus, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.FailUnder > 0 {
		dst.FailUnder = src.FailUnder
	}
	if src.ContextLines > 0 {
		dst.ContextLines = src.ContextLines
	}
	if len(src.Include) > 0 {
		dst.Include = src.Include
	}
	if len(src.Exclude) > 0 {
		dst.Exclude = src.Exclude
	}
	if src.MaxDiffBytes > 0 {
		dst.MaxDiffBytes = src.MaxDiffBytes
	}
	if src.Keys.OpenAI != "" {
		dst.Keys.OpenAI = src.Keys.OpenAI
	}
	if src.Keys.Google != "" {
		dst.Keys.Google = src.Keys.Google
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	// JSON cannot tell false from unset for bools, so an explicit
	// cache.enabled=false in the file cannot defeat the default here.
	// GAVEL_NO_CACHE or --no-cache is the supported off switch.
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
	if len(src.Privacy.RedactPaths) > 0 {
		dst.Privacy.RedactPaths = src.Privacy.RedactPaths
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("GAVEL_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("GAVEL_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("GAVEL_FAIL_UNDER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FailUnder = n
		}
	}
	if v := os.Getenv("GAVEL_CONTEXT_LINES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ContextLines = n
		}
	}
	if v := os.Getenv("GAVEL_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if os.Getenv("GAVEL_NO_CACHE") != "" {
		cfg.Cache.Enabled = false
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["failUnder"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FailUnder = n
		}
	}
	if v, ok := overrides["contextLines"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ContextLines = n
		}
	}
	if v, ok := overrides["maxDiffBytes"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxDiffBytes = n
		}
	}
}

// SetField sets one field addressed by its config key.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "failUnder":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("failUnder must be an integer: %w", err)
		}
		if n < 0 || n > 100 {
			return fmt.Errorf("failUnder must be between 0 and 100")
		}
		cfg.FailUnder = n
	case "contextLines":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("contextLines must be an integer: %w", err)
		}
		cfg.ContextLines = n
	case "maxDiffBytes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxDiffBytes must be an integer: %w", err)
		}
		cfg.MaxDiffBytes = n
	case "openaiKey":
		cfg.Keys.OpenAI = value
	case "googleKey":
		cfg.Keys.Google = value
	case "cacheDir":
		cfg.Cache.Dir = value
	case "cacheTTL":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cacheTTL must be an integer: %w", err)
		}
		cfg.Cache.TTLSeconds = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// GetField returns a single config field as a string by key name.
func GetField(cfg Config, key string) (string, error) {
	switch key {
	case "model":
		return cfg.Model, nil
	case "format":
		return cfg.Format, nil
	case "failUnder":
		return strconv.Itoa(cfg.FailUnder), nil
	case "contextLines":
		return strconv.Itoa(cfg.ContextLines), nil
	case "maxDiffBytes":
		return strconv.Itoa(cfg.MaxDiffBytes), nil
	case "openaiKey":
		return cfg.Keys.OpenAI, nil
	case "googleKey":
		return cfg.Keys.Google, nil
	case "cacheDir":
		return cfg.Cache.Dir, nil
	case "cacheTTL":
		return strconv.Itoa(cfg.Cache.TTLSeconds), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// APIKey resolves the key for a provider: the persisted config value
// first, then the provider's environment variable.
func (c Config) APIKey(p providers.Provider) string {
	var stored string
	switch p {
	case providers.ProviderGoogle:
		stored = c.Keys.Google
	default:
		stored = c.Keys.OpenAI
	}
	if stored != "" {
		return stored
	}
	return os.Getenv(p.EnvKey())
}
