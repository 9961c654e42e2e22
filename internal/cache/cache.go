package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// entry is the on-disk form of one cached completion.
type entry struct {
	Key      string    `json:"key"`
	Response string    `json:"response"`
	Created  time.Time `json:"created"`
	TTL      int       `json:"ttlSeconds"`
}

// Cache stores model responses as JSON files named by key hash. A
// disabled Cache is a valid value whose Get always misses and whose Put
// is a no-op.
type Cache struct {
	dir        string
	ttlSeconds int
	enabled    bool
}

// New creates a Cache rooted at dir. An empty dir selects the platform
// cache directory.
func New(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{}, nil
	}
	if dir == "" {
		d, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{dir: dir, ttlSeconds: ttlSeconds, enabled: true}, nil
}

// Get returns the cached response for key. Expired entries are removed
// on read and reported as misses.
func (c *Cache) Get(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	path := c.entryPath(key)
	e, ok := readEntryFile(path)
	if !ok {
		return "", false
	}
	if c.stale(e) {
		os.Remove(path)
		return "", false
	}
	return e.Response, true
}

// Put stores a response under key. An error only means nothing was
// cached; callers treat the write as best-effort.
func (c *Cache) Put(key, response string) error {
	if !c.enabled {
		return nil
	}
	data, err := json.Marshal(entry{
		Key:      HashKey(key),
		Response: response,
		Created:  time.Now(),
		TTL:      c.ttlSeconds,
	})
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	return os.WriteFile(c.entryPath(key), data, 0o644)
}

// Clear removes every entry and reports how many were removed.
func (c *Cache) Clear() (int, error) {
	if !c.enabled || c.dir == "" {
		return 0, nil
	}
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("listing cache entries: %w", err)
	}
	var removed int
	for _, m := range matches {
		if os.Remove(m) == nil {
			removed++
		}
	}
	return removed, nil
}

// Stats describes the cache contents.
type Stats struct {
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Expired    int    `json:"expired"`
}

// GetStats reports entry count, total size on disk, and how many
// entries are past their TTL.
func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Dir: c.dir}
	if !c.enabled || c.dir == "" {
		return stats, nil
	}
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return stats, fmt.Errorf("listing cache entries: %w", err)
	}
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()
		if e, ok := readEntryFile(m); ok && c.stale(e) {
			stats.Expired++
		}
	}
	return stats, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Enabled reports whether caching is active.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// HashKey returns the SHA-256 hex digest of the key material.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// BuildKey assembles the raw key material for one completion. Any change
// to provider, model, or prompt text must produce a different key.
func BuildKey(provider, model, prompt string) string {
	return fmt.Sprintf("%s:%s:%s", provider, model, prompt)
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, HashKey(key)+".json")
}

// stale reports whether an entry has outlived the cache TTL. A zero TTL
// means entries never expire.
func (c *Cache) stale(e entry) bool {
	return c.ttlSeconds > 0 && time.Since(e.Created) > time.Duration(c.ttlSeconds)*time.Second
}

func readEntryFile(path string) (entry, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return entry{}, false
	}
	return e, true
}

// defaultCacheDir resolves XDG_CACHE_HOME first on every platform so the
// location stays overridable in tests and containers.
func defaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "gavel"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "gavel"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "gavel", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "gavel", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "gavel"), nil
	}
}
