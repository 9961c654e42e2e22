package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gavelhq/gavel/internal/review"
)

const historyFile = ".gavel/history.json"

// Entry records one scored review run.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Commit    string `json:"commit,omitempty"`
	Mode      string `json:"mode"`
	Model     string `json:"model"`
	Score     int    `json:"score"`
	Files     int    `json:"files"`
	Findings  int    `json:"findings"`
	Dangers   int    `json:"dangers"`
}

// Store reads and appends per-project score history backed by a JSON
// file under the project root.
type Store struct{}

func New() *Store {
	return &Store{}
}

// Append adds one entry to the project's history, creating the file and
// its directory on first use.
func (s *Store) Append(projectPath string, entry Entry) error {
	entries, err := s.Load(projectPath)
	if err != nil {
		return err
	}

	entries = append(entries, entry)

	fp := filepath.Join(projectPath, historyFile)
	if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(fp, data, 0o644)
}

// Load returns all recorded entries, oldest first. A missing history
// file is not an error.
func (s *Store) Load(projectPath string) ([]Entry, error) {
	fp := filepath.Join(projectPath, historyFile)

	data, err := os.ReadFile(fp)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// Record builds an Entry from a finished run. The second return is false
// when the result carries no cross-file score (single-file reviews are
// not recorded).
func Record(result *review.ReviewResult, mode, model, commit string) (Entry, bool) {
	score, ok := result.ScoreValue()
	if !ok {
		return Entry{}, false
	}
	return Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Commit:    commit,
		Mode:      mode,
		Model:     model,
		Score:     score,
		Files:     len(result.Files),
		Findings:  result.FindingCount(),
		Dangers:   result.DangerCount(),
	}, true
}

// Delta returns the score change between the two most recent entries.
// The second return is false with fewer than two entries.
func Delta(entries []Entry) (int, bool) {
	if len(entries) < 2 {
		return 0, false
	}
	return entries[len(entries)-1].Score - entries[len(entries)-2].Score, true
}
