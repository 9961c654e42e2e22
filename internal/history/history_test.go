package history_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavelhq/gavel/internal/history"
	"github.com/gavelhq/gavel/internal/review"
)

func TestStore_AppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	s := history.New()

	entry := history.Entry{
		Timestamp: "2026-08-20T10:00:00Z",
		Commit:    "abc1234",
		Mode:      "diff",
		Model:     "gpt-5.3-codex",
		Score:     72,
		Files:     3,
		Findings:  5,
		Dangers:   1,
	}

	err := s.Append(dir, entry)
	require.NoError(t, err)

	entries, err := s.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 72, entries[0].Score)
	assert.Equal(t, "abc1234", entries[0].Commit)
	assert.Equal(t, "diff", entries[0].Mode)
}

func TestStore_AppendMultiple(t *testing.T) {
	dir := t.TempDir()
	s := history.New()

	require.NoError(t, s.Append(dir, history.Entry{Timestamp: "t1", Score: 47}))
	require.NoError(t, s.Append(dir, history.Entry{Timestamp: "t2", Score: 62}))
	require.NoError(t, s.Append(dir, history.Entry{Timestamp: "t3", Score: 85}))

	entries, err := s.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 47, entries[0].Score)
	assert.Equal(t, 85, entries[2].Score)
}

func TestStore_LoadEmpty(t *testing.T) {
	dir := t.TempDir()
	s := history.New()

	entries, err := s.Load(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "deep", "nested")
	s := history.New()

	err := s.Append(nested, history.Entry{Timestamp: "t1", Score: 50})
	require.NoError(t, err)

	entries, err := s.Load(nested)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecord(t *testing.T) {
	score := 64
	result := &review.ReviewResult{
		ReviewType: review.ReviewTypeDiff,
		Score:      &score,
		Files: []review.FileReview{
			{
				Path:    "main.go",
				Dangers: []review.Finding{{Line: 3, Description: "nil deref"}},
				Issues:  []review.Finding{{Line: 9, Description: "dropped error"}},
			},
			{Path: "util.go"},
		},
	}

	entry, ok := history.Record(result, "diff", "gpt-5.3-codex", "abc1234")
	require.True(t, ok)
	assert.Equal(t, 64, entry.Score)
	assert.Equal(t, 2, entry.Files)
	assert.Equal(t, 2, entry.Findings)
	assert.Equal(t, 1, entry.Dangers)
	assert.Equal(t, "gpt-5.3-codex", entry.Model)
	assert.NotEmpty(t, entry.Timestamp)
}

func TestRecord_NoScore(t *testing.T) {
	result := &review.ReviewResult{
		ReviewType: review.ReviewTypeStandard,
		Files:      []review.FileReview{{Path: "main.go"}},
	}

	_, ok := history.Record(result, "file", "gpt-5.3-codex", "")
	assert.False(t, ok, "single-file results without a score must not be recorded")
}

func TestDelta(t *testing.T) {
	entries := []history.Entry{
		{Score: 47},
		{Score: 62},
	}

	delta, ok := history.Delta(entries)
	require.True(t, ok)
	assert.Equal(t, 15, delta)

	_, ok = history.Delta(entries[:1])
	assert.False(t, ok)
}
