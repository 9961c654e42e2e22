package mcpserver

import (
	"context"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavelhq/gavel/internal/history"
	"github.com/gavelhq/gavel/internal/review"
)

func TestHandleReviewFiles_MissingPath(t *testing.T) {
	handler := handleReviewFiles(t.TempDir())

	result, err := handler(context.Background(), mcplib.CallToolRequest{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError, "missing required path argument should be a tool error")
}

func TestHandleReviewFiles_UnknownPath(t *testing.T) {
	handler := handleReviewFiles(t.TempDir())

	req := mcplib.CallToolRequest{}
	req.Params.Arguments = map[string]any{"path": "does-not-exist.go"}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError, "unreadable path should be a tool error")
}

func TestHandleHistory_EmptyProject(t *testing.T) {
	handler := handleHistory(t.TempDir())

	result, err := handler(context.Background(), mcplib.CallToolRequest{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
}

func TestHandleHistory_WithEntries(t *testing.T) {
	dir := t.TempDir()
	score := 72
	entry, ok := history.Record(&review.ReviewResult{
		Files:      []review.FileReview{{Path: "main.go"}},
		Score:      &score,
		ReviewType: "standard",
	}, "standard", "gpt-5.3-codex", "")
	require.True(t, ok)
	require.NoError(t, history.New().Append(dir, entry))

	handler := handleHistory(dir)
	result, err := handler(context.Background(), mcplib.CallToolRequest{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
}
