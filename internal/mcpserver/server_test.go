package mcpserver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavelhq/gavel/internal/mcpserver"
)

func TestNew(t *testing.T) {
	s := mcpserver.New(".")
	require.NotNil(t, s)
}

func TestServerHasTools(t *testing.T) {
	s := mcpserver.New(".")
	require.NotNil(t, s)

	tools := s.ListTools()
	require.NotNil(t, tools)

	expectedTools := []string{
		"gavel_review_files",
		"gavel_review_diff",
		"gavel_history",
	}

	for _, name := range expectedTools {
		_, exists := tools[name]
		assert.True(t, exists, "tool %q should be registered", name)
	}

	assert.Len(t, tools, len(expectedTools), "should have exactly %d tools", len(expectedTools))
}
