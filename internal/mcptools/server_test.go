package mcptools

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupServerClient wires an MCP server and client together using in-memory
// transports.
func setupServerClient(t *testing.T) (*mcp.ClientSession, *fixture) {
	t.Helper()

	f := newFixture(t)
	server := NewHiveMCPServer(f.svc)

	st, ct := mcp.NewInMemoryTransports()
	ctx := context.Background()

	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
	})

	return session, f
}

func decodeStructured(t *testing.T, result *mcp.CallToolResult, dst any) {
	t.Helper()
	require.NotNil(t, result.StructuredContent, "expected structured content")
	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}

func TestMCPListTools(t *testing.T) {
	session, _ := setupServerClient(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)

	assert.Equal(t, []string{
		"create_project",
		"deliberate",
		"get_project_status",
		"get_transcript",
		"list_projects",
		"list_sessions",
	}, names)
}

func TestMCPDeliberateThenTranscript(t *testing.T) {
	session, _ := setupServerClient(t)
	ctx := context.Background()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "deliberate",
		Arguments: DeliberateInput{
			Topic: "Choose a message queue",
			Type:  "architecture_design",
		},
	})
	require.NoError(t, err)
	require.False(t, result.IsError, "deliberate should not return an error")

	var out DeliberateOutput
	decodeStructured(t, result, &out)
	require.NotEmpty(t, out.SessionID)
	assert.True(t, out.ConsensusReached)

	result, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_transcript",
		Arguments: GetTranscriptInput{SessionID: out.SessionID, Type: "consensus"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError, "get_transcript should not return an error")

	var tr GetTranscriptOutput
	decodeStructured(t, result, &tr)
	assert.Equal(t, "completed", tr.Session.Status)
	require.NotEmpty(t, tr.Messages)
	for _, m := range tr.Messages {
		assert.Equal(t, "consensus", m.Type)
	}
}

func TestMCPListProjectsEmpty(t *testing.T) {
	session, _ := setupServerClient(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "list_projects",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out ListProjectsOutput
	decodeStructured(t, result, &out)
	assert.Empty(t, out.Projects)
}

func TestMCPToolErrorSetsIsError(t *testing.T) {
	session, _ := setupServerClient(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "get_transcript",
		Arguments: GetTranscriptInput{SessionID: "missing"},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError, "unknown session should set IsError")
}

func TestMCPCallUnknownTool(t *testing.T) {
	session, _ := setupServerClient(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "nonexistent_tool",
		Arguments: map[string]any{},
	})

	// The SDK may fail at the protocol level or set IsError on the result.
	if err != nil {
		return
	}
	require.NotNil(t, result)
	assert.True(t, result.IsError, "calling an unknown tool should set IsError")
}
