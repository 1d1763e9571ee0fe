package mcp_test

import (
	"context"
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/sortviz/pkg/mcp"
	"github.com/Sumatoshi-tech/sortviz/pkg/sorting"
)

// connect starts srv on an in-memory transport and returns a connected client
// session. Everything is torn down with the test.
func connect(t *testing.T, srv *mcp.Server) *mcpsdk.ClientSession {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return session
}

func callTool(t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	return result
}

func firstText(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok, "first content is %T", result.Content[0])

	return text.Text
}

func TestMCPServer_InMemoryTransport_ToolsList(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{})
	session := connect(t, srv)

	toolsResult, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, toolsResult)

	toolNames := make([]string, 0, len(toolsResult.Tools))
	for _, tool := range toolsResult.Tools {
		toolNames = append(toolNames, tool.Name)
	}

	assert.ElementsMatch(t, []string{mcp.ToolNameAlgorithms, mcp.ToolNameRun}, toolNames)
	assert.Equal(t, []string{mcp.ToolNameAlgorithms, mcp.ToolNameRun}, srv.ListToolNames())

	for _, tool := range toolsResult.Tools {
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}
}

func TestMCPServer_InMemoryTransport_CallAlgorithms(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := callTool(t, session, mcp.ToolNameAlgorithms, map[string]any{})
	assert.False(t, result.IsError)

	var entries []mcp.AlgorithmEntry
	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &entries))
	require.Len(t, entries, len(sorting.Algorithms()))

	for i, alg := range sorting.Algorithms() {
		assert.Equal(t, alg, entries[i].ID)
		assert.Equal(t, alg.Info(), entries[i].Info)
	}
}

func TestMCPServer_InMemoryTransport_CallRun(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := callTool(t, session, mcp.ToolNameRun, map[string]any{
		"algorithm":      "insertion",
		"values":         []int{5, 3, 8, 1, 9, 2},
		"include_events": true,
	})
	require.False(t, result.IsError, firstText(t, result))

	var out mcp.RunOutput
	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &out))

	assert.Equal(t, sorting.Insertion, out.Algorithm)
	assert.Equal(t, []int{5, 3, 8, 1, 9, 2}, out.Input)
	assert.Equal(t, []int{1, 2, 3, 5, 8, 9}, out.Values)
	assert.False(t, out.Cancelled)
	assert.Positive(t, out.Stats.Comparisons)
	assert.NotEmpty(t, out.Events)
}

func TestMCPServer_InMemoryTransport_CallRunGenerated(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	run := func() mcp.RunOutput {
		result := callTool(t, session, mcp.ToolNameRun, map[string]any{
			"algorithm": "quick",
			"size":      40,
			"seed":      9,
		})
		require.False(t, result.IsError, firstText(t, result))

		var out mcp.RunOutput
		require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &out))

		return out
	}

	first, second := run(), run()

	assert.Len(t, first.Input, 40)
	assert.True(t, slices.IsSorted(first.Values))
	assert.Empty(t, first.Events)
	assert.Equal(t, first.Input, second.Input)
	assert.Equal(t, first.Stats.Comparisons, second.Stats.Comparisons)
}

func TestMCPServer_InMemoryTransport_CallRun_Error(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "unknown algorithm", args: map[string]any{"algorithm": "bogo"}, want: sorting.ErrUnknownAlgorithm.Error()},
		{name: "values and size", args: map[string]any{"algorithm": "merge", "values": []int{2, 1}, "size": 10}, want: mcp.ErrValuesAndSize.Error()},
		{name: "size out of range", args: map[string]any{"algorithm": "merge", "size": 500}, want: "500"},
		{name: "non-positive values", args: map[string]any{"algorithm": "quick", "values": []int{0, -5, 3}}, want: mcp.ErrNonPositiveValue.Error()},
	}

	for _, tt := range tests {
		result := callTool(t, session, mcp.ToolNameRun, tt.args)

		assert.True(t, result.IsError, tt.name)
		assert.Contains(t, firstText(t, result), tt.want, tt.name)
	}
}
