package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/FreePeak/cortex/pkg/server"
	"github.com/FreePeak/cortex/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/turso-mcp-server/pkg/tools"
)

var errFakeServer = errors.New("registration refused")

func toolName(tool interface{}) string {
	if t, ok := tool.(*types.Tool); ok {
		return t.Name
	}
	return ""
}

func testDescriptors() []tools.Descriptor {
	return []tools.Descriptor{
		tools.NewDescriptor("turso_execute_query", "Execute a SQL query",
			tools.Param{Name: "query", Type: tools.TypeString, Description: "SQL query to execute", Required: true},
			tools.Param{Name: "params", Type: tools.TypeArray, Description: "Query parameters", Items: tools.TypeString},
		),
		tools.NewDescriptor("turso_get_tasks", "Get tasks",
			tools.Param{Name: "limit", Type: tools.TypeNumber, Description: "Maximum rows"},
		),
		tools.NewDescriptor("turso_list_tables", "List all tables in the database"),
	}
}

func TestCreateTool(t *testing.T) {
	for _, desc := range testDescriptors() {
		tool := CreateTool(desc)
		typed, ok := tool.(*types.Tool)
		require.True(t, ok, "expected *types.Tool, got %T", tool)
		assert.Equal(t, desc.Name, typed.Name)
	}
}

func TestCreateToolParameters(t *testing.T) {
	typed, ok := CreateTool(testDescriptors()[0]).(*types.Tool)
	require.True(t, ok)
	require.Len(t, typed.Parameters, 2)

	assert.Equal(t, "query", typed.Parameters[0].Name)
	assert.Equal(t, "string", typed.Parameters[0].Type)
	assert.True(t, typed.Parameters[0].Required)

	assert.Equal(t, "params", typed.Parameters[1].Name)
	assert.Equal(t, "array", typed.Parameters[1].Type)
	assert.Equal(t, "Query parameters", typed.Parameters[1].Description)
	assert.False(t, typed.Parameters[1].Required)
}

func TestRegisterAllTools(t *testing.T) {
	dispatcher := &MockDispatcher{}
	dispatcher.On("List").Return(testDescriptors())

	srv := newFakeServer()
	registry := NewToolRegistry(srv, dispatcher)

	require.NoError(t, registry.RegisterAllTools(context.Background()))
	assert.Equal(t, []string{"turso_execute_query", "turso_get_tasks", "turso_list_tables"}, registry.Registered())
	assert.Len(t, srv.tools, 3)
}

func TestRegisterAllToolsReportsFailures(t *testing.T) {
	dispatcher := &MockDispatcher{}
	dispatcher.On("List").Return(testDescriptors())

	srv := newFakeServer()
	srv.failOn = "turso_get_tasks"
	registry := NewToolRegistry(srv, dispatcher)

	err := registry.RegisterAllTools(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 tools")
	assert.Equal(t, []string{"turso_execute_query", "turso_list_tables"}, registry.Registered())
}

func TestHandlerRoutesToDispatcher(t *testing.T) {
	dispatcher := &MockDispatcher{}
	dispatcher.On("List").Return(testDescriptors())

	params := map[string]interface{}{"query": "SELECT 1"}
	dispatcher.On("Call", mock.Anything, "turso_execute_query", params).
		Return(tools.FromString(`{"rows": []}`)).Once()

	srv := newFakeServer()
	require.NoError(t, NewToolRegistry(srv, dispatcher).RegisterAllTools(context.Background()))

	handler, ok := srv.handlers["turso_execute_query"]
	require.True(t, ok)

	result, err := handler(context.Background(), server.ToolCallRequest{Parameters: params})
	require.NoError(t, err)

	resp, ok := result.(map[string]interface{})
	require.True(t, ok)
	assert.NotContains(t, resp, "isError")
	content := resp["content"].([]map[string]interface{})
	assert.Equal(t, `{"rows": []}`, content[0]["text"])
	dispatcher.AssertExpectations(t)
}

func TestHandlerReturnsFailureEnvelopeWithoutError(t *testing.T) {
	dispatcher := &MockDispatcher{}
	dispatcher.On("List").Return(testDescriptors())
	dispatcher.On("Call", mock.Anything, "turso_list_tables", mock.Anything).
		Return(tools.FromError("no such host")).Once()

	srv := newFakeServer()
	require.NoError(t, NewToolRegistry(srv, dispatcher).RegisterAllTools(context.Background()))

	result, err := srv.handlers["turso_list_tables"](context.Background(), server.ToolCallRequest{})
	require.NoError(t, err)

	resp := result.(map[string]interface{})
	assert.Equal(t, true, resp["isError"])
	content := resp["content"].([]map[string]interface{})
	assert.Equal(t, "Error: no such host", content[0]["text"])
}
