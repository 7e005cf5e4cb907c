package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/turso-mcp-server/pkg/tools"
)

// cleanEnv points the commands at defaults without touching any database
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"CONFIG_FILE", "TURSO_DATABASE_URL", "TURSO_AUTH_TOKEN", "QUERY_TIMEOUT",
		"MCP_TOOL_PREFIX", "STRICT_IDENTIFIERS", "LOG_LEVEL", "LOG_FORMAT",
		"METRICS_ADDR", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE",
	} {
		t.Setenv(v, "")
		require.NoError(t, os.Unsetenv(v))
	}
	t.Chdir(t.TempDir())
}

func TestToolsCommandJSON(t *testing.T) {
	cleanEnv(t)

	var out bytes.Buffer
	code := run(context.Background(), []string{"tools", "--json"}, &out)
	require.Equal(t, exitCodeSuccess, code)

	var listed []map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &listed))
	require.NotEmpty(t, listed)
	assert.Equal(t, "turso_execute_query", listed[0]["name"])
	assert.Contains(t, listed[0], "inputSchema")
}

func TestToolsCommandTable(t *testing.T) {
	cleanEnv(t)
	t.Setenv("MCP_TOOL_PREFIX", "mem_")

	var out bytes.Buffer
	code := run(context.Background(), []string{"tools"}, &out)
	require.Equal(t, exitCodeSuccess, code)
	assert.Contains(t, out.String(), "mem_create_table")
	assert.Contains(t, out.String(), "tableName, schema")
}

func TestCallCommandUnknownTool(t *testing.T) {
	cleanEnv(t)

	var out bytes.Buffer
	code := run(context.Background(), []string{"call", "turso_does_not_exist"}, &out)
	assert.Equal(t, exitCodeError, code)
	assert.Equal(t, "Error: Unknown tool: turso_does_not_exist\n", out.String())
}

func TestCallCommandValidationFailsWithoutDatabase(t *testing.T) {
	cleanEnv(t)

	var out bytes.Buffer
	code := run(context.Background(), []string{"call", "create_table", "--args", `{"tableName": "notes"}`}, &out)
	assert.Equal(t, exitCodeError, code)
	assert.Equal(t, "Error: tableName and schema are required\n", out.String())
}

func TestCallCommandRejectsBadArgs(t *testing.T) {
	cleanEnv(t)

	var out bytes.Buffer
	code := run(context.Background(), []string{"call", "list_tables", "--args", "not json"}, &out)
	assert.Equal(t, exitCodeError, code)
	assert.Empty(t, out.String())
}

func TestInvalidConfigurationFails(t *testing.T) {
	cleanEnv(t)
	t.Setenv("TURSO_DATABASE_URL", "redis://localhost")

	var out bytes.Buffer
	assert.Equal(t, exitCodeError, run(context.Background(), []string{"tools"}, &out))
}

func TestParseToolArgs(t *testing.T) {
	params, err := parseToolArgs(`{"limit": 5, "session_id": "s1"}`)
	require.NoError(t, err)
	assert.Equal(t, float64(5), params["limit"])
	assert.Equal(t, "s1", params["session_id"])

	params, err = parseToolArgs("null")
	require.NoError(t, err)
	assert.NotNil(t, params)

	_, err = parseToolArgs("[1, 2]")
	assert.Error(t, err)
}

func TestPrintToolsTable(t *testing.T) {
	var out bytes.Buffer
	err := printTools(&out, []tools.Descriptor{
		tools.NewDescriptor("turso_get_tasks", "Get tasks",
			tools.Param{Name: "status", Type: tools.TypeString},
			tools.Param{Name: "limit", Type: tools.TypeNumber},
		),
	}, false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Tool")
	assert.Contains(t, out.String(), "turso_get_tasks")
	assert.Contains(t, out.String(), "status, limit")
}
