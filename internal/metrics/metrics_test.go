package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesMetrics(t *testing.T) {
	BuildInfo.WithLabelValues("test").Set(1)
	ToolCallsTotal.WithLabelValues("list_tables", "success").Inc()

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `turso_mcp_build_info{version="test"} 1`)
	assert.Contains(t, string(body), `turso_mcp_tool_calls_total{status="success",tool_name="list_tables"}`)
}
