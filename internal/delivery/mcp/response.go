package mcp

import (
	"github.com/FreePeak/turso-mcp-server/pkg/tools"
)

// FormatResponse converts an envelope into the result map handed to the
// transport. A nil envelope becomes a failure so the client always gets content.
func FormatResponse(env *tools.Envelope) map[string]interface{} {
	if env == nil {
		env = tools.FromError("empty response")
	}

	content := make([]map[string]interface{}, 0, len(env.Content))
	for _, c := range env.Content {
		content = append(content, map[string]interface{}{
			"type": c.Type,
			"text": c.Text,
		})
	}

	resp := map[string]interface{}{
		"content": content,
	}
	if env.IsError {
		resp["isError"] = true
	}
	return resp
}
