package httptool

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schemaMap(t *testing.T, op Operation) map[string]any {
	t.Helper()
	raw, err := json.Marshal(op.InputSchema)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestListOperations(t *testing.T) {
	t.Run("Should list the four tools in a stable order", func(t *testing.T) {
		ops := ListOperations()

		names := make([]string, 0, len(ops))
		for _, op := range ops {
			names = append(names, op.Name)
			assert.NotEmpty(t, op.Description)
		}
		assert.Equal(t, []string{ToolRequest, ToolGet, ToolPost, ToolSetDefaultHeaders}, names)
	})

	t.Run("Should describe http_request arguments with defaults and enums", func(t *testing.T) {
		schema := schemaMap(t, ListOperations()[0])

		assert.Equal(t, "object", schema["type"])
		assert.NotContains(t, schema, "$schema")
		assert.Equal(t, []any{"url"}, schema["required"])
		props := schema["properties"].(map[string]any)
		method := props["method"].(map[string]any)
		assert.Equal(t, "GET", method["default"])
		assert.Contains(t, method["enum"], "TRACE")
		assert.Contains(t, method["enum"], "CONNECT")
		assert.Equal(t, float64(30000), props["timeout"].(map[string]any)["default"])
		assert.Equal(t, true, props["follow_redirects"].(map[string]any)["default"])
		headers := props["headers"].(map[string]any)
		assert.Equal(t, map[string]any{"type": "string"}, headers["additionalProperties"])
		assert.Equal(t, "object", props["query_params"].(map[string]any)["type"])
	})

	t.Run("Should require url and data for http_post", func(t *testing.T) {
		schema := schemaMap(t, ListOperations()[2])

		assert.ElementsMatch(t, []any{"url", "data"}, schema["required"])
		contentType := schema["properties"].(map[string]any)["content_type"].(map[string]any)
		assert.Equal(t, "application/json", contentType["default"])
		assert.Len(t, contentType["enum"], 4)
	})

	t.Run("Should require headers for set_default_headers", func(t *testing.T) {
		schema := schemaMap(t, ListOperations()[3])

		assert.Equal(t, []any{"headers"}, schema["required"])
	})

	t.Run("Should return an independent slice", func(t *testing.T) {
		ops := ListOperations()
		ops[0].Name = "changed"

		assert.Equal(t, ToolRequest, ListOperations()[0].Name)
	})
}
