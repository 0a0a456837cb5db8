package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/compozy/http-client-mcp/engine/httptool"
	"github.com/compozy/http-client-mcp/pkg/logger"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...httptool.Option) *Server {
	t.Helper()
	exec, err := httptool.NewExecutor(opts...)
	require.NoError(t, err)
	return New(exec, logger.NewLogger(logger.TestConfig()))
}

// connect runs s on an in-memory transport and returns a connected client session.
func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, serverTransport) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
		_ = session.Close()
	})
	return session
}

func callText(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func requireWireError(t *testing.T, err error, code int64) *jsonrpc.Error {
	t.Helper()
	require.Error(t, err)
	var wire *jsonrpc.Error
	require.ErrorAs(t, err, &wire)
	assert.Equal(t, code, wire.Code)
	return wire
}

func TestServer_ListTools(t *testing.T) {
	t.Run("Should advertise the four HTTP tools with object schemas", func(t *testing.T) {
		session := connect(t, newTestServer(t))
		res, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
		require.NoError(t, err)
		names := make([]string, 0, len(res.Tools))
		for _, tool := range res.Tools {
			names = append(names, tool.Name)
			assert.NotEmpty(t, tool.Description)
			schema, err := json.Marshal(tool.InputSchema)
			require.NoError(t, err)
			assert.Contains(t, string(schema), `"type":"object"`)
		}
		assert.ElementsMatch(t, []string{
			httptool.ToolRequest,
			httptool.ToolGet,
			httptool.ToolPost,
			httptool.ToolSetDefaultHeaders,
		}, names)
	})
}

func TestServer_CallTool(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/slow":
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":1,"agent":"` + r.Header.Get("User-Agent") + `"}`))
		}
	}))
	t.Cleanup(upstream.Close)

	t.Run("Should return a success envelope for http_get", func(t *testing.T) {
		session := connect(t, newTestServer(t))
		out := callText(t, session, httptool.ToolGet, map[string]any{"url": upstream.URL + "/posts/1"})
		assert.Equal(t, true, out["success"])
		assert.Equal(t, float64(http.StatusOK), out["status"])
		body, ok := out["body"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(1), body["id"])
		assert.Equal(t, httptool.DefaultUserAgent, body["agent"])
	})

	t.Run("Should return an error envelope as a normal result for unreachable hosts", func(t *testing.T) {
		session := connect(t, newTestServer(t))
		out := callText(t, session, httptool.ToolRequest, map[string]any{"url": "http://127.0.0.1:1/"})
		assert.Equal(t, false, out["success"])
		assert.NotEmpty(t, out["error"])
		assert.Equal(t, "http://127.0.0.1:1/", out["url"])
	})

	t.Run("Should apply updated default headers to later calls", func(t *testing.T) {
		session := connect(t, newTestServer(t))
		out := callText(t, session, httptool.ToolSetDefaultHeaders, map[string]any{
			"headers": map[string]any{"User-Agent": "custom/2.0"},
		})
		assert.Equal(t, true, out["success"])
		out = callText(t, session, httptool.ToolGet, map[string]any{"url": upstream.URL})
		body := out["body"].(map[string]any)
		assert.Equal(t, "custom/2.0", body["agent"])
	})

	t.Run("Should report unknown tools as method not found", func(t *testing.T) {
		session := connect(t, newTestServer(t))
		_, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "http_delete"})
		wire := requireWireError(t, err, jsonrpc.CodeMethodNotFound)
		assert.Contains(t, wire.Message, "http_delete")
	})

	t.Run("Should report a missing url as invalid params", func(t *testing.T) {
		session := connect(t, newTestServer(t))
		_, err := session.CallTool(context.Background(), &mcp.CallToolParams{
			Name:      httptool.ToolRequest,
			Arguments: map[string]any{"method": "GET"},
		})
		requireWireError(t, err, jsonrpc.CodeInvalidParams)
	})

	t.Run("Should report missing post data as invalid params", func(t *testing.T) {
		session := connect(t, newTestServer(t))
		_, err := session.CallTool(context.Background(), &mcp.CallToolParams{
			Name:      httptool.ToolPost,
			Arguments: map[string]any{"url": upstream.URL},
		})
		requireWireError(t, err, jsonrpc.CodeInvalidParams)
	})

	t.Run("Should report timeouts as internal errors naming the duration", func(t *testing.T) {
		session := connect(t, newTestServer(t))
		_, err := session.CallTool(context.Background(), &mcp.CallToolParams{
			Name:      httptool.ToolRequest,
			Arguments: map[string]any{"url": upstream.URL + "/slow", "timeout": 50},
		})
		wire := requireWireError(t, err, jsonrpc.CodeInternalError)
		assert.Contains(t, wire.Message, "50ms")
	})
}

func TestDecodeArguments(t *testing.T) {
	t.Run("Should treat missing arguments as an empty object", func(t *testing.T) {
		args, err := decodeArguments(nil)
		require.NoError(t, err)
		assert.Empty(t, args)
		args, err = decodeArguments(json.RawMessage("null"))
		require.NoError(t, err)
		assert.NotNil(t, args)
	})

	t.Run("Should reject non-object arguments", func(t *testing.T) {
		_, err := decodeArguments(json.RawMessage(`[1,2]`))
		var fault *httptool.Fault
		require.ErrorAs(t, err, &fault)
		assert.Equal(t, httptool.CodeInvalidParams, fault.Code)
	})
}

func TestToWireError(t *testing.T) {
	t.Run("Should carry fault details as error data", func(t *testing.T) {
		err := toWireError(httptool.InvalidParams("bad", map[string]any{"field": "url"}))
		var wire *jsonrpc.Error
		require.ErrorAs(t, err, &wire)
		assert.Equal(t, int64(jsonrpc.CodeInvalidParams), wire.Code)
		assert.Equal(t, "bad", wire.Message)
		assert.JSONEq(t, `{"field":"url"}`, string(wire.Data))
	})
}
