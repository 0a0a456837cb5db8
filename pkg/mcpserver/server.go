package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/compozy/http-client-mcp/engine/httptool"
	"github.com/compozy/http-client-mcp/pkg/logger"
	"github.com/compozy/http-client-mcp/pkg/version"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerName is advertised to clients during initialization.
const ServerName = "http-client-mcp"

const methodCallTool = "tools/call"

// Server exposes an httptool.Executor as MCP tools.
type Server struct {
	exec  *httptool.Executor
	mcp   *mcp.Server
	log   logger.Logger
	known map[string]struct{}
}

func New(exec *httptool.Executor, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewLogger(nil)
	}
	s := &Server{
		exec:  exec,
		log:   log,
		known: make(map[string]struct{}),
		mcp: mcp.NewServer(
			&mcp.Implementation{Name: ServerName, Version: version.Get().Version},
			&mcp.ServerOptions{Logger: logger.Slog(log)},
		),
	}
	for _, op := range httptool.ListOperations() {
		s.known[op.Name] = struct{}{}
		s.mcp.AddTool(&mcp.Tool{
			Name:        op.Name,
			Description: op.Description,
			InputSchema: op.InputSchema,
		}, s.toolHandler(op.Name))
	}
	s.mcp.AddReceivingMiddleware(s.unknownToolMiddleware)
	return s
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// RunStdio serves over stdin/stdout until the client disconnects or ctx is
// cancelled. Both are orderly shutdowns and return nil.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// Run serves a single session on t.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	s.log.Info("Starting MCP server", "name", ServerName, "version", version.Get().Version)
	err := s.mcp.Run(ctx, t)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("mcp server stopped: %w", err)
	}
	s.log.Info("MCP server stopped")
	return nil
}

func (s *Server) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := decodeArguments(req.Params.Arguments)
		if err != nil {
			return nil, toWireError(err)
		}
		ctx = logger.ContextWithLogger(ctx, s.log)
		env, err := s.exec.Execute(ctx, name, args)
		if err != nil {
			return nil, toWireError(err)
		}
		text, err := httptool.Render(env)
		if err != nil {
			return nil, toWireError(httptool.Internal(err, nil))
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil
	}
}

// unknownToolMiddleware reports calls to unregistered tools as method-not-found.
func (s *Server) unknownToolMiddleware(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		if method != methodCallTool {
			return next(ctx, method, req)
		}
		call, ok := req.(*mcp.CallToolRequest)
		if !ok || call.Params == nil {
			return next(ctx, method, req)
		}
		if _, known := s.known[call.Params.Name]; !known {
			s.log.Warn("Call to unknown tool", "tool", call.Params.Name)
			return nil, toWireError(httptool.MethodNotFound(call.Params.Name))
		}
		return next(ctx, method, req)
	}
}

func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, httptool.InvalidParams("arguments must be a JSON object", nil)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// toWireError converts a fault into a JSON-RPC error, carrying details as data.
func toWireError(err error) error {
	fault := httptool.AsFault(err)
	wire := &jsonrpc.Error{Code: fault.JSONRPCCode(), Message: fault.Message}
	if len(fault.Details) > 0 {
		if data, mErr := json.Marshal(fault.Details); mErr == nil {
			wire.Data = data
		}
	}
	return wire
}
