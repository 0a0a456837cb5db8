package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/compozy/http-client-mcp/pkg/logger"
	"github.com/compozy/http-client-mcp/pkg/version"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// connectClient opens an initialized MCP client session. With an empty
// serverURL it spawns this binary's serve command over stdio.
func connectClient(ctx context.Context, cmd *cobra.Command, serverURL string) (*client.Client, error) {
	var (
		c   *client.Client
		err error
	)
	if serverURL != "" {
		c, err = client.NewStreamableHttpClient(serverURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client for %s: %w", serverURL, err)
		}
		if err := c.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", serverURL, err)
		}
	} else {
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate executable: %w", err)
		}
		c, err = client.NewStdioMCPClient(self, os.Environ(), serveArgs(cmd)...)
		if err != nil {
			return nil, fmt.Errorf("failed to start stdio server: %w", err)
		}
	}

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{Name: "http-client-mcp-cli", Version: version.Get().Version}
	if _, err := c.Initialize(ctx, req); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize MCP session: %w", err)
	}
	return c, nil
}

// serveArgs forwards the global flags the user set to the spawned server.
// The child logs to stderr, so it is kept quiet unless a level was requested.
func serveArgs(cmd *cobra.Command) []string {
	forwarded := map[string]bool{"config": true, "env-file": true, "log-json": true, "log-source": true}
	args := []string{"serve", "--transport", "stdio"}
	level := string(logger.DisabledLevel)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch {
		case f.Name == "log-level":
			level = f.Value.String()
		case forwarded[f.Name]:
			args = append(args, "--"+f.Name+"="+f.Value.String())
		}
	})
	return append(args, "--log-level="+level)
}
