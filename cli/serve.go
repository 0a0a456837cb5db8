package cli

import (
	"context"
	"fmt"

	"github.com/compozy/http-client-mcp/engine/httptool"
	"github.com/compozy/http-client-mcp/pkg/config"
	"github.com/compozy/http-client-mcp/pkg/logger"
	"github.com/compozy/http-client-mcp/pkg/mcpserver"
	"github.com/compozy/http-client-mcp/pkg/monitoring"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long:  "Start the MCP server on stdio (default) or on the streamable HTTP transport",
		Args:  cobra.NoArgs,
		RunE:  handleServeCmd,
	}

	defaults := config.Default()
	cmd.Flags().String("transport", defaults.Server.Transport, "Transport to serve on (stdio, http)")
	cmd.Flags().String("host", defaults.Server.Host, "Host to bind the HTTP transport to")
	cmd.Flags().Int("port", defaults.Server.Port, "Port for the HTTP transport")
	cmd.Flags().String("path", defaults.Server.Path, "Endpoint path for the HTTP transport")
	cmd.Flags().Duration("shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown timeout for the HTTP transport")
	cmd.Flags().String("user-agent", defaults.HTTP.UserAgent, "Initial User-Agent default header")
	cmd.Flags().Duration("timeout", defaults.HTTP.DefaultTimeout, "Default timeout for outbound requests")
	cmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on the HTTP transport")

	return cmd
}

func handleServeCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	log := logger.FromContext(ctx)

	mon, err := monitoring.NewService(ctx, cfg.Monitoring)
	if err != nil {
		return err
	}
	defer func() {
		if err := mon.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn("Failed to shut down monitoring", "error", err)
		}
	}()
	exec, err := newExecutor(cfg, log, mon.Meter())
	if err != nil {
		return err
	}
	srv := mcpserver.New(exec, log)

	switch cfg.Server.Transport {
	case "http":
		httpServer := mcpserver.NewHTTPServer(srv, cfg.Server, mon)
		log.Info("Starting MCP server", "transport", "http", "addr", httpServer.Addr(), "path", cfg.Server.Path)
		return httpServer.ListenAndServe(ctx)
	default:
		return srv.RunStdio(ctx)
	}
}

func newExecutor(cfg *config.Config, log logger.Logger, meter metric.Meter) (*httptool.Executor, error) {
	exec, err := httptool.NewExecutor(
		httptool.WithUserAgent(cfg.HTTP.UserAgent),
		httptool.WithDefaultHeaders(cfg.HTTP.DefaultHeaders),
		httptool.WithDefaultTimeout(cfg.HTTP.DefaultTimeout),
		httptool.WithMeter(meter),
		httptool.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request executor: %w", err)
	}
	return exec, nil
}

// runLocal executes one tool in-process, without a transport.
func runLocal(ctx context.Context, name string, args map[string]any) (string, error) {
	cfg := config.FromContext(ctx)
	exec, err := newExecutor(cfg, logger.FromContext(ctx), nil)
	if err != nil {
		return "", err
	}
	env, err := exec.Execute(ctx, name, args)
	if err != nil {
		return "", err
	}
	return httptool.Render(env)
}
