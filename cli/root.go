package cli

import (
	"fmt"

	"github.com/compozy/http-client-mcp/pkg/config"
	"github.com/compozy/http-client-mcp/pkg/logger"
	"github.com/spf13/cobra"
)

// RootCmd builds the http-client-mcp command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "http-client-mcp",
		Short: "MCP server exposing generic HTTP requests as tools",
		Long: "http-client-mcp serves the http_request, http_get, http_post and set_default_headers\n" +
			"tools over the Model Context Protocol, on stdio or streamable HTTP.",
		SilenceUsage:      true,
		PersistentPreRunE: setupGlobalConfig,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML configuration file")
	flags.String("env-file", ".env", "Path to the environment variables file")
	flags.String("log-level", "info", "Log level (debug, info, warn, error, disabled)")
	flags.Bool("log-json", false, "Output logs in JSON format")
	flags.Bool("log-source", false, "Include source file and line in logs")
	flags.Bool("debug", false, "Enable debug mode (sets log level to debug)")

	root.AddCommand(
		ServeCmd(),
		ToolsCmd(),
		CallCmd(),
		VersionCmd(),
	)
	return root
}

// setupGlobalConfig loads the env file and configuration, then attaches the
// config manager and logger to the command context.
func setupGlobalConfig(cmd *cobra.Command, _ []string) error {
	if _, err := loadEnvFile(cmd); err != nil {
		return err
	}
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("failed to get debug flag: %w", err)
	}
	if debug {
		if err := cmd.Flags().Set("log-level", "debug"); err != nil {
			return fmt.Errorf("failed to apply debug flag: %w", err)
		}
	}

	cliFlags := make(map[string]any)
	extractCLIFlags(cmd, cliFlags)
	sources := make([]config.Source, 0, 2)
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	if configFile != "" {
		sources = append(sources, config.NewYAMLProvider(configFile))
	}
	sources = append(sources, config.NewCLIProvider(cliFlags))

	ctx := cmd.Context()
	manager := config.NewManager(nil)
	cfg, err := manager.Load(ctx, sources...)
	if err != nil {
		return err
	}
	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		Output:     cmd.ErrOrStderr(),
		JSON:       cfg.Log.JSON,
		AddSource:  cfg.Log.Source,
		TimeFormat: "15:04:05",
	})
	ctx = config.ContextWithManager(ctx, manager)
	ctx = logger.ContextWithLogger(ctx, log)
	cmd.SetContext(ctx)
	log.Debug("Configuration loaded", "transport", cfg.Server.Transport, "config_file", configFile)
	return nil
}
