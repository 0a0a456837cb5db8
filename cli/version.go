package cli

import (
	"fmt"

	"github.com/compozy/http-client-mcp/pkg/version"
	"github.com/spf13/cobra"
)

// VersionCmd returns the version command
func VersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}
			info := version.Get()
			if format == "json" {
				return printJSON(cmd, info)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "http-client-mcp %s\n", info)
			return err
		},
	}
	cmd.Flags().String("format", "text", "Output format (text, json)")
	return cmd
}
