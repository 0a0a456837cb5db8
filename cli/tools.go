package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/compozy/http-client-mcp/engine/httptool"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"inputSchema"`
}

// ToolsCmd returns the tools command
func ToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available tools",
		Long:  "Print the tool catalog as JSON, either from this binary or from a running server (--url)",
		Args:  cobra.NoArgs,
		RunE:  handleToolsCmd,
	}
	cmd.Flags().String("url", "", "Streamable HTTP endpoint of a running server")
	return cmd
}

func handleToolsCmd(cmd *cobra.Command, _ []string) error {
	serverURL, err := cmd.Flags().GetString("url")
	if err != nil {
		return fmt.Errorf("failed to get url flag: %w", err)
	}
	var tools []toolInfo
	if serverURL == "" {
		tools = localTools()
	} else {
		tools, err = remoteTools(cmd, serverURL)
		if err != nil {
			return err
		}
	}
	return printJSON(cmd, tools)
}

func localTools() []toolInfo {
	ops := httptool.ListOperations()
	tools := make([]toolInfo, 0, len(ops))
	for _, op := range ops {
		tools = append(tools, toolInfo{Name: op.Name, Description: op.Description, InputSchema: op.InputSchema})
	}
	return tools
}

func remoteTools(cmd *cobra.Command, serverURL string) ([]toolInfo, error) {
	ctx := cmd.Context()
	c, err := connectClient(ctx, cmd, serverURL)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	res, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	tools := make([]toolInfo, 0, len(res.Tools))
	for _, tool := range res.Tools {
		var schema any = tool.InputSchema
		if tool.RawInputSchema != nil {
			schema = tool.RawInputSchema
		}
		tools = append(tools, toolInfo{Name: tool.Name, Description: tool.Description, InputSchema: schema})
	}
	return tools, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return writeJSON(cmd, pretty.PrettyOptions(data, &pretty.Options{Indent: "  "}))
}

// writeJSON prints already formatted JSON, colorized when stdout is a terminal.
func writeJSON(cmd *cobra.Command, data []byte) error {
	out := cmd.OutOrStdout()
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		data = pretty.Color(data, nil)
	}
	_, err := out.Write(data)
	return err
}
