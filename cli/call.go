package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
)

// CallCmd returns the call command
func CallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Invoke one tool and print its result",
		Long: "Invoke a tool through an MCP session and print the JSON result.\n" +
			"By default the server is spawned from this binary over stdio; use --url for a running\n" +
			"streamable HTTP server or --local to skip the transport entirely.",
		Example: `  http-client-mcp call http_get --args '{"url":"https://jsonplaceholder.typicode.com/posts/1"}'`,
		Args:    cobra.ExactArgs(1),
		RunE:    handleCallCmd,
	}
	cmd.Flags().String("args", "{}", "Tool arguments as a JSON object")
	cmd.Flags().String("url", "", "Streamable HTTP endpoint of a running server")
	cmd.Flags().Bool("local", false, "Execute the tool in-process without an MCP transport")
	return cmd
}

func handleCallCmd(cmd *cobra.Command, args []string) error {
	name := args[0]
	rawArgs, err := cmd.Flags().GetString("args")
	if err != nil {
		return fmt.Errorf("failed to get args flag: %w", err)
	}
	toolArgs, err := parseToolArgs(rawArgs)
	if err != nil {
		return err
	}
	local, err := cmd.Flags().GetBool("local")
	if err != nil {
		return fmt.Errorf("failed to get local flag: %w", err)
	}
	var text string
	if local {
		text, err = runLocal(cmd.Context(), name, toolArgs)
	} else {
		text, err = callRemote(cmd, name, toolArgs)
	}
	if err != nil {
		return err
	}
	return writeJSON(cmd, []byte(text+"\n"))
}

func parseToolArgs(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("--args must be a JSON object: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func callRemote(cmd *cobra.Command, name string, toolArgs map[string]any) (string, error) {
	serverURL, err := cmd.Flags().GetString("url")
	if err != nil {
		return "", fmt.Errorf("failed to get url flag: %w", err)
	}
	ctx := cmd.Context()
	c, err := connectClient(ctx, cmd, serverURL)
	if err != nil {
		return "", err
	}
	defer c.Close()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = toolArgs
	res, err := c.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("tool %s failed: %w", name, err)
	}
	var parts []string
	for _, content := range res.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			parts = append(parts, text.Text)
		}
	}
	out := strings.Join(parts, "\n")
	if res.IsError {
		return "", errors.New(out)
	}
	return out, nil
}
