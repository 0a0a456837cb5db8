package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/compozy/http-client-mcp/engine/httptool"
	"github.com/compozy/http-client-mcp/pkg/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	root := RootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--log-level", "disabled"))
	err := root.Execute()
	return stdout.String(), err
}

func TestRootCmd(t *testing.T) {
	t.Run("Should register every subcommand", func(t *testing.T) {
		root := RootCmd()
		names := make([]string, 0)
		for _, c := range root.Commands() {
			names = append(names, c.Name())
		}
		assert.Subset(t, names, []string{"serve", "tools", "call", "version"})
	})
}

func TestToolsCmd(t *testing.T) {
	t.Run("Should print the local catalog as JSON", func(t *testing.T) {
		out, err := runRoot(t, "tools")
		require.NoError(t, err)
		var tools []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &tools))
		require.Len(t, tools, 4)
		assert.Equal(t, httptool.ToolRequest, tools[0]["name"])
		assert.NotNil(t, tools[0]["inputSchema"])
	})
}

func TestCallCmd(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"userId":1,"id":1,"title":"hello"}`))
	}))
	t.Cleanup(upstream.Close)

	t.Run("Should execute a tool locally and print the envelope", func(t *testing.T) {
		out, err := runRoot(t, "call", httptool.ToolGet, "--local", "--args", `{"url":"`+upstream.URL+`/posts/1"}`)
		require.NoError(t, err)
		var env map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &env))
		assert.Equal(t, true, env["success"])
		assert.Equal(t, float64(200), env["status"])
	})

	t.Run("Should surface faults as command errors", func(t *testing.T) {
		_, err := runRoot(t, "call", httptool.ToolPost, "--local", "--args", `{"url":"`+upstream.URL+`"}`)
		require.Error(t, err)
		var fault *httptool.Fault
		require.ErrorAs(t, err, &fault)
		assert.Equal(t, httptool.CodeInvalidParams, fault.Code)
	})

	t.Run("Should reject arguments that are not a JSON object", func(t *testing.T) {
		_, err := runRoot(t, "call", httptool.ToolGet, "--local", "--args", `[1]`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--args must be a JSON object")
	})
}

func TestVersionCmd(t *testing.T) {
	t.Run("Should print version information as JSON", func(t *testing.T) {
		out, err := runRoot(t, "version", "--format", "json")
		require.NoError(t, err)
		var info map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &info))
		assert.NotEmpty(t, info["version"])
		assert.NotEmpty(t, info["go_version"])
	})
}

func TestSetupGlobalConfig(t *testing.T) {
	t.Run("Should layer the YAML file under explicit flags", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("http:\n  user_agent: from-yaml\nserver:\n  port: 9000\n"), 0o600))

		var got struct {
			port int
			ua   string
		}
		root := RootCmd()
		inspect := &cobra.Command{
			Use: "inspect",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg := config.FromContext(cmd.Context())
				got.port = cfg.Server.Port
				got.ua = cfg.HTTP.UserAgent
				return nil
			},
		}
		inspect.Flags().Int("port", 0, "")
		root.AddCommand(inspect)
		root.SetOut(&bytes.Buffer{})
		root.SetArgs([]string{"inspect", "--config", path, "--port", "9100", "--log-level", "disabled"})
		require.NoError(t, root.Execute())
		assert.Equal(t, 9100, got.port)
		assert.Equal(t, "from-yaml", got.ua)
	})

	t.Run("Should load variables from the env file", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_MCP_USER_AGENT=from-env-file\n"), 0o600))
		t.Setenv("HTTP_MCP_USER_AGENT", "")
		require.NoError(t, os.Unsetenv("HTTP_MCP_USER_AGENT"))

		var ua string
		root := RootCmd()
		root.AddCommand(&cobra.Command{
			Use: "inspect",
			RunE: func(cmd *cobra.Command, _ []string) error {
				ua = config.FromContext(cmd.Context()).HTTP.UserAgent
				return nil
			},
		})
		root.SetArgs([]string{"inspect", "--log-level", "disabled"})
		require.NoError(t, root.Execute())
		assert.Equal(t, "from-env-file", ua)
	})
}

func TestServeArgs(t *testing.T) {
	t.Run("Should forward changed global flags and silence the child", func(t *testing.T) {
		root := RootCmd()
		require.NoError(t, root.ParseFlags([]string{"--config", "c.yaml"}))
		args := serveArgs(root)
		assert.Equal(t, []string{"serve", "--transport", "stdio", "--config=c.yaml", "--log-level=disabled"}, args)
	})
}
