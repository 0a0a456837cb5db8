package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	data       map[string]any
	sourceType SourceType
	err        error
}

func (m *mockSource) Load() (map[string]any, error) {
	return m.data, m.err
}

func (m *mockSource) Type() SourceType {
	return m.sourceType
}

func emptyEnviron() []string { return nil }

func TestLoader_Load(t *testing.T) {
	t.Run("Should load default configuration when no sources provided", func(t *testing.T) {
		loader := NewService(WithEnviron(emptyEnviron))

		cfg, err := loader.Load(t.Context())

		require.NoError(t, err)
		assert.Equal(t, "stdio", cfg.Server.Transport)
		assert.Equal(t, "/mcp", cfg.Server.Path)
		assert.Equal(t, "MCP-HTTP-Client/1.0", cfg.HTTP.UserAgent)
		assert.Equal(t, 30*time.Second, cfg.HTTP.DefaultTimeout)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, SourceDefault, loader.GetSource("server.port"))
	})

	t.Run("Should apply sources in precedence order", func(t *testing.T) {
		loader := NewService(WithEnviron(func() []string {
			return []string{"HTTP_MCP_HOST=env.example.com", "HTTP_MCP_PORT=9100"}
		}))
		yamlSource := &mockSource{
			data: map[string]any{
				"server": map[string]any{"host": "yaml.example.com", "port": 9001, "transport": "http"},
			},
			sourceType: SourceYAML,
		}
		cliSource := &mockSource{
			data:       map[string]any{"server": map[string]any{"host": "cli.example.com"}},
			sourceType: SourceCLI,
		}

		cfg, err := loader.Load(t.Context(), cliSource, yamlSource)

		require.NoError(t, err)
		assert.Equal(t, "cli.example.com", cfg.Server.Host)
		assert.Equal(t, 9100, cfg.Server.Port)
		assert.Equal(t, "http", cfg.Server.Transport)
		assert.Equal(t, SourceCLI, loader.GetSource("server.host"))
		assert.Equal(t, SourceEnv, loader.GetSource("server.port"))
		assert.Equal(t, SourceYAML, loader.GetSource("server.transport"))
	})

	t.Run("Should decode durations from environment strings", func(t *testing.T) {
		loader := NewService(WithEnviron(func() []string {
			return []string{"HTTP_MCP_DEFAULT_TIMEOUT=5s", "HTTP_MCP_LOG_JSON=true", "UNRELATED=1"}
		}))

		cfg, err := loader.Load(t.Context())

		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.HTTP.DefaultTimeout)
		assert.True(t, cfg.Log.JSON)
	})

	t.Run("Should reject an unknown transport", func(t *testing.T) {
		loader := NewService(WithEnviron(emptyEnviron))
		source := &mockSource{
			data:       map[string]any{"server": map[string]any{"transport": "grpc"}},
			sourceType: SourceCLI,
		}

		_, err := loader.Load(t.Context(), source)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration validation failed")
	})

	t.Run("Should surface source errors", func(t *testing.T) {
		loader := NewService(WithEnviron(emptyEnviron))
		source := &mockSource{sourceType: SourceYAML, err: os.ErrPermission}

		_, err := loader.Load(t.Context(), source)

		require.ErrorIs(t, err, os.ErrPermission)
	})
}

func TestYAMLProvider(t *testing.T) {
	t.Run("Should load nested values and default headers from a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := []byte("server:\n  port: 7070\nhttp:\n  user_agent: yaml-agent/2.0\n  default_headers:\n    X-Team: platform\n")
		require.NoError(t, os.WriteFile(path, content, 0o600))
		loader := NewService(WithEnviron(emptyEnviron))

		cfg, err := loader.Load(t.Context(), NewYAMLProvider(path))

		require.NoError(t, err)
		assert.Equal(t, 7070, cfg.Server.Port)
		assert.Equal(t, "yaml-agent/2.0", cfg.HTTP.UserAgent)
		assert.Equal(t, "platform", cfg.HTTP.DefaultHeaders["X-Team"])
	})

	t.Run("Should treat a missing file as empty", func(t *testing.T) {
		data, err := NewYAMLProvider(filepath.Join(t.TempDir(), "absent.yaml")).Load()

		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("Should report malformed YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

		_, err := NewYAMLProvider(path).Load()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse YAML file")
	})
}

func TestCLIProvider(t *testing.T) {
	t.Run("Should map known flags to nested paths and ignore the rest", func(t *testing.T) {
		data, err := NewCLIProvider(map[string]any{
			"port":      9000,
			"log-level": "debug",
			"env-file":  ".env",
		}).Load()

		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"server": map[string]any{"port": 9000},
			"log":    map[string]any{"level": "debug"},
		}, data)
	})
}

func TestGenerateEnvMappings(t *testing.T) {
	t.Run("Should derive env variables from struct tags", func(t *testing.T) {
		mappings := GenerateEnvToConfigMap()

		assert.Equal(t, "server.transport", mappings["HTTP_MCP_TRANSPORT"])
		assert.Equal(t, "http.default_timeout", mappings["HTTP_MCP_DEFAULT_TIMEOUT"])
		assert.Equal(t, "HTTP_MCP_LOG_LEVEL", GetEnvVarForConfigPath("log.level"))
		assert.Empty(t, GetEnvVarForConfigPath("http.default_headers"))
	})
}
