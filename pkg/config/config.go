package config

import (
	"time"
)

// Config represents the complete configuration for the HTTP client MCP server.
type Config struct {
	Server     ServerConfig     `koanf:"server"     validate:"required"`
	HTTP       HTTPConfig       `koanf:"http"       validate:"required"`
	Log        LogConfig        `koanf:"log"`
	Monitoring MonitoringConfig `koanf:"monitoring"`
}

// ServerConfig controls how the MCP server is exposed.
type ServerConfig struct {
	// Transport selects between the stdio transport and the streamable HTTP transport.
	Transport       string        `koanf:"transport"        env:"HTTP_MCP_TRANSPORT"        validate:"oneof=stdio http"`
	Host            string        `koanf:"host"             env:"HTTP_MCP_HOST"             validate:"required"`
	Port            int           `koanf:"port"             env:"HTTP_MCP_PORT"             validate:"min=1,max=65535"`
	Path            string        `koanf:"path"             env:"HTTP_MCP_PATH"             validate:"startswith=/"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" env:"HTTP_MCP_SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

// HTTPConfig holds the outbound request defaults applied by the executor.
type HTTPConfig struct {
	UserAgent      string            `koanf:"user_agent"      env:"HTTP_MCP_USER_AGENT"`
	DefaultTimeout time.Duration     `koanf:"default_timeout" env:"HTTP_MCP_DEFAULT_TIMEOUT" validate:"gt=0"`
	DefaultHeaders map[string]string `koanf:"default_headers"`
}

type LogConfig struct {
	Level  string `koanf:"level"  env:"HTTP_MCP_LOG_LEVEL" validate:"oneof=debug info warn error disabled"`
	JSON   bool   `koanf:"json"   env:"HTTP_MCP_LOG_JSON"`
	Source bool   `koanf:"source" env:"HTTP_MCP_LOG_SOURCE"`
}

// MonitoringConfig controls the Prometheus endpoint of the HTTP transport.
type MonitoringConfig struct {
	Enabled bool   `koanf:"enabled" env:"HTTP_MCP_MONITORING_ENABLED"`
	Path    string `koanf:"path"    env:"HTTP_MCP_MONITORING_PATH"    validate:"startswith=/"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Transport:       "stdio",
			Host:            "127.0.0.1",
			Port:            8080,
			Path:            "/mcp",
			ShutdownTimeout: 10 * time.Second,
		},
		HTTP: HTTPConfig{
			UserAgent:      "MCP-HTTP-Client/1.0",
			DefaultTimeout: 30 * time.Second,
			DefaultHeaders: map[string]string{},
		},
		Log: LogConfig{
			Level: "info",
		},
		Monitoring: MonitoringConfig{
			Path: "/metrics",
		},
	}
}
