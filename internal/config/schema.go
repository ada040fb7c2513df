// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for searchloop.
package config

import (
	"github.com/searchloop/searchloop/internal/agent"
	"github.com/searchloop/searchloop/internal/mcp"
	"github.com/searchloop/searchloop/internal/provider/openai"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Model configures the OpenAI-compatible completion endpoint.
	Model openai.Config `yaml:"model"`

	// Agent tunes the orchestration loop.
	Agent agent.Config `yaml:"agent,omitempty"`

	// MCP lists the Model Context Protocol servers providing tools.
	MCP MCPConfig `yaml:"mcp,omitempty"`

	// Gateway configures the HTTP API server.
	Gateway GatewayConfig `yaml:"gateway,omitempty"`

	// Storage configures transcript persistence.
	Storage StorageConfig `yaml:"storage,omitempty"`

	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// MCPConfig groups tool server settings.
type MCPConfig struct {
	Servers []mcp.ServerConfig `yaml:"servers,omitempty"`
}

// GatewayConfig configures the HTTP gateway.
type GatewayConfig struct {
	// Listen is the host:port the gateway binds to. Defaults to ":8080".
	Listen string `yaml:"listen,omitempty"`
}

// StorageConfig configures transcript persistence. An empty path disables it.
type StorageConfig struct {
	// Path is the SQLite database file for saved transcripts.
	Path string `yaml:"path,omitempty"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string `yaml:"level,omitempty"`

	// Format is text or json. Defaults to text.
	Format string `yaml:"format,omitempty"`
}

func (c *GatewayConfig) withDefaults() GatewayConfig {
	out := *c
	if out.Listen == "" {
		out.Listen = ":8080"
	}
	return out
}

// ListenAddr returns the configured bind address or the default.
func (c *GatewayConfig) ListenAddr() string {
	return c.withDefaults().Listen
}
