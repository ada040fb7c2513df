package mcp

import (
	"errors"
	"fmt"
)

// Transport selects how the client reaches an MCP server.
type Transport string

const (
	TransportStdio          Transport = "stdio"
	TransportSSE            Transport = "sse"
	TransportStreamableHTTP Transport = "streamable_http"
)

// ServerConfig describes one MCP server connection.
type ServerConfig struct {
	// Name identifies the server in logs and tool ownership.
	Name string `yaml:"name"`

	// Transport is one of stdio, sse, or streamable_http.
	// Defaults to stdio when a command is set, streamable_http otherwise.
	Transport Transport `yaml:"transport,omitempty"`

	// Command and Args launch a stdio server as a subprocess.
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`

	// Env holds KEY=VALUE pairs passed to a stdio subprocess.
	Env []string `yaml:"env,omitempty"`

	// URL is the endpoint for sse and streamable_http transports.
	URL string `yaml:"url,omitempty"`
}

func (c *ServerConfig) withDefaults() ServerConfig {
	out := *c
	if out.Transport == "" {
		if out.Command != "" {
			out.Transport = TransportStdio
		} else {
			out.Transport = TransportStreamableHTTP
		}
	}
	return out
}

// Validate checks a server entry for structural problems.
func (c *ServerConfig) Validate() error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, errors.New("mcp: server name is required"))
	}

	switch c.withDefaults().Transport {
	case TransportStdio:
		if c.Command == "" {
			errs = append(errs, fmt.Errorf("mcp: server %q: stdio transport requires a command", c.Name))
		}
	case TransportSSE, TransportStreamableHTTP:
		if c.URL == "" {
			errs = append(errs, fmt.Errorf("mcp: server %q: %s transport requires a url", c.Name, c.Transport))
		}
	default:
		errs = append(errs, fmt.Errorf("mcp: server %q: unknown transport %q", c.Name, c.Transport))
	}

	return errors.Join(errs...)
}
