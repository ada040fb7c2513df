package config

import (
	"errors"
	"fmt"

	"github.com/searchloop/searchloop/internal/agent"
)

// Validate checks the structural validity of a Config. It verifies the
// version field, the model endpoint settings, agent bounds, each MCP
// server entry, and the logging settings. All problems are reported
// together via errors.Join.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if err := cfg.Model.Validate(); err != nil {
		errs = append(errs, err)
	}

	errs = append(errs, validateAgent(cfg.Agent)...)

	for i := range cfg.MCP.Servers {
		if err := cfg.MCP.Servers[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("config: mcp.servers[%d]: %w", i, err))
		}
	}

	errs = append(errs, validateLogging(cfg.Logging)...)

	return errors.Join(errs...)
}

func validateAgent(a agent.Config) []error {
	var errs []error
	if a.MaxIterations < 0 {
		errs = append(errs, fmt.Errorf("config: agent.max_iterations must not be negative (got %d)", a.MaxIterations))
	}
	if a.ChunkSize < 0 {
		errs = append(errs, fmt.Errorf("config: agent.chunk_size must not be negative (got %d)", a.ChunkSize))
	}
	if a.ModelTimeout < 0 {
		errs = append(errs, fmt.Errorf("config: agent.model_timeout must not be negative (got %s)", a.ModelTimeout))
	}
	if a.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("config: agent.request_timeout must not be negative (got %s)", a.RequestTimeout))
	}
	return errs
}

func validateLogging(l LoggingConfig) []error {
	var errs []error

	switch l.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: logging.level %q is not one of debug, info, warn, error", l.Level))
	}

	switch l.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: logging.format %q is not one of text, json", l.Format))
	}

	return errs
}
