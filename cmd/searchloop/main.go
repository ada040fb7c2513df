// Package main is the entry point for the searchloop CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/searchloop/searchloop/internal/agent"
	"github.com/searchloop/searchloop/internal/config"
	"github.com/searchloop/searchloop/internal/gateway"
	"github.com/searchloop/searchloop/internal/mcp"
	"github.com/searchloop/searchloop/internal/memory"
	"github.com/searchloop/searchloop/internal/provider/openai"
	"github.com/searchloop/searchloop/internal/transcript"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "searchloop",
		Short:         "A tool-calling agent loop over MCP servers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	root.AddCommand(versionCmd(), serveCmd(), askCmd(), toolsCmd(), configCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("searchloop %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			factory, cleanup, err := buildRunnerFactory(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			var store *transcript.Store
			if cfg.Storage.Path != "" {
				store, err = transcript.Open(cfg.Storage.Path)
				if err != nil {
					return err
				}
				defer store.Close()
			}

			gw := gateway.New(gateway.Config{Listen: cfg.Gateway.ListenAddr()}, factory, store, logger)
			if err := gw.Start(); err != nil {
				return err
			}

			<-ctx.Done()
			return gw.Stop(context.Background())
		},
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <query>",
		Short: "Run a single query and stream the answer to the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			factory, cleanup, err := buildRunnerFactory(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			runner := factory(nil)
			for ev := range runner.ProcessQueryStream(ctx, args[0]) {
				switch ev.Type {
				case agent.EventToolCallStart:
					fmt.Fprintf(os.Stderr, "→ calling %s\n", ev.ToolCall.Name)
				case agent.EventToolResult:
					if ev.ToolCall.Success {
						fmt.Fprintf(os.Stderr, "← %s ok (%s)\n", ev.ToolCall.Name, ev.ToolCall.Duration)
					} else {
						fmt.Fprintf(os.Stderr, "← %s failed: %s\n", ev.ToolCall.Name, ev.ToolCall.Result)
					}
				case agent.EventContent:
					fmt.Print(ev.Content)
				case agent.EventDone:
					fmt.Println()
				case agent.EventError:
					return fmt.Errorf("query failed: %w", ev.Err)
				}
			}
			return nil
		},
	}
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List tools exported by the configured MCP servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			manager, err := mcp.NewManager(ctx, cfg.MCP.Servers, logger)
			if err != nil {
				return err
			}
			defer manager.Close()

			schemas, err := manager.Discover(ctx)
			if err != nil {
				return err
			}
			if len(schemas) == 0 {
				fmt.Println("No tools available.")
				return nil
			}

			for name, schema := range schemas {
				fmt.Printf("%s: %s\n", name, schema.Description)
				if len(schema.Params) > 0 {
					fmt.Printf("  params: %v (required: %v)\n", schema.Params, schema.Required)
				}
			}
			return nil
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			fmt.Printf("Configuration OK (%d MCP servers)\n", len(cfg.MCP.Servers))
			return nil
		},
	})
	return cmd
}

// loadEnvironment resolves, loads, and validates the config, then builds
// the logger from its logging section.
func loadEnvironment(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		resolved, err := resolveConfigPath()
		if err != nil {
			return nil, nil, err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}

	return cfg, config.NewLogger(cfg.Logging, os.Stderr), nil
}

// buildRunnerFactory connects the model provider and MCP servers once and
// returns a factory producing agents that share them. The cleanup function
// closes the MCP sessions.
func buildRunnerFactory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (gateway.RunnerFactory, func(), error) {
	model, err := openai.New(cfg.Model)
	if err != nil {
		return nil, nil, err
	}

	manager, err := mcp.NewManager(ctx, cfg.MCP.Servers, logger)
	if err != nil {
		return nil, nil, err
	}

	status := agent.StatusFunc(func(phase agent.StatusPhase, message string) {
		if message != "" {
			logger.Debug("status", "phase", phase, "message", message)
		}
	})

	factory := func(mem *memory.Memory) gateway.Runner {
		return agent.New(model, manager, cfg.Agent,
			agent.WithLogger(logger),
			agent.WithStatusSink(status),
			agent.WithMemory(mem),
		)
	}
	return factory, func() { _ = manager.Close() }, nil
}

// resolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/searchloop/searchloop.yaml → ./searchloop.yaml
func resolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "searchloop", "searchloop.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "searchloop", "searchloop.yaml"))
	}

	candidates = append(candidates, "searchloop.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}
