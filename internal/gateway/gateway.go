// Package gateway exposes the agent over HTTP: synchronous and streaming
// query endpoints, tool and session listing, health, and metrics.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/searchloop/searchloop/internal/agent"
	"github.com/searchloop/searchloop/internal/memory"
	"github.com/searchloop/searchloop/internal/tool"
	"github.com/searchloop/searchloop/internal/transcript"
)

// Runner is the agent surface the gateway drives. *agent.Agent satisfies
// it; tests substitute a scripted implementation.
type Runner interface {
	ProcessQuery(ctx context.Context, query string) (agent.Result, error)
	ProcessQueryStream(ctx context.Context, query string) <-chan agent.Event
	Memory() *memory.Memory
	ListTools(ctx context.Context) ([]tool.Schema, error)
}

// RunnerFactory builds a Runner for a new session. mem is nil for a fresh
// conversation; a non-nil mem resumes one restored from a transcript.
type RunnerFactory func(mem *memory.Memory) Runner

// Config holds the HTTP server settings.
type Config struct {
	// Listen is the host:port to bind. Defaults to ":8080".
	Listen string

	// ReadTimeout bounds request header and body reads.
	ReadTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

func (c *Config) defaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// Gateway is the HTTP front end. It owns the session set and delegates
// query execution to per-session Runners.
type Gateway struct {
	config   Config
	logger   *slog.Logger
	sessions *sessionStore
	store    *transcript.Store
	metrics  *metrics
	server   *http.Server

	// tools is a session-less runner used only for tool discovery.
	tools Runner
}

// New builds a Gateway. store may be nil, disabling transcript persistence.
func New(cfg Config, factory RunnerFactory, store *transcript.Store, logger *slog.Logger) *Gateway {
	cfg.defaults()
	if logger == nil {
		logger = slog.New(nopHandler{})
	}
	return &Gateway{
		config:   cfg,
		logger:   logger,
		sessions: newSessionStore(factory),
		store:    store,
		metrics:  newMetrics(),
		tools:    factory(nil),
	}
}

// session returns the live session for id. An unknown non-empty id is
// first looked up in the transcript store so a persisted conversation
// resumes where it left off; otherwise a fresh session starts.
func (g *Gateway) session(ctx context.Context, id string) *session {
	if id != "" {
		if sess, ok := g.sessions.get(id); ok {
			return sess
		}
	}
	return g.sessions.getOrCreate(id, g.restoreMemory(ctx, id))
}

// restoreMemory loads the persisted conversation for id, when one exists.
// Load and import failures fall back to a fresh conversation.
func (g *Gateway) restoreMemory(ctx context.Context, id string) *memory.Memory {
	if id == "" || g.store == nil {
		return nil
	}

	data, err := g.store.Load(ctx, id)
	if errors.Is(err, transcript.ErrNotFound) {
		return nil
	}
	if err != nil {
		g.logger.Error("transcript load failed", "session", id, "error", err)
		return nil
	}

	mem, err := memory.Import(data)
	if err != nil {
		g.logger.Warn("ignoring unreadable transcript", "session", id, "error", err)
		return nil
	}

	g.logger.Info("session resumed from transcript", "session", id)
	return mem
}

// Start binds the listener and serves in the background. The server sets
// no write timeout: streaming responses stay open for the life of the
// request and are bounded by the agent's request timeout instead.
func (g *Gateway) Start() error {
	g.server = &http.Server{
		Addr:        g.config.Listen,
		Handler:     g.buildRouter(),
		ReadTimeout: g.config.ReadTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Listen)
	if err != nil {
		return fmt.Errorf("gateway: listen: %w", err)
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Listen)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// nopHandler is a slog.Handler that discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// Stop gracefully shuts the server down.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
