package agent

import (
	"context"
	"log/slog"

	"github.com/searchloop/searchloop/internal/memory"
	"github.com/searchloop/searchloop/internal/provider"
	"github.com/searchloop/searchloop/internal/tool"
)

// Agent owns one logical conversation and drives the orchestration loop
// over it. Requests against one Agent must be serialized by the caller;
// at most one round is in flight at a time.
type Agent struct {
	provider provider.Provider
	tools    tool.Provider
	memory   *memory.Memory
	config   Config
	status   StatusSink
	logger   *slog.Logger
}

// Option configures optional Agent behavior.
type Option func(*Agent)

// WithStatusSink injects a status sink. The default discards updates.
func WithStatusSink(s StatusSink) Option {
	return func(a *Agent) {
		if s != nil {
			a.status = s
		}
	}
}

// WithLogger injects a structured logger. When omitted, log output is
// silently discarded.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMemory replaces the freshly seeded conversation memory, e.g. with
// one restored from a transcript export.
func WithMemory(m *memory.Memory) Option {
	return func(a *Agent) {
		if m != nil {
			a.memory = m
		}
	}
}

// New creates an Agent with the given model provider, tool provider, and
// configuration.
func New(p provider.Provider, tp tool.Provider, cfg Config, opts ...Option) *Agent {
	cfg = cfg.withDefaults()
	a := &Agent{
		provider: p,
		tools:    tp,
		config:   cfg,
		memory:   memory.New(cfg.SystemPrompt),
		status:   nopStatusSink{},
		logger:   slog.New(nopHandler{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Memory returns the agent's conversation memory.
func (a *Agent) Memory() *memory.Memory {
	return a.memory
}

// ClearHistory truncates the conversation back to the system prompt.
func (a *Agent) ClearHistory() {
	a.memory.Clear()
}

// ListTools returns the current discovery snapshot. It is a convenience
// for presentation layers; the loop itself re-discovers per request.
func (a *Agent) ListTools(ctx context.Context) ([]tool.Schema, error) {
	schemas, err := a.tools.Discover(ctx)
	if err != nil {
		return nil, err
	}
	reg := tool.NewRegistry(schemas)
	out := make([]tool.Schema, 0, reg.Len())
	for _, name := range reg.Names() {
		s, _ := reg.Lookup(name)
		out = append(out, s)
	}
	return out, nil
}

// complete issues one model call bounded by the per-call timeout.
func (a *Agent) complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.ModelTimeout)
	defer cancel()
	return a.provider.Complete(ctx, req)
}

// nopHandler is a slog.Handler that discards all log records. Enabled
// returns false so slog skips formatting entirely (zero cost).
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
