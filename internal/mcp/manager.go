// Package mcp connects to Model Context Protocol servers and exposes their
// tools through the tool.Provider interface.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"github.com/searchloop/searchloop/internal/tool"
)

// clientVersion is reported to servers during the MCP handshake.
const clientVersion = "1.0.0"

// connection is one live MCP server session.
type connection struct {
	name   string
	client *mcpclient.Client
}

// Manager aggregates the tools of several MCP servers behind a single
// tool.Provider. Tool names are first-come-first-served: when two servers
// export the same name, the server listed first owns it.
type Manager struct {
	logger *slog.Logger

	mu    sync.RWMutex
	conns []connection
	// owner maps a tool name to the connection that exported it first.
	owner map[string]*connection
}

var _ tool.Provider = (*Manager)(nil)

// NewManager connects to every configured server. A failed connection is
// fatal: a partially wired toolset would silently change agent behavior.
func NewManager(ctx context.Context, servers []ServerConfig, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.New(nopHandler{})
	}

	m := &Manager{
		logger: logger,
		owner:  make(map[string]*connection),
	}

	for i := range servers {
		cfg := servers[i].withDefaults()
		if err := cfg.Validate(); err != nil {
			m.Close()
			return nil, err
		}

		c, err := connect(ctx, cfg)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("mcp: connecting to %q: %w", cfg.Name, err)
		}

		m.conns = append(m.conns, connection{name: cfg.Name, client: c})
		logger.Info("mcp server connected", "server", cfg.Name, "transport", cfg.Transport)
	}

	return m, nil
}

func connect(ctx context.Context, cfg ServerConfig) (*mcpclient.Client, error) {
	var (
		c   *mcpclient.Client
		err error
	)

	switch cfg.Transport {
	case TransportStdio:
		c, err = mcpclient.NewStdioMCPClient(cfg.Command, cfg.Env, cfg.Args...)
	case TransportSSE:
		c, err = mcpclient.NewSSEMCPClient(cfg.URL)
	case TransportStreamableHTTP:
		c, err = mcpclient.NewStreamableHttpClient(cfg.URL)
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
	if err != nil {
		return nil, err
	}

	// Stdio clients start their transport on construction.
	if cfg.Transport != TransportStdio {
		if err := c.Start(ctx); err != nil {
			return nil, fmt.Errorf("starting transport: %w", err)
		}
	}

	initReq := mcptypes.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcptypes.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcptypes.Implementation{
		Name:    "searchloop",
		Version: clientVersion,
	}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("initialize handshake: %w", err)
	}

	return c, nil
}

// Discover lists tools from every connected server and merges them into a
// single schema map. Duplicate names keep the first server's definition.
func (m *Manager) Discover(ctx context.Context) (map[string]tool.Schema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	schemas := make(map[string]tool.Schema)
	owner := make(map[string]*connection)

	for i := range m.conns {
		conn := &m.conns[i]
		list, err := conn.client.ListTools(ctx, mcptypes.ListToolsRequest{})
		if err != nil {
			return nil, fmt.Errorf("mcp: listing tools on %q: %w", conn.name, err)
		}

		for _, t := range list.Tools {
			if _, seen := schemas[t.Name]; seen {
				m.logger.Warn("duplicate tool name, keeping first",
					"tool", t.Name, "server", conn.name)
				continue
			}
			schema, err := toSchema(t)
			if err != nil {
				return nil, fmt.Errorf("mcp: tool %q on %q: %w", t.Name, conn.name, err)
			}
			schemas[t.Name] = schema
			owner[t.Name] = conn
		}
	}

	m.owner = owner
	return schemas, nil
}

// Invoke routes a call to the server that owns the tool name.
func (m *Manager) Invoke(ctx context.Context, name string, args map[string]any) (tool.Output, error) {
	m.mu.RLock()
	conn, ok := m.owner[name]
	m.mu.RUnlock()
	if !ok {
		return tool.Output{}, fmt.Errorf("%w: %s", tool.ErrToolNotFound, name)
	}

	req := mcptypes.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := conn.client.CallTool(ctx, req)
	if err != nil {
		if isPermissionDenied(err.Error()) {
			return tool.Output{}, fmt.Errorf("%w: %s: %s", tool.ErrPermissionDenied, name, err)
		}
		return tool.Output{}, fmt.Errorf("mcp: calling %q on %q: %w", name, conn.name, err)
	}

	content := flattenContent(res.Content)
	if res.IsError && isPermissionDenied(content) {
		return tool.Output{}, fmt.Errorf("%w: %s: %s", tool.ErrPermissionDenied, name, content)
	}

	return tool.Output{Content: content, IsError: res.IsError}, nil
}

// Close shuts down all server sessions. Safe on a partially built manager.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for _, conn := range m.conns {
		if err := conn.client.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("mcp: closing %q: %w", conn.name, err)
		}
	}
	m.conns = nil
	m.owner = map[string]*connection{}
	return firstErr
}

// toSchema converts an MCP tool declaration into the registry's shape.
func toSchema(t mcptypes.Tool) (tool.Schema, error) {
	params := make([]string, 0, len(t.InputSchema.Properties))
	for name := range t.InputSchema.Properties {
		params = append(params, name)
	}
	sort.Strings(params)

	raw, err := json.Marshal(t.InputSchema)
	if err != nil {
		return tool.Schema{}, fmt.Errorf("encoding input schema: %w", err)
	}

	return tool.Schema{
		Name:        t.Name,
		Description: t.Description,
		Required:    t.InputSchema.Required,
		Params:      params,
		InputSchema: raw,
	}, nil
}

// flattenContent joins the text parts of a tool result. Non-text parts are
// summarized by type so the model still learns something was returned.
func flattenContent(parts []mcptypes.Content) string {
	var sb strings.Builder
	for _, part := range parts {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		switch c := part.(type) {
		case mcptypes.TextContent:
			sb.WriteString(c.Text)
		case mcptypes.ImageContent:
			sb.WriteString(fmt.Sprintf("[image: %s]", c.MIMEType))
		default:
			sb.WriteString(fmt.Sprintf("[%T]", part))
		}
	}
	return sb.String()
}

// isPermissionDenied detects server-side access refusals, which the agent
// treats as fatal rather than recoverable.
func isPermissionDenied(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "denied")
}

// nopHandler discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
