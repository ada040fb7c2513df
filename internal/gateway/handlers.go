package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/searchloop/searchloop/internal/agent"
	"github.com/searchloop/searchloop/internal/provider"
	"github.com/searchloop/searchloop/internal/tool"
	"github.com/searchloop/searchloop/internal/transcript"
)

// QueryRequest is the JSON body for POST /api/query and /api/query/stream.
type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// QueryResponse is the JSON response for POST /api/query.
type QueryResponse struct {
	SessionID   string                 `json:"session_id"`
	Answer      string                 `json:"answer"`
	Iterations  int                    `json:"iterations_used"`
	ToolsCalled []string               `json:"tools_called,omitempty"`
	ToolCalls   []agent.ToolCallRecord `json:"tool_calls,omitempty"`
}

// handleQuery runs a query to completion and returns the materialized result.
func (g *Gateway) handleQuery() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := g.decodeQuery(w, r)
		if !ok {
			return
		}

		sess := g.session(r.Context(), req.SessionID)
		sess.mu.Lock()
		defer sess.mu.Unlock()

		start := time.Now()
		result, err := sess.runner.ProcessQuery(r.Context(), req.Query)
		g.metrics.duration.WithLabelValues("query").Observe(time.Since(start).Seconds())

		if err != nil {
			g.metrics.requests.WithLabelValues("query", "error").Inc()
			g.writeQueryError(w, err)
			return
		}

		g.metrics.requests.WithLabelValues("query", "ok").Inc()
		g.recordToolCalls(result.ToolCalls)
		g.persistTranscript(r.Context(), sess)

		writeJSON(w, http.StatusOK, QueryResponse{
			SessionID:   sess.id,
			Answer:      result.Answer,
			Iterations:  result.Iterations,
			ToolsCalled: result.ToolsCalled,
			ToolCalls:   result.ToolCalls,
		})
	}
}

// handleQueryStream runs a query and relays agent events as SSE. Each
// event is framed as "event: <type>" plus a JSON data line.
func (g *Gateway) handleQueryStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := g.decodeQuery(w, r)
		if !ok {
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		sess := g.session(r.Context(), req.SessionID)
		sess.mu.Lock()
		defer sess.mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Session-Id", sess.id)
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		g.metrics.activeStreams.Inc()
		defer g.metrics.activeStreams.Dec()

		start := time.Now()
		status := "ok"

		for ev := range sess.runner.ProcessQueryStream(r.Context(), req.Query) {
			writeSSE(w, ev)
			flusher.Flush()

			switch ev.Type {
			case agent.EventToolResult:
				if ev.ToolCall != nil {
					g.metrics.toolCalls.WithLabelValues(ev.ToolCall.Name, outcome(ev.ToolCall.Success)).Inc()
				}
			case agent.EventError:
				status = "error"
			}
		}

		g.metrics.duration.WithLabelValues("stream").Observe(time.Since(start).Seconds())
		g.metrics.requests.WithLabelValues("stream", status).Inc()

		if status == "ok" {
			g.persistTranscript(r.Context(), sess)
		}
	}
}

// handleListTools reports the currently discoverable tool schemas.
func (g *Gateway) handleListTools() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schemas, err := g.tools.ListTools(r.Context())
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tools": schemas})
	}
}

// SessionEntry describes one live session in GET /api/sessions.
type SessionEntry struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
}

// handleListSessions reports live sessions merged with persisted
// transcripts that have not been resumed yet. Live entries win on overlap.
func (g *Gateway) handleListSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		live := g.sessions.list()
		seen := make(map[string]bool, len(live))
		entries := make([]SessionEntry, 0, len(live))
		for _, sess := range live {
			seen[sess.id] = true
			entries = append(entries, SessionEntry{
				ID:        sess.id,
				CreatedAt: sess.createdAt.UTC().Format(time.RFC3339),
			})
		}

		if g.store != nil {
			stored, err := g.store.List(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			for _, info := range stored {
				if seen[info.ID] {
					continue
				}
				entries = append(entries, SessionEntry{ID: info.ID, CreatedAt: info.CreatedAt})
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{"sessions": entries})
	}
}

func (g *Gateway) handleDeleteSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		removed := g.sessions.delete(id)
		if g.store != nil {
			err := g.store.Delete(r.Context(), id)
			if err == nil {
				removed = true
			} else if !errors.Is(err, transcript.ErrNotFound) {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}

		if !removed {
			writeError(w, http.StatusNotFound, fmt.Sprintf("unknown session %q", id))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Sessions: g.sessions.len(),
		})
	}
}

func (g *Gateway) decodeQuery(w http.ResponseWriter, r *http.Request) (QueryRequest, bool) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return QueryRequest{}, false
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return QueryRequest{}, false
	}
	return req, true
}

func (g *Gateway) recordToolCalls(records []agent.ToolCallRecord) {
	for _, rec := range records {
		g.metrics.toolCalls.WithLabelValues(rec.Name, outcome(rec.Success)).Inc()
	}
}

func outcome(success bool) string {
	if success {
		return "ok"
	}
	return "error"
}

// persistTranscript saves the session's conversation when a store is
// configured. Failures are logged, never surfaced to the client.
func (g *Gateway) persistTranscript(ctx context.Context, sess *session) {
	if g.store == nil {
		return
	}
	data, err := sess.runner.Memory().Export()
	if err != nil {
		g.logger.Error("transcript export failed", "session", sess.id, "error", err)
		return
	}
	if err := g.store.Save(ctx, sess.id, data); err != nil {
		g.logger.Error("transcript save failed", "session", sess.id, "error", err)
	}
}

// writeQueryError maps agent failures onto HTTP status codes.
func (g *Gateway) writeQueryError(w http.ResponseWriter, err error) {
	g.logger.Error("query failed", "error", err)

	switch {
	case errors.Is(err, tool.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, provider.ErrRateLimit):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, provider.ErrProviderDown), errors.Is(err, provider.ErrAuthentication),
		errors.Is(err, provider.ErrContextLength):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeSSE frames one agent event as a server-sent event. The data payload
// mirrors the event fields relevant to its type.
func writeSSE(w http.ResponseWriter, ev agent.Event) {
	var payload any
	switch ev.Type {
	case agent.EventToolCallStart, agent.EventToolResult:
		payload = ev.ToolCall
	case agent.EventContent:
		payload = map[string]string{"content": ev.Content}
	case agent.EventError:
		payload = map[string]string{"error": ev.Err.Error()}
	default:
		payload = struct{}{}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("{}")
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
}
