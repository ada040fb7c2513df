// Package agent implements the round-based orchestration loop that mediates
// between a chat-completion model and externally registered tools: the model
// proposes invocations, the agent reconciles and dispatches them, folds the
// results back into conversation memory, and repeats until the model answers
// or the iteration budget runs out.
package agent

import "time"

// ToolCallRecord tracks one tool invocation during a processing request.
// Arguments holds the reconciled mapping actually dispatched, not the raw
// arguments the model proposed.
type ToolCallRecord struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	Result    string         `json:"result"`
	Success   bool           `json:"success"`
	Duration  time.Duration  `json:"-"`
}

// Result is the output of a synchronous processing request.
type Result struct {
	Answer      string           `json:"answer"`
	Iterations  int              `json:"iterations_used"`
	ToolsCalled []string         `json:"tools_called"`
	ToolCalls   []ToolCallRecord `json:"tool_calls,omitempty"`
}

// EventType identifies the kind of streaming event.
type EventType string

// EventType constants for streaming events.
const (
	EventToolCallStart EventType = "tool_call_start"
	EventToolResult    EventType = "tool_result"
	EventContent       EventType = "content"
	EventDone          EventType = "done"
	EventError         EventType = "error"
)

// Event is a single event emitted during a streaming processing request.
// A sequence is zero or more tool_call_start/tool_result pairs, then zero
// or more content chunks, terminated by exactly one done or one error.
type Event struct {
	Type     EventType
	Content  string
	ToolCall *ToolCallRecord
	Err      error
}
