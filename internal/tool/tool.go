// Package tool defines the tool-execution boundary: the schema snapshot the
// agent reasons over, the provider interface tools are dispatched through,
// and the argument reconciler that repairs naming drift in model-proposed
// tool calls.
package tool

import (
	"context"
	"encoding/json"
)

// Schema describes one callable tool as declared by its provider.
// It is immutable for the duration of one processing request.
type Schema struct {
	// Name is the unique identifier for the tool.
	Name string

	// Description is the human-readable summary shown to the model.
	Description string

	// Required lists the parameter names that must be present for an
	// invocation to succeed.
	Required []string

	// Params lists all declared parameter names (required and optional),
	// sorted for deterministic iteration.
	Params []string

	// InputSchema is the tool's raw JSON Schema, passed through to the
	// model as the callable-function parameter descriptor.
	InputSchema json.RawMessage
}

// Output is the result of a tool invocation.
type Output struct {
	// Content is the output text from the tool.
	Content string

	// IsError indicates the output represents a failed invocation whose
	// text should be fed back to the model as evidence.
	IsError bool
}

// Provider discovers and invokes tools over some transport. Implementations
// must return an error wrapping ErrPermissionDenied when the backing system
// refuses an invocation on permission grounds; any other invocation failure
// is recoverable and may be reported either as an error or as an Output with
// IsError set.
type Provider interface {
	// Discover lists the currently available tools keyed by name.
	// An empty map is valid: the agent proceeds without tools.
	Discover(ctx context.Context) (map[string]Schema, error)

	// Invoke executes the named tool with the given arguments.
	Invoke(ctx context.Context, name string, args map[string]any) (Output, error)
}
