// Package provider defines the Provider interface for communicating with
// chat-completion LLM APIs and the message types shared across the agent.
package provider

import "context"

// Provider is the interface for communicating with an LLM. Concrete
// implementations live in subpackages (e.g. provider/openai).
type Provider interface {
	// Complete sends a completion request and returns the full response.
	// Implementations must honor ctx cancellation and deadlines.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}
