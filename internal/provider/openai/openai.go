// Package openai provides a provider.Provider backed by any API that
// implements the OpenAI chat completions interface (DeepSeek, GLM, Groq,
// vLLM, LiteLLM, etc.) via a configurable base_url.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/searchloop/searchloop/internal/provider"
)

// Client is an OpenAI-compatible chat-completions client.
type Client struct {
	config Config
	http   *http.Client
}

// New creates a Client from the given configuration.
func New(cfg Config) (*Client, error) {
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Use a transport with response-header timeout instead of a global
	// client timeout; per-request context handles overall cancellation.
	return &Client{
		config: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: cfg.Timeout,
			},
		},
	}, nil
}

// Complete implements provider.Provider.
func (c *Client) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	oaiReq := buildRequest(c.config.Model, c.config.MaxTokens, req)

	resp, err := c.doRequest(ctx, oaiReq)
	if err != nil {
		return provider.CompletionResponse{}, err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		return provider.CompletionResponse{}, handleErrorResponse(resp)
	}

	var oaiResp oaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&oaiResp); err != nil {
		return provider.CompletionResponse{}, fmt.Errorf("decode response: %w", err)
	}

	return parseResponse(oaiResp), nil
}

// ModelName implements provider.Provider.
func (c *Client) ModelName() string {
	return c.config.Model
}

// Compile-time interface assertion.
var _ provider.Provider = (*Client)(nil)
