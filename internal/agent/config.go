package agent

import "time"

// Default values for Config.
const (
	DefaultSystemPrompt   = "You are a helpful assistant"
	DefaultMaxIterations  = 5
	DefaultModelTimeout   = 90 * time.Second
	DefaultRequestTimeout = 10 * time.Minute
	DefaultChunkSize      = 20
)

// Config controls the behavior of one agent instance.
type Config struct {
	// SystemPrompt anchors the conversation memory.
	SystemPrompt string `yaml:"system_prompt"`

	// MaxIterations is the maximum number of tool-calling rounds per
	// request. When exhausted, one extra model call with tools disabled
	// produces the final answer.
	MaxIterations int `yaml:"max_iterations"`

	// ModelTimeout bounds each individual model call.
	ModelTimeout time.Duration `yaml:"model_timeout"`

	// RequestTimeout bounds an entire processing request end to end,
	// including the forced summary round.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// ChunkSize is the number of characters per streamed content event.
	ChunkSize int `yaml:"chunk_size"`
}

// withDefaults returns a copy with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	if c.SystemPrompt == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.ModelTimeout <= 0 {
		c.ModelTimeout = DefaultModelTimeout
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	return c
}
