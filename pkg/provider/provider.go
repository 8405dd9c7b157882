package provider

import "context"

// Provider defines the interface for LLM API backends.
type Provider interface {
	// Complete sends a completion request and returns the model response.
	Complete(ctx context.Context, req *Request) (*Response, error)

	// Name returns the provider identifier (e.g. "anthropic").
	Name() string
}

// Request represents a single-turn completion request to an LLM provider.
type Request struct {
	Model    string    `json:"model"`
	System   string    `json:"system,omitempty"`
	Messages []Message `json:"messages"`

	// Temperature is sent only when non-nil so that zero can be requested
	// explicitly.
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
}

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response represents a completion response from an LLM provider.
type Response struct {
	Content    string `json:"content"`
	Model      string `json:"model,omitempty"`
	Usage      Usage  `json:"usage"`
	StopReason string `json:"stop_reason"`
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Float64 returns a pointer to f, for Request.Temperature.
func Float64(f float64) *float64 { return &f }
