package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultOpenAIURL  = "https://api.openai.com/v1"
	defaultOpenAIName = "openai"
)

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithOpenAIHTTPClient sets a custom HTTP client (useful for testing).
func WithOpenAIHTTPClient(c *http.Client) OpenAIOption {
	return func(p *OpenAIProvider) { p.client = c }
}

// WithOpenAIBaseURL overrides the API base URL. The request is sent to
// <base>/chat/completions, so any OpenAI-compatible service (Perplexity,
// xAI) can be targeted.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(p *OpenAIProvider) { p.baseURL = url }
}

// WithOpenAIName overrides the name reported by Name.
func WithOpenAIName(name string) OpenAIOption {
	return func(p *OpenAIProvider) { p.name = name }
}

// OpenAIProvider implements Provider for the OpenAI Chat Completions API and
// compatible services.
type OpenAIProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenAIProvider creates a new OpenAI provider with the given API key.
// The default HTTP client has no timeout.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) *OpenAIProvider {
	p := &OpenAIProvider{
		name:    defaultOpenAIName,
		apiKey:  apiKey,
		baseURL: defaultOpenAIURL,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns "openai" unless overridden with WithOpenAIName.
func (p *OpenAIProvider) Name() string { return p.name }

// openaiRequest is the Chat Completions request body.
type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Temperature *float64        `json:"temperature,omitempty"`
	MaxTokens   *int            `json:"max_tokens,omitempty"`
}

type openaiMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

// openaiResponse is the Chat Completions response body.
type openaiResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Model   string         `json:"model"`
	Choices []openaiChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type openaiChoice struct {
	Index        int           `json:"index"`
	Message      openaiMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openaiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends a request to the Chat Completions endpoint.
func (p *OpenAIProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	body, err := p.buildRequestBody(req)
	if err != nil {
		return nil, fmt.Errorf("building request body: %w", err)
	}
	return p.doRequest(ctx, body)
}

func (p *OpenAIProvider) buildRequestBody(req *Request) ([]byte, error) {
	or := openaiRequest{
		Model:       req.Model,
		Messages:    convertToOpenAIMessages(req.System, req.Messages),
		Temperature: req.Temperature,
	}

	if req.MaxTokens != 0 {
		m := req.MaxTokens
		or.MaxTokens = &m
	}

	return json.Marshal(or)
}

func convertToOpenAIMessages(system string, msgs []Message) []openaiMessage {
	out := make([]openaiMessage, 0, len(msgs)+1)

	// OpenAI uses a system message in the messages array.
	if system != "" {
		s := system
		out = append(out, openaiMessage{Role: "system", Content: &s})
	}

	for _, m := range msgs {
		c := m.Content
		out = append(out, openaiMessage{Role: m.Role, Content: &c})
	}
	return out
}

func (p *OpenAIProvider) doRequest(ctx context.Context, body []byte) (*Response, error) {
	url := strings.TrimRight(p.baseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending HTTP request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var apiErr openaiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, &StatusError{StatusCode: httpResp.StatusCode, Message: apiErr.Error.Message}
		}
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Message: truncateBody(respBody)}
	}

	var or openaiResponse
	if err := json.Unmarshal(respBody, &or); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return parseOpenAIResponse(&or), nil
}

func parseOpenAIResponse(or *openaiResponse) *Response {
	resp := &Response{
		Model: or.Model,
		Usage: Usage{
			InputTokens:  or.Usage.PromptTokens,
			OutputTokens: or.Usage.CompletionTokens,
		},
	}

	if len(or.Choices) == 0 {
		return resp
	}

	choice := or.Choices[0]
	resp.StopReason = choice.FinishReason
	if choice.Message.Content != nil {
		resp.Content = *choice.Message.Content
	}
	return resp
}
