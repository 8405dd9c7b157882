package adapter

import (
	"github.com/jdgilhuly/go_text_analyzer/pkg/provider"
)

// Display names of the built-in adapters.
const (
	Claude  = "Claude"
	ChatGPT = "ChatGPT"
	Sonar   = "Sonar"
	XAI     = "xAI"
)

const (
	defaultSonarURL = "https://api.perplexity.ai"
	defaultXAIURL   = "https://api.x.ai/v1"
)

// NewClaude returns the Claude adapter, speaking the Anthropic Messages API.
func NewClaude(apiKey, model string, opts ...Option) (*ChatAdapter, error) {
	o := collect(opts)
	var popts []provider.AnthropicOption
	if o.httpClient != nil {
		popts = append(popts, provider.WithHTTPClient(o.httpClient))
	}
	if o.baseURL != "" {
		popts = append(popts, provider.WithBaseURL(o.baseURL))
	}
	return newChatAdapter(Claude, provider.NewAnthropicProvider(apiKey, popts...), model, o)
}

// NewChatGPT returns the ChatGPT adapter for the OpenAI chat completions API.
func NewChatGPT(apiKey, model string, opts ...Option) (*ChatAdapter, error) {
	o := collect(opts)
	return newChatAdapter(ChatGPT, openAICompatible(apiKey, "openai", "", o), model, o)
}

// NewSonar returns the Perplexity Sonar adapter.
func NewSonar(apiKey, model string, opts ...Option) (*ChatAdapter, error) {
	o := collect(opts)
	return newChatAdapter(Sonar, openAICompatible(apiKey, "sonar", defaultSonarURL, o), model, o)
}

// NewXAI returns the xAI Grok adapter.
func NewXAI(apiKey, model string, opts ...Option) (*ChatAdapter, error) {
	o := collect(opts)
	return newChatAdapter(XAI, openAICompatible(apiKey, "xai", defaultXAIURL, o), model, o)
}

func openAICompatible(apiKey, name, defaultURL string, o *options) *provider.OpenAIProvider {
	popts := []provider.OpenAIOption{provider.WithOpenAIName(name)}
	if o.httpClient != nil {
		popts = append(popts, provider.WithOpenAIHTTPClient(o.httpClient))
	}
	switch {
	case o.baseURL != "":
		popts = append(popts, provider.WithOpenAIBaseURL(o.baseURL))
	case defaultURL != "":
		popts = append(popts, provider.WithOpenAIBaseURL(defaultURL))
	}
	return provider.NewOpenAIProvider(apiKey, popts...)
}
