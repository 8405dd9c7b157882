// Package provider implements the HTTP transports for the LLM services the
// analyzer talks to: the Anthropic Messages API and the OpenAI-compatible
// Chat Completions API shared by OpenAI, Perplexity (Sonar), and xAI.
//
// Transports make exactly one attempt per call. Non-2xx responses are
// returned as *StatusError.
package provider
