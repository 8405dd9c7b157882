package analysistest

import (
	"context"
	"fmt"
	"sync"

	"github.com/jdgilhuly/go_text_analyzer/pkg/provider"
)

// Reply is one scripted MockProvider answer. A non-nil Err is returned
// instead of a response.
type Reply struct {
	Content string
	Model   string
	Usage   provider.Usage
	Err     error
}

// MockProvider returns pre-configured replies in sequence and records every
// request it receives. It is safe for concurrent use.
type MockProvider struct {
	mu       sync.Mutex
	replies  []Reply
	idx      int
	requests []provider.Request
}

// NewMockProvider creates a MockProvider that returns the given replies in
// order. Once all replies are consumed, subsequent calls return an error.
func NewMockProvider(replies ...Reply) *MockProvider {
	return &MockProvider{replies: replies}
}

// Complete records req and returns the next scripted reply.
func (m *MockProvider) Complete(_ context.Context, req *provider.Request) (*provider.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, *req)

	if m.idx >= len(m.replies) {
		return nil, fmt.Errorf("mock provider: no more replies (consumed %d/%d)", m.idx, len(m.replies))
	}
	r := m.replies[m.idx]
	m.idx++

	if r.Err != nil {
		return nil, r.Err
	}
	return &provider.Response{
		Content:    r.Content,
		Model:      r.Model,
		Usage:      r.Usage,
		StopReason: "end_turn",
	}, nil
}

// Name returns "mock".
func (m *MockProvider) Name() string { return "mock" }

// Requests returns a copy of the requests received so far.
func (m *MockProvider) Requests() []provider.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]provider.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns how many times Complete has been called.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
