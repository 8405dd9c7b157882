package analysistest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// HTTPReply is one scripted server answer. Status defaults to 200. Content
// becomes the assistant text on success and the error message otherwise.
// A non-empty Body is written verbatim instead.
type HTTPReply struct {
	Status  int
	Content string
	Body    string
	Model   string
}

// CapturedRequest is what a fake server saw for one call.
type CapturedRequest struct {
	Path   string
	Header http.Header
	Body   map[string]any
}

// Server is a fake provider endpoint. Replies are served in order; the last
// one repeats once the sequence is exhausted.
type Server struct {
	*httptest.Server

	t        testing.TB
	path     string
	encode   func(HTTPReply) any
	mu       sync.Mutex
	replies  []HTTPReply
	idx      int
	requests []CapturedRequest
}

// NewChatServer starts a server speaking the OpenAI-compatible chat
// completions format at /chat/completions. Its URL is the base URL to give
// ChatGPT, Sonar and xAI adapters. The server is closed when the test ends.
func NewChatServer(t testing.TB, replies ...HTTPReply) *Server {
	return newServer(t, "/chat/completions", chatBody, replies)
}

// NewMessagesServer starts a server speaking the Anthropic Messages format
// at /messages. Its URL is the base URL to give the Claude adapter.
func NewMessagesServer(t testing.TB, replies ...HTTPReply) *Server {
	return newServer(t, "/messages", messagesBody, replies)
}

func newServer(t testing.TB, path string, encode func(HTTPReply) any, replies []HTTPReply) *Server {
	t.Helper()
	s := &Server{t: t, path: path, encode: encode, replies: replies}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != s.path {
		s.t.Errorf("fake server: unexpected %s %s, want POST %s", r.Method, r.URL.Path, s.path)
		http.NotFound(w, r)
		return
	}

	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		s.t.Errorf("fake server: decoding request body: %v", err)
	}

	s.mu.Lock()
	s.requests = append(s.requests, CapturedRequest{Path: r.URL.Path, Header: r.Header.Clone(), Body: body})
	var reply HTTPReply
	switch {
	case len(s.replies) == 0:
		reply = HTTPReply{Status: http.StatusInternalServerError, Content: "no scripted reply"}
	case s.idx < len(s.replies):
		reply = s.replies[s.idx]
		s.idx++
	default:
		reply = s.replies[len(s.replies)-1]
	}
	s.mu.Unlock()

	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if reply.Body != "" {
		io.WriteString(w, reply.Body)
		return
	}
	if status >= 300 {
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]string{"type": "api_error", "message": reply.Content},
		})
		return
	}
	json.NewEncoder(w).Encode(s.encode(reply))
}

// Requests returns a copy of the requests received so far.
func (s *Server) Requests() []CapturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CapturedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

func chatBody(r HTTPReply) any {
	return map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  r.Model,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": r.Content},
			"finish_reason": "stop",
		}},
		"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 34},
	}
}

func messagesBody(r HTTPReply) any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"model":       r.Model,
		"content":     []map[string]string{{"type": "text", "text": r.Content}},
		"stop_reason": "end_turn",
		"usage":       map[string]int{"input_tokens": 12, "output_tokens": 34},
	}
}
