// Package apitest provides an in-process fake of the command service.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Request is one call received by the fake.
type Request struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Reply is a canned response.
type Reply struct {
	Status int
	Body   any    // JSON-encoded unless Raw is set
	Raw    string // sent verbatim when non-empty
}

// Server records calls and answers them from per-path replies. Paths without
// a reply get 404.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	replies  map[string]Reply
	requests []Request
}

// NewServer starts a fake with healthy defaults for every endpoint.
func NewServer() *Server {
	s := &Server{replies: map[string]Reply{
		"/health":       {Status: http.StatusOK, Body: map[string]any{"status": "ok"}},
		"/commands":     {Status: http.StatusOK, Body: map[string]any{"result": "ok"}},
		"/command-logs": {Status: http.StatusOK, Body: []any{}},
		"/assets":       {Status: http.StatusOK, Body: []any{}},
		"/tasks":        {Status: http.StatusOK, Body: []any{}},
	}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Reply sets the response for path.
func (s *Server) Reply(path string, r Reply) {
	s.mu.Lock()
	s.replies[path] = r
	s.mu.Unlock()
}

// Requests returns every call received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns the calls received for path.
func (s *Server) RequestsTo(path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	reply, ok := s.replies[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if reply.Raw != "" {
		w.WriteHeader(reply.Status)
		_, _ = io.WriteString(w, reply.Raw)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	_ = json.NewEncoder(w).Encode(reply.Body)
}
