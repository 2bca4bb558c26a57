// Package mockbackend serves canned assistant API responses. It backs the client tests and the
// `mock` command so the terminal UI can be demoed without the real backend.
package mockbackend

import (
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Reply is a canned response for one route.
type Reply struct {
	Status int
	Body   string
}

// Recorded is a request seen by the server.
type Recorded struct {
	Method      string
	Path        string
	Query       string
	ContentType string
	Body        []byte
	RequestID   string
}

// Server is an http.Handler with per-route canned replies.
type Server struct {
	router chi.Router
	logger *zap.Logger

	mu      sync.Mutex
	replies map[string]Reply
	seen    []Recorded
}

// DefaultReplies returns demo payloads for every route.
func DefaultReplies() map[string]Reply {
	return map[string]Reply{
		"/chat": {Status: http.StatusOK, Body: `{"response":"Enable MFA on every remote access path and review patch windows weekly."}`},
		"/rag/ingest": {Status: http.StatusOK, Body: `{"doc_id":"demo-0001","chunks":3,"chunk_mode":"fixed","threat_tags":["phishing"]}`},
		"/rag/query": {Status: http.StatusOK, Body: `{"results":[{"doc_id":"demo-0001","score":0.91,"text":"All remote access must use MFA.","metadata":{"source":"CLIENT_001_policy.md"}}]}`},
		"/vectors/umap": {Status: http.StatusOK, Body: `{"points":[{"x":-4,"y":-4},{"x":0,"y":0},{"x":2.5,"y":-1},{"x":4.5,"y":4}],"metadata":{"n":4,"method":"umap"}}`},
		"/utils/ioc_extract": {Status: http.StatusOK, Body: `{"iocs":{"ipv4":["203.0.113.4"],"domains":["example.net"],"hashes":[]}}`},
		"/utils/headers": {Status: http.StatusOK, Body: `{"headers":[{"name":"From","value":"alerts@example.net"},{"name":"Received-SPF","value":"fail"}]}`},
		"/utils/log_summary": {Status: http.StatusOK, Body: `{"lines":3,"levels":{"ERROR":1,"INFO":2},"top_sources":["sshd"]}`},
		"/embed": {Status: http.StatusOK, Body: `{"embeddings":[[0.1,0.2,0.3]]}`},
	}
}

// New builds a server answering with DefaultReplies.
func New(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{logger: logger, replies: DefaultReplies()}

	r := chi.NewRouter()
	r.Post("/chat", s.handle)
	r.Post("/rag/ingest", s.handle)
	r.Post("/rag/query", s.handle)
	r.Get("/vectors/umap", s.handle)
	r.Post("/utils/ioc_extract", s.handle)
	r.Post("/utils/headers", s.handle)
	r.Post("/utils/log_summary", s.handle)
	r.Post("/embed", s.handle)
	s.router = r
	return s
}

// Set replaces the reply for a route path.
func (s *Server) Set(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[path] = Reply{Status: status, Body: body}
}

// Requests returns a copy of every request seen so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.seen))
	copy(out, s.seen)
	return out
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	rec := Recorded{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.RawQuery,
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
		RequestID:   r.Header.Get("X-Request-ID"),
	}

	s.mu.Lock()
	s.seen = append(s.seen, rec)
	reply, ok := s.replies[r.URL.Path]
	s.mu.Unlock()

	s.logger.Debug("mock request", zap.String("method", r.Method), zap.String("path", r.URL.Path))

	if !ok {
		http.NotFound(w, r)
		return
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	if strings.HasPrefix(strings.TrimSpace(reply.Body), "{") || strings.HasPrefix(strings.TrimSpace(reply.Body), "[") {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, reply.Body)
}
