package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/sfl-lite/internal/service"
)

// Server serves the session history API.
type Server struct {
	handlers *Handlers
	mux      *http.ServeMux
}

// NewServer creates a new web server over the recorded history.
func NewServer(history *service.HistoryService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		handlers: NewHandlers(history, logger),
		mux:      http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Trailing slash enables prefix matching for all /api/sessions/* paths
	s.mux.HandleFunc("/api/sessions/", s.corsMiddleware(s.routeSessions))
	s.mux.HandleFunc("/api/sessions", s.corsMiddleware(s.routeSessions))
	s.mux.HandleFunc("/api/heuristics", s.corsMiddleware(s.handlers.ListHeuristics))
}

// routeSessions routes requests to the appropriate handler based on the path
func (s *Server) routeSessions(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/sessions"), "/")
	parts := strings.Split(path, "/")

	switch {
	case path == "":
		// GET /api/sessions
		if r.Method == http.MethodGet {
			s.handlers.ListSessions(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}

	case len(parts) == 2 && parts[1] == "rank":
		// GET /api/sessions/:id/rank?heuristic=
		if r.Method == http.MethodGet {
			s.handlers.RankSession(w, r, parts[0])
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}

	case len(parts) == 1:
		// GET /api/sessions/:id, DELETE /api/sessions/:id
		switch r.Method {
		case http.MethodGet:
			s.handlers.GetSession(w, r, parts[0])
		case http.MethodDelete:
			s.handlers.DeleteSession(w, r, parts[0])
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}

	default:
		http.NotFound(w, r)
	}
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler() http.Handler {
	return s.mux
}
