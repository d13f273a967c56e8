package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"feedstream/internal/gateway"
	"feedstream/internal/utils"
)

// Server holds the handler dependencies: the gateway operation surface plus
// observability.
type Server struct {
	Gateway *gateway.Gateway
	Metrics *utils.MetricsCollector
	Logger  *slog.Logger
}

// NewServer creates a new Server instance with the given components
func NewServer(gw *gateway.Gateway, metrics *utils.MetricsCollector, logger *slog.Logger) *Server {
	return &Server{
		Gateway: gw,
		Metrics: metrics,
		Logger:  logger,
	}
}

// Routes registers every handler on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.HandleHealth())
	mux.HandleFunc("/metrics", s.HandleMetrics())

	mux.HandleFunc("/register", s.HandleRegister())
	mux.HandleFunc("/login", s.HandleLogin())
	mux.HandleFunc("/profile", s.HandleProfile())
	mux.HandleFunc("/users", s.HandleUsers())
	mux.HandleFunc("/follow", s.HandleFollow())
	mux.HandleFunc("/graph", s.HandleGraph())

	mux.HandleFunc("/feed", s.HandleFeed())
	mux.HandleFunc("/posts", s.HandlePosts())
	mux.HandleFunc("/posts/comment", s.HandleComment())
	mux.HandleFunc("/posts/like", s.HandleLike())

	return mux
}

// HandleHealth reports liveness.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, map[string]string{"status": "ok"})
	}
}

// HandleMetrics reports the collector snapshot.
func (s *Server) HandleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, s.Metrics.Snapshot())
	}
}

// track records a completed operation in the metrics collector.
func (s *Server) track(op string, start time.Time, err error) {
	s.Metrics.IncrementRequests()
	s.Metrics.AddOperationLatency(op, time.Since(start))
	if err != nil {
		s.Metrics.IncrementErrors()
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps an AppError to its HTTP status; anything else is an opaque
// internal error.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	if appErr, ok := err.(*utils.AppError); ok {
		status = utils.AppErrorToHTTPStatus(appErr.Code)
		message = appErr.Message
	}

	if status == http.StatusInternalServerError {
		s.Logger.Error("request failed", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
