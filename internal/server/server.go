// Package server exposes the planner over HTTP. Handlers only translate
// between the wire format and the planner; all rules live below.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/username/workshop-planner/internal/apperr"
	"github.com/username/workshop-planner/internal/planner"
	"github.com/username/workshop-planner/internal/schedule"
	"github.com/username/workshop-planner/internal/storage"
	"go.uber.org/zap"
)

// Server holds the HTTP routing and its dependencies.
type Server struct {
	planner *planner.Planner
	engine  *schedule.Engine
	files   *storage.Storage
	logger  *zap.Logger
	router  *mux.Router
}

// New creates a Server with all routes registered.
func New(p *planner.Planner, engine *schedule.Engine, files *storage.Storage, logger *zap.Logger) *Server {
	s := &Server{
		planner: p,
		engine:  engine,
		files:   files,
		logger:  logger,
		router:  mux.NewRouter(),
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.HandleFunc("/api/jobs", s.handleListJobs).Methods("GET")
	s.router.HandleFunc("/api/jobs", s.handleCreateJob).Methods("POST")
	s.router.HandleFunc("/api/jobs/{id:[0-9]+}", s.handleGetJob).Methods("GET")
	s.router.HandleFunc("/api/jobs/{id:[0-9]+}", s.handleUpdateJob).Methods("PUT")
	s.router.HandleFunc("/api/jobs/{id:[0-9]+}/status", s.handleUpdateStatus).Methods("PATCH")
	s.router.HandleFunc("/api/jobs/{id:[0-9]+}", s.handleDeleteJob).Methods("DELETE")

	s.router.HandleFunc("/api/clipboard", s.handleListNotes).Methods("GET")
	s.router.HandleFunc("/api/clipboard", s.handleCreateNote).Methods("POST")
	s.router.HandleFunc("/api/clipboard/{id:[0-9]+}", s.handleDeleteNote).Methods("DELETE")

	s.router.HandleFunc("/api/schedule/check", s.handleScheduleCheck).Methods("GET")

	s.router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.files.Dir()))))

	s.router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case apperr.IsValidation(err):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case apperr.IsNotFound(err):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
