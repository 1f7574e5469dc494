package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/repository"
	"github.com/go-chi/chi/v5"
	"tailscale.com/client/local"
)

// Server holds dependencies for HTTP handlers. It is the collaborator surface
// the view layer talks to; the view never touches the store directly.
type Server struct {
	repo   *repository.Repository
	log    *slog.Logger
	units  string
	ts     *local.Client
	router chi.Router
}

// New creates a new Server with all routes configured. units is the display
// unit preference passed through to the frontend; it never affects stored
// values.
func New(repo *repository.Repository, units string, log *slog.Logger) *Server {
	s := &Server{
		repo:   repo,
		log:    log,
		units:  units,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale wires the tsnet local client used to resolve request identity.
func (s *Server) SetTailscale(lc *local.Client) {
	s.ts = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.Identity)

	s.router.Get("/api/v1/health", s.handleHealth)
	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/settings", s.handleSettings)

	s.router.Get("/api/v1/snapshot", s.handleSnapshot)

	s.router.Post("/api/v1/workouts", s.handleCreateWorkout)
	s.router.Delete("/api/v1/workouts/{id}", s.handleDeleteWorkout)
	s.router.Post("/api/v1/workouts/{id}/duplicate", s.handleDuplicateWorkout)
	s.router.Post("/api/v1/workouts/{id}/sets", s.handleAddPlannedSets)

	s.router.Patch("/api/v1/sets/{id}", s.handleUpdateSet)
	s.router.Delete("/api/v1/sets/{id}", s.handleDeleteSet)

	s.router.Get("/api/v1/exercises/{id}/progress", s.handleExerciseProgress)

	s.router.Get("/api/v1/export", s.handleExport)
	s.router.Get("/api/v1/export.csv", s.handleExportCSV)
}
