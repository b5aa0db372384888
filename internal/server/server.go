package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/pacemap/internal/app"
)

// Server carries the user events the widget frontend produces (map clicks,
// form changes, submissions, list clicks, reset) to the controller, and
// serves the read models back.
type Server struct {
	ctrl   *app.Controller
	view   *app.ViewState
	log    *slog.Logger
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(ctrl *app.Controller, view *app.ViewState, log *slog.Logger) *Server {
	s := &Server{
		ctrl:   ctrl,
		view:   view,
		log:    log,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestID)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/workouts", s.handleListWorkouts)
		r.Post("/workouts", s.handleSubmitWorkout)
		r.Post("/workouts/{id}/focus", s.handleFocusWorkout)
		r.Post("/map/click", s.handleMapClick)
		r.Post("/form/type", s.handleFormType)
		r.Get("/map", s.handleMapState)
		r.Post("/reset", s.handleReset)
	})
}

// MountMCP mounts the MCP transport handler.
func (s *Server) MountMCP(h http.Handler) {
	s.router.Mount("/mcp", h)
}

// SetFrontend mounts the embedded widget filesystem. Unmatched routes serve
// index.html.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
