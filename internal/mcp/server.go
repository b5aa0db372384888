// Package mcp exposes the workout log to AI tools over the Model Context
// Protocol. The tools drive the same controller the widget frontend uses,
// so the form state machine and validation rules apply unchanged.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/pacemap/internal/app"
)

// New creates an MCP server with all tools and resources registered.
func New(ctrl *app.Controller, view *app.ViewState, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("PaceMap", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("PaceMap workout map. Log running and cycling workouts at map coordinates, list the recorded sessions, and focus the map on one of them."),
	)

	h := &handlers{ctrl: ctrl, view: view, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolLogWorkout, Handler: h.logWorkout},
		server.ServerTool{Tool: toolFocusWorkout, Handler: h.focusWorkout},
		server.ServerTool{Tool: toolGetMapState, Handler: h.getMapState},
	)

	s.AddResources(
		server.ServerResource{Resource: resWorkouts, Handler: h.workoutsResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ctrl *app.Controller
	view *app.ViewState
	log  *slog.Logger
}

var resWorkouts = mcp.NewResource(
	"pacemap://workouts",
	"Workout Log",
	mcp.WithResourceDescription("All recorded workouts in creation order, with derived pace/speed"),
	mcp.WithMIMEType("application/json"),
)
