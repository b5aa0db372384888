package mcp

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/pacemap/internal/app"
	"github.com/meltforce/pacemap/internal/geo"
	"github.com/meltforce/pacemap/internal/workout"
)

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List all recorded workouts in creation order. Each entry includes coordinates, distance (km), duration (min), the kind-specific attribute, and the derived pace or speed."),
)

var toolLogWorkout = mcp.NewTool("log_workout",
	mcp.WithDescription("Record a workout at a map coordinate. Running workouts need a cadence; cycling workouts take an elevation gain (may be zero or negative)."),
	mcp.WithString("type", mcp.Required(), mcp.Description("Workout kind"), mcp.Enum("running", "cycling")),
	mcp.WithNumber("lat", mcp.Required(), mcp.Description("Latitude of the workout location")),
	mcp.WithNumber("lng", mcp.Required(), mcp.Description("Longitude of the workout location")),
	mcp.WithNumber("distance", mcp.Required(), mcp.Description("Distance in km (positive)")),
	mcp.WithNumber("duration", mcp.Required(), mcp.Description("Duration in minutes (positive)")),
	mcp.WithNumber("cadence", mcp.Description("Cadence in steps/min (running, positive)")),
	mcp.WithNumber("elevation", mcp.Description("Elevation gain in meters (cycling)")),
)

var toolFocusWorkout = mcp.NewTool("focus_workout",
	mcp.WithDescription("Re-center the map on a recorded workout. A missing ID is a no-op."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout ID (millisecond epoch integer)")),
)

var toolGetMapState = mcp.NewTool("get_map_state",
	mcp.WithDescription("Get the current map view: center, zoom, tile layer, and placed markers."),
)

// --- Tool handlers ---

// workoutView mirrors the HTTP API shape: the flattened record plus the
// derived metric.
type workoutView struct {
	workout.Flat
	Pace  *float64 `json:"pace,omitempty"`
	Speed *float64 `json:"speed,omitempty"`
}

func viewsOf(records []*workout.Workout) []workoutView {
	views := make([]workoutView, len(records))
	for i, w := range records {
		views[i] = workoutView{Flat: w.Flatten()}
		switch w.Kind {
		case workout.KindRunning:
			pace := w.PaceMinPerKm
			views[i].Pace = &pace
		case workout.KindCycling:
			speed := w.SpeedKmPerH
			views[i].Speed = &speed
		}
	}
	return views
}

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(viewsOf(h.ctrl.Workouts()))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type parameter is required"), nil
	}
	lat, err := req.RequireFloat("lat")
	if err != nil {
		return mcp.NewToolResultError("lat parameter is required"), nil
	}
	lng, err := req.RequireFloat("lng")
	if err != nil {
		return mcp.NewToolResultError("lng parameter is required"), nil
	}

	if err := h.ctrl.MapClicked(geo.Coordinates{Lat: lat, Lng: lng}); err != nil {
		return mcp.NewToolResultError("invalid location: " + err.Error()), nil
	}

	fields := app.FormFields{
		Type:      kind,
		Distance:  numParam(req, "distance"),
		Duration:  numParam(req, "duration"),
		Cadence:   numParam(req, "cadence"),
		Elevation: numParam(req, "elevation"),
	}

	w, err := h.ctrl.FormSubmitted(ctx, fields)
	if err != nil {
		h.log.Warn("mcp log_workout rejected", "error", err)
		return mcp.NewToolResultError("workout rejected: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(viewsOf([]*workout.Workout{w})[0])
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) focusWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return mcp.NewToolResultError("id must be an integer"), nil
	}

	if !h.ctrl.WorkoutSelected(id) {
		return mcp.NewToolResultText("no workout with that ID; map unchanged"), nil
	}
	return mcp.NewToolResultText("map centered on workout " + idStr), nil
}

func (h *handlers) getMapState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(h.view.Snapshot())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// numParam renders an optional numeric argument as the raw string form the
// controller expects; absent arguments stay empty and fail validation only
// when the kind requires them.
func numParam(req mcp.CallToolRequest, key string) string {
	args := req.GetArguments()
	v, ok := args[key]
	if !ok {
		return ""
	}
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// --- Resource handlers ---

func (h *handlers) workoutsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(viewsOf(h.ctrl.Workouts()))
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
