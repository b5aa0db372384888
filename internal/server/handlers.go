package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/pacemap/internal/app"
	"github.com/meltforce/pacemap/internal/geo"
	"github.com/meltforce/pacemap/internal/workout"
)

// workoutView is the API shape of a workout: the flattened record plus the
// derived metric of its variant.
type workoutView struct {
	workout.Flat
	Pace  *float64 `json:"pace,omitempty"`
	Speed *float64 `json:"speed,omitempty"`
}

func viewOf(w *workout.Workout) workoutView {
	v := workoutView{Flat: w.Flatten()}
	switch w.Kind {
	case workout.KindRunning:
		pace := w.PaceMinPerKm
		v.Pace = &pace
	case workout.KindCycling:
		speed := w.SpeedKmPerH
		v.Speed = &speed
	}
	return v
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	records := s.ctrl.Workouts()
	views := make([]workoutView, len(records))
	for i, rec := range records {
		views[i] = viewOf(rec)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSubmitWorkout(w http.ResponseWriter, r *http.Request) {
	var fields app.FormFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	rec, err := s.ctrl.FormSubmitted(r.Context(), fields)
	if err != nil {
		var verr *workout.ValidationError
		switch {
		case errors.Is(err, app.ErrNoPendingLocation):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.As(err, &verr):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": verr.Error(),
				"alert": "Inputs have to be positive numbers!",
			})
		default:
			s.log.Error("form submit", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, viewOf(rec))
}

func (s *Server) handleFocusWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	if !s.ctrl.WorkoutSelected(id) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *Server) handleMapClick(w http.ResponseWriter, r *http.Request) {
	var click struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	if err := json.NewDecoder(r.Body).Decode(&click); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := s.ctrl.MapClicked(geo.Coordinates{Lat: click.Lat, Lng: click.Lng}); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	state, kind := s.ctrl.State()
	writeJSON(w, http.StatusOK, map[string]any{"state": state, "type": kind})
}

func (s *Server) handleFormType(w http.ResponseWriter, r *http.Request) {
	var change struct {
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := s.ctrl.FormTypeChanged(change.Type); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMapState(w http.ResponseWriter, r *http.Request) {
	state, kind := s.ctrl.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"map": s.view.Snapshot(),
		"form": map[string]any{
			"state": state,
			"type":  kind,
		},
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Reset(r.Context()); err != nil {
		s.log.Error("reset", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
