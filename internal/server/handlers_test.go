package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/meltforce/pacemap/internal/app"
	"github.com/meltforce/pacemap/internal/geo"
	"github.com/meltforce/pacemap/internal/session"
	"github.com/meltforce/pacemap/internal/storage"
)

// memBlobs is an in-memory BlobStore for handler tests.
type memBlobs struct {
	blobs map[string][]byte
}

func (m *memBlobs) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.blobs[key]
	return v, ok, nil
}
func (m *memBlobs) Put(_ context.Context, key string, value []byte) error {
	m.blobs[key] = value
	return nil
}
func (m *memBlobs) Delete(_ context.Context, key string) error {
	delete(m.blobs, key)
	return nil
}
func (m *memBlobs) Close() error { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	view := app.NewViewState()
	ctrl := app.NewController(session.New(), storage.NewArchive(&memBlobs{blobs: map[string][]byte{}}, log), view, nil, app.Options{
		DefaultCenter: geo.Coordinates{Lat: 51.5, Lng: -0.12},
		DefaultZoom:   13,
		TileURL:       "https://tile.example/{z}/{x}/{y}.png",
	}, log)
	ctrl.Start(context.Background())
	return New(ctrl, view, log)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func clickMap(t *testing.T, s *Server) {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/v1/map/click", `{"lat": 36.27, "lng": 49.99}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("map click status = %d, want 200", rec.Code)
	}
}

// TestMapClickOpensForm verifies a map click transitions the form state.
func TestMapClickOpensForm(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/v1/map/click", `{"lat": 36.27, "lng": 49.99}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["state"] != string(app.FormOpen) {
		t.Errorf("state = %q, want form_open", resp["state"])
	}
}

// TestMapClickRejectsBadCoordinates verifies out-of-range clicks are a 400.
func TestMapClickRejectsBadCoordinates(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/v1/map/click", `{"lat": 123, "lng": 0}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestSubmitWorkout verifies the submit flow: 201, derived pace in the
// response, and the record visible in the list.
func TestSubmitWorkout(t *testing.T) {
	s := newTestServer(t)
	clickMap(t, s)

	rec := do(t, s, http.MethodPost, "/api/v1/workouts",
		`{"type": "running", "distance": "5", "duration": "25", "cadence": "180"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var created workoutView
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Pace == nil || *created.Pace != 5.0 {
		t.Errorf("pace = %v, want 5.0", created.Pace)
	}
	if !strings.Contains(created.Description, "Running") {
		t.Errorf("description = %q, want it to contain Running", created.Description)
	}

	list := do(t, s, http.MethodGet, "/api/v1/workouts", "")
	var views []workoutView
	if err := json.NewDecoder(list.Body).Decode(&views); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(views) != 1 || views[0].ID != created.ID {
		t.Errorf("list = %+v, want the created workout", views)
	}
}

// TestSubmitWorkoutValidation verifies rejected input is a 422 carrying the
// user-facing alert.
func TestSubmitWorkoutValidation(t *testing.T) {
	s := newTestServer(t)
	clickMap(t, s)

	rec := do(t, s, http.MethodPost, "/api/v1/workouts",
		`{"type": "running", "distance": "0", "duration": "25", "cadence": "180"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["alert"] != "Inputs have to be positive numbers!" {
		t.Errorf("alert = %q", resp["alert"])
	}

	if list := do(t, s, http.MethodGet, "/api/v1/workouts", ""); strings.TrimSpace(list.Body.String()) != "[]" {
		t.Errorf("list after rejection = %s, want []", list.Body)
	}
}

// TestSubmitWithoutClick verifies a submission with no pending location is
// a 409.
func TestSubmitWithoutClick(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/v1/workouts",
		`{"type": "running", "distance": "5", "duration": "25", "cadence": "180"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

// TestFocusWorkout verifies focusing an existing workout and the 404 no-op
// for an unknown ID.
func TestFocusWorkout(t *testing.T) {
	s := newTestServer(t)
	clickMap(t, s)
	rec := do(t, s, http.MethodPost, "/api/v1/workouts",
		`{"type": "cycling", "distance": "27", "duration": "95", "elevation": "523"}`)
	var created workoutView
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	hit := do(t, s, http.MethodPost, fmt.Sprintf("/api/v1/workouts/%d/focus", created.ID), "")
	if hit.Code != http.StatusOK {
		t.Errorf("focus status = %d, want 200", hit.Code)
	}

	miss := do(t, s, http.MethodPost, "/api/v1/workouts/42/focus", "")
	if miss.Code != http.StatusNotFound {
		t.Errorf("miss status = %d, want 404", miss.Code)
	}

	bad := do(t, s, http.MethodPost, "/api/v1/workouts/abc/focus", "")
	if bad.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", bad.Code)
	}
}

// TestFormType verifies the type selector endpoint.
func TestFormType(t *testing.T) {
	s := newTestServer(t)

	if rec := do(t, s, http.MethodPost, "/api/v1/form/type", `{"type": "cycling"}`); rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/form/type", `{"type": "rowing"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestMapState verifies the snapshot endpoint exposes the view and form
// state the frontend renders from.
func TestMapState(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/api/v1/map", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Map  app.MapSnapshot `json:"map"`
		Form struct {
			State string `json:"state"`
		} `json:"form"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Map.Ready {
		t.Error("map not ready")
	}
	if resp.Form.State != string(app.FormIdle) {
		t.Errorf("form state = %q, want idle", resp.Form.State)
	}
}

// TestReset verifies the reset entry point empties the workout list.
func TestReset(t *testing.T) {
	s := newTestServer(t)
	clickMap(t, s)
	do(t, s, http.MethodPost, "/api/v1/workouts",
		`{"type": "running", "distance": "5", "duration": "25", "cadence": "180"}`)

	if rec := do(t, s, http.MethodPost, "/api/v1/reset", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("reset status = %d, want 204", rec.Code)
	}
	if list := do(t, s, http.MethodGet, "/api/v1/workouts", ""); strings.TrimSpace(list.Body.String()) != "[]" {
		t.Errorf("list after reset = %s, want []", list.Body)
	}
}
