package app

import (
	"context"
	"testing"
	"time"

	"github.com/meltforce/pacemap/internal/geo"
	"github.com/meltforce/pacemap/internal/workout"
)

// TestCreateViewResetsMarkers verifies re-creating the view drops placed
// markers, which is what makes reset return the map to its initial state.
func TestCreateViewResetsMarkers(t *testing.T) {
	v := NewViewState()
	v.CreateView(testCenter, 13)
	v.AddMarker(testClick, Popup{Text: "🏃 Running on April 14", Kind: workout.KindRunning})

	if got := v.Snapshot(); len(got.Markers) != 1 {
		t.Fatalf("markers = %d, want 1", len(got.Markers))
	}

	v.CreateView(testCenter, 13)
	if got := v.Snapshot(); len(got.Markers) != 0 {
		t.Errorf("markers after CreateView = %d, want 0", len(got.Markers))
	}
}

// TestSnapshotIsACopy verifies mutating a snapshot does not leak back into
// the view state.
func TestSnapshotIsACopy(t *testing.T) {
	v := NewViewState()
	v.CreateView(testCenter, 13)
	v.AddMarker(testClick, Popup{Text: "x", Kind: workout.KindRunning})

	snap := v.Snapshot()
	snap.Markers[0].Popup.Text = "mutated"

	if v.Snapshot().Markers[0].Popup.Text != "x" {
		t.Error("snapshot mutation leaked into view state")
	}
}

// TestFixedLocator verifies the configured home position is reported and
// that an invalid one degrades to the unavailable error.
func TestFixedLocator(t *testing.T) {
	ctx := context.Background()

	pos, err := FixedLocator{Coords: testCenter}.Locate(ctx)
	if err != nil || pos != testCenter {
		t.Errorf("Locate = %v, %v", pos, err)
	}

	if _, err := (FixedLocator{Coords: geo.Coordinates{Lat: 200}}).Locate(ctx); err == nil {
		t.Error("expected error for invalid home position")
	}

	expired, cancel := context.WithTimeout(ctx, time.Nanosecond)
	defer cancel()
	<-expired.Done()
	if _, err := (FixedLocator{Coords: testCenter}).Locate(expired); err == nil {
		t.Error("expected error for expired context")
	}
}
