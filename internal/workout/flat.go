package workout

import (
	"fmt"
	"time"

	"github.com/meltforce/pacemap/internal/geo"
)

// Flat is the persisted form of a workout: a plain field set with the
// variant folded into the type tag. Cadence is present iff the record is a
// run, Elevation iff it is a ride. Derived metrics are not persisted; they
// are recomputed when the variant is restored.
type Flat struct {
	ID          int64           `json:"id"`
	Coords      geo.Coordinates `json:"coords"`
	Distance    float64         `json:"distance"`
	Duration    float64         `json:"duration"`
	Type        Kind            `json:"type"`
	Cadence     *float64        `json:"cadence,omitempty"`
	Elevation   *float64        `json:"elevation,omitempty"`
	Description string          `json:"description"`
}

// Flatten converts a workout to its persisted form.
func (w *Workout) Flatten() Flat {
	f := Flat{
		ID:          w.ID,
		Coords:      w.Coords,
		Distance:    w.DistanceKm,
		Duration:    w.DurationMin,
		Type:        w.Kind,
		Description: w.Description,
	}
	switch w.Kind {
	case KindRunning:
		cadence := w.CadenceSPM
		f.Cadence = &cadence
	case KindCycling:
		elevation := w.ElevationGainM
		f.Elevation = &elevation
	}
	return f
}

// Restore re-tags a flattened record as its proper variant. The creation
// instant is recovered from the ID's millisecond epoch, the derived metric
// is recomputed, and the persisted description is reused as-is so the date
// baked in at creation survives rehydration.
func Restore(f Flat) (*Workout, error) {
	var extra float64
	switch f.Type {
	case KindRunning:
		if f.Cadence == nil {
			return nil, fmt.Errorf("running record %d has no cadence", f.ID)
		}
		extra = *f.Cadence
	case KindCycling:
		if f.Elevation == nil {
			return nil, fmt.Errorf("cycling record %d has no elevation", f.ID)
		}
		extra = *f.Elevation
	default:
		return nil, fmt.Errorf("record %d has unknown type %q", f.ID, f.Type)
	}

	createdAt := time.UnixMilli(f.ID)
	w, err := New(f.Type, f.Coords, f.Distance, f.Duration, extra, createdAt)
	if err != nil {
		return nil, fmt.Errorf("restoring record %d: %w", f.ID, err)
	}
	if f.Description != "" {
		w.Description = f.Description
	}
	return w, nil
}
