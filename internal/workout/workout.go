package workout

import (
	"fmt"
	"math"
	"time"

	"github.com/meltforce/pacemap/internal/geo"
)

// Kind discriminates the two workout variants. It determines which extra
// attribute (cadence vs elevation gain) and which derived metric (pace vs
// speed) a record carries.
type Kind string

const (
	KindRunning Kind = "running"
	KindCycling Kind = "cycling"
)

// ParseKind validates a raw type-selector value.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindRunning, KindCycling:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown workout kind %q", s)
}

// Title returns the capitalized kind name used in descriptions and popups.
func (k Kind) Title() string {
	switch k {
	case KindRunning:
		return "Running"
	case KindCycling:
		return "Cycling"
	}
	return string(k)
}

// ValidationError reports a rejected field on workout construction.
// No partial record exists after a ValidationError.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Workout is one completed exercise session. All fields are set at
// construction and never mutated afterwards; the derived metric and the
// description are computed exactly once by New.
//
// ID is the millisecond Unix epoch of creation and the sole lookup key.
// Records created in the same session have monotonically increasing IDs;
// two constructions within the same millisecond would collide, which is
// accepted for a single-user widget.
type Workout struct {
	ID          int64
	CreatedAt   time.Time
	Coords      geo.Coordinates
	DistanceKm  float64
	DurationMin float64
	Kind        Kind

	// CadenceSPM is set iff Kind is running, ElevationGainM iff cycling.
	CadenceSPM     float64
	ElevationGainM float64

	// PaceMinPerKm is derived for running, SpeedKmPerH for cycling,
	// both rounded to one decimal.
	PaceMinPerKm float64
	SpeedKmPerH  float64

	Description string
}

// New builds a validated workout variant. extra is the kind-specific
// attribute: cadence (spm) for running, elevation gain (m) for cycling.
// now supplies the creation instant; it fixes the ID, the creation time,
// and the date baked into the description.
func New(kind Kind, coords geo.Coordinates, distanceKm, durationMin, extra float64, now time.Time) (*Workout, error) {
	if kind != KindRunning && kind != KindCycling {
		return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown kind %q", kind)}
	}
	if err := coords.Validate(); err != nil {
		return nil, &ValidationError{Field: "coords", Reason: err.Error()}
	}
	if !isPositive(distanceKm) {
		return nil, &ValidationError{Field: "distance", Reason: "must be a positive finite number"}
	}
	if !isPositive(durationMin) {
		return nil, &ValidationError{Field: "duration", Reason: "must be a positive finite number"}
	}

	w := &Workout{
		ID:          now.UnixMilli(),
		CreatedAt:   now,
		Coords:      coords,
		DistanceKm:  distanceKm,
		DurationMin: durationMin,
		Kind:        kind,
	}

	switch kind {
	case KindRunning:
		if !isPositive(extra) {
			return nil, &ValidationError{Field: "cadence", Reason: "must be a positive finite number"}
		}
		w.CadenceSPM = extra
		w.PaceMinPerKm = round1(durationMin / distanceKm)
	case KindCycling:
		if !isFinite(extra) {
			return nil, &ValidationError{Field: "elevation", Reason: "must be a finite number"}
		}
		w.ElevationGainM = extra
		w.SpeedKmPerH = round1(distanceKm / (durationMin / 60))
	}

	w.Description = describe(kind, now)
	return w, nil
}

// describe renders the stable human-readable label, e.g. "Running on April 14".
func describe(kind Kind, at time.Time) string {
	return fmt.Sprintf("%s on %s %d", kind.Title(), at.Month().String(), at.Day())
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isPositive(v float64) bool {
	return isFinite(v) && v > 0
}
