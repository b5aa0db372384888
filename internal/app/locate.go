package app

import (
	"context"
	"errors"

	"github.com/meltforce/pacemap/internal/geo"
)

// ErrNoLocation means the locator cannot produce a position. The caller
// falls back to the configured default center.
var ErrNoLocation = errors.New("current location unavailable")

// Locator resolves the user's current position. This is the one
// asynchronous boundary of the application: implementations must honor the
// context deadline, and any failure or timeout degrades to the default map
// center rather than surfacing to the user.
type Locator interface {
	Locate(ctx context.Context) (geo.Coordinates, error)
}

// FixedLocator reports a configured home position.
type FixedLocator struct {
	Coords geo.Coordinates
}

func (l FixedLocator) Locate(ctx context.Context) (geo.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return geo.Coordinates{}, err
	}
	if err := l.Coords.Validate(); err != nil {
		return geo.Coordinates{}, ErrNoLocation
	}
	return l.Coords, nil
}

// UnavailableLocator always fails, forcing the default-center fallback.
type UnavailableLocator struct{}

func (UnavailableLocator) Locate(context.Context) (geo.Coordinates, error) {
	return geo.Coordinates{}, ErrNoLocation
}
