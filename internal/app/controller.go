// Package app owns the application state: the session store, the form
// state machine, and the orchestration of user events between the map
// service, the workout factory, and the persistence layer.
package app

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/meltforce/pacemap/internal/geo"
	"github.com/meltforce/pacemap/internal/session"
	"github.com/meltforce/pacemap/internal/storage"
	"github.com/meltforce/pacemap/internal/workout"
)

// FormState is the interaction state of the entry form.
type FormState string

const (
	// FormIdle means no form is shown and no map click is pending.
	FormIdle FormState = "idle"
	// FormOpen means the form is shown with a pending click location.
	FormOpen FormState = "form_open"
)

// ErrNoPendingLocation is returned when a form submission arrives without a
// preceding map click.
var ErrNoPendingLocation = errors.New("no map location pending; click the map first")

// alertInvalidInput is the user-facing message for rejected form input.
const alertInvalidInput = "Inputs have to be positive numbers!"

// FormFields carries the raw form values as entered. The controller, not
// the form, converts them to numbers.
type FormFields struct {
	Type      string `json:"type"`
	Distance  string `json:"distance"`
	Duration  string `json:"duration"`
	Cadence   string `json:"cadence"`
	Elevation string `json:"elevation"`
}

// Alerter surfaces validation alerts to the user.
type Alerter interface {
	Alert(msg string)
}

type logAlerter struct {
	log *slog.Logger
}

func (a logAlerter) Alert(msg string) {
	a.log.Warn("alert", "message", msg)
}

// Options are the fixed map defaults from configuration.
type Options struct {
	DefaultCenter   geo.Coordinates
	DefaultZoom     int
	TileURL         string
	TileAttribution string
	LocateTimeout   time.Duration
}

// Controller orchestrates user events. Events are processed one at a time
// under a single mutex, so no event overlaps another.
type Controller struct {
	store   *session.Store
	archive *storage.Archive
	mapSvc  MapService
	locator Locator
	alerter Alerter
	log     *slog.Logger
	now     func() time.Time
	opts    Options

	mu         sync.Mutex
	state      FormState
	pending    geo.Coordinates
	activeKind workout.Kind
}

// NewController wires the application together. locator and alerter may be
// nil; they default to the unavailable locator and a logging alerter.
func NewController(store *session.Store, archive *storage.Archive, mapSvc MapService, locator Locator, opts Options, log *slog.Logger) *Controller {
	if locator == nil {
		locator = UnavailableLocator{}
	}
	if opts.DefaultZoom == 0 {
		opts.DefaultZoom = 13
	}
	if opts.LocateTimeout == 0 {
		opts.LocateTimeout = 5 * time.Second
	}
	return &Controller{
		store:      store,
		archive:    archive,
		mapSvc:     mapSvc,
		locator:    locator,
		alerter:    logAlerter{log: log},
		log:        log,
		now:        time.Now,
		opts:       opts,
		state:      FormIdle,
		activeKind: workout.KindRunning,
	}
}

// SetAlerter replaces the default logging alerter.
func (c *Controller) SetAlerter(a Alerter) {
	c.alerter = a
}

// Start initializes the map view and hydrates the session store from the
// archive, replaying one marker per persisted record in original order.
// Hydration does not write back to the archive.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	center := c.locate(ctx)
	c.mapSvc.CreateView(center, c.opts.DefaultZoom)
	c.mapSvc.AddTileLayer(c.opts.TileURL, c.opts.TileAttribution)

	records := c.archive.Load(ctx)
	c.store.ReplaceAll(records)
	for _, w := range records {
		c.renderMarker(w)
	}
	c.log.Info("session hydrated", "workouts", len(records))
}

// locate resolves the current position within the configured timeout,
// falling back to the default center on error or timeout.
func (c *Controller) locate(ctx context.Context) geo.Coordinates {
	ctx, cancel := context.WithTimeout(ctx, c.opts.LocateTimeout)
	defer cancel()

	pos, err := c.locator.Locate(ctx)
	if err != nil {
		c.log.Warn("could not get current position, using default center", "error", err)
		return c.opts.DefaultCenter
	}
	return pos
}

// MapClicked stores the click location and opens the form. Clicking again
// while the form is open just moves the pending location.
func (c *Controller) MapClicked(at geo.Coordinates) error {
	if err := at.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = at
	c.state = FormOpen
	return nil
}

// FormTypeChanged toggles which kind-specific field is active. UI state
// only; no domain effect.
func (c *Controller) FormTypeChanged(rawType string) error {
	kind, err := workout.ParseKind(rawType)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeKind = kind
	return nil
}

// FormSubmitted converts the raw field values to numbers, builds the
// workout, and on success appends it to the session, persists the whole
// collection, and places a marker. On validation failure the user is
// alerted, the form stays open, and the session store is untouched.
func (c *Controller) FormSubmitted(ctx context.Context, fields FormFields) (*workout.Workout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != FormOpen {
		return nil, ErrNoPendingLocation
	}

	kind, err := workout.ParseKind(fields.Type)
	if err != nil {
		return nil, &workout.ValidationError{Field: "type", Reason: err.Error()}
	}

	distance := parseNumber(fields.Distance)
	duration := parseNumber(fields.Duration)
	extra := parseNumber(fields.Cadence)
	if kind == workout.KindCycling {
		extra = parseNumber(fields.Elevation)
	}

	w, err := workout.New(kind, c.pending, distance, duration, extra, c.now())
	if err != nil {
		var verr *workout.ValidationError
		if errors.As(err, &verr) {
			c.alerter.Alert(alertInvalidInput)
		}
		return nil, err
	}

	c.store.Append(w)
	if err := c.archive.Save(ctx, c.store.All()); err != nil {
		c.log.Warn("persisting workouts failed", "error", err)
	}
	c.renderMarker(w)

	c.activeKind = kind
	c.pending = geo.Coordinates{}
	c.state = FormIdle
	c.log.Info("workout recorded", "id", w.ID, "type", w.Kind, "description", w.Description)
	return w, nil
}

// WorkoutSelected re-centers the map on the record with the given ID.
// A miss is a no-op: the map is not touched and nothing fails.
func (c *Controller) WorkoutSelected(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.store.FindByID(id)
	if !ok {
		c.log.Debug("list click for unknown workout", "id", id)
		return false
	}
	c.mapSvc.SetView(w.Coords, c.opts.DefaultZoom)
	return true
}

// Workouts returns the session collection in creation order.
func (c *Controller) Workouts() []*workout.Workout {
	return c.store.All()
}

// State reports the form state and the active type selector.
func (c *Controller) State() (FormState, workout.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.activeKind
}

// Reset purges persisted state and reinitializes the application to its
// empty initial state: empty store, default map view, idle form.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.archive.Clear(ctx); err != nil {
		return err
	}
	c.store.ReplaceAll(nil)
	c.mapSvc.CreateView(c.opts.DefaultCenter, c.opts.DefaultZoom)
	c.mapSvc.AddTileLayer(c.opts.TileURL, c.opts.TileAttribution)
	c.pending = geo.Coordinates{}
	c.state = FormIdle
	c.activeKind = workout.KindRunning
	c.log.Info("application reset")
	return nil
}

func (c *Controller) renderMarker(w *workout.Workout) {
	icon := "🏃"
	if w.Kind == workout.KindCycling {
		icon = "🚴"
	}
	c.mapSvc.AddMarker(w.Coords, Popup{Text: icon + " " + w.Description, Kind: w.Kind})
}

// parseNumber mirrors form-field numeric coercion: an empty field reads as
// zero, anything unparsable becomes NaN. Both end up rejected by the
// factory except for elevation, where zero is a legal value.
func parseNumber(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
