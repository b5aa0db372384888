package app

import (
	"sync"

	"github.com/meltforce/pacemap/internal/geo"
	"github.com/meltforce/pacemap/internal/workout"
)

// Popup is the label attached to a map marker.
type Popup struct {
	Text string       `json:"text"`
	Kind workout.Kind `json:"kind"`
}

// Marker is a placed map marker with its popup.
type Marker struct {
	Coords geo.Coordinates `json:"coords"`
	Popup  Popup           `json:"popup"`
}

// MapService is the interactive map the controller draws on. The real
// rendering happens in the browser; the implementation here only has to
// track what the controller asked for.
type MapService interface {
	CreateView(center geo.Coordinates, zoom int)
	AddTileLayer(url, attribution string)
	AddMarker(at geo.Coordinates, popup Popup)
	SetView(center geo.Coordinates, zoom int)
}

// TileLayer is the configured base layer of the map view.
type TileLayer struct {
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

// MapSnapshot is a point-in-time copy of the map state, served to the
// frontend for rendering.
type MapSnapshot struct {
	Ready   bool            `json:"ready"`
	Center  geo.Coordinates `json:"center"`
	Zoom    int             `json:"zoom"`
	Tile    TileLayer       `json:"tile"`
	Markers []Marker        `json:"markers"`
}

// ViewState is the in-memory MapService implementation. Creating a view
// resets the state wholesale, including any placed markers.
type ViewState struct {
	mu      sync.RWMutex
	ready   bool
	center  geo.Coordinates
	zoom    int
	tile    TileLayer
	markers []Marker
}

// NewViewState returns an empty, not-yet-ready map state.
func NewViewState() *ViewState {
	return &ViewState{}
}

func (v *ViewState) CreateView(center geo.Coordinates, zoom int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ready = true
	v.center = center
	v.zoom = zoom
	v.markers = nil
}

func (v *ViewState) AddTileLayer(url, attribution string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tile = TileLayer{URL: url, Attribution: attribution}
}

func (v *ViewState) AddMarker(at geo.Coordinates, popup Popup) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.markers = append(v.markers, Marker{Coords: at, Popup: popup})
}

func (v *ViewState) SetView(center geo.Coordinates, zoom int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.center = center
	v.zoom = zoom
}

// Snapshot copies the current state.
func (v *ViewState) Snapshot() MapSnapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	markers := make([]Marker, len(v.markers))
	copy(markers, v.markers)
	return MapSnapshot{
		Ready:   v.ready,
		Center:  v.center,
		Zoom:    v.zoom,
		Tile:    v.tile,
		Markers: markers,
	}
}
