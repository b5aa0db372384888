package geo

import (
	"encoding/json"
	"fmt"
	"math"
)

// Coordinates is a WGS84 latitude/longitude pair.
//
// The persisted and wire form is the 2-element array [lat, lng], matching
// what map libraries expect for marker positions.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Validate checks that both components are finite and within range.
func (c Coordinates) Validate() error {
	if !isFinite(c.Lat) || !isFinite(c.Lng) {
		return fmt.Errorf("coordinates must be finite, got (%v, %v)", c.Lat, c.Lng)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Lng)
	}
	return nil
}

func (c Coordinates) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lng})
}

func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coordinates must be a [lat, lng] pair: %w", err)
	}
	c.Lat, c.Lng = pair[0], pair[1]
	return nil
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%.5f, %.5f)", c.Lat, c.Lng)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
