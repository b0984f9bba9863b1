// Package location keeps the last known device coordinate per user and answers distance
// questions. A missing coordinate is a normal state, never an error.
package location

import (
	"fmt"
	"math"

	"github.com/DhavalSuthar-24/huddle/internal/common"
)

const earthRadiusKm = 6371.0

type Coordinate struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", common.ErrValidation, c.Latitude)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", common.ErrValidation, c.Longitude)
	}
	return nil
}

// Distance is the great-circle distance between a and b in kilometres.
func Distance(a, b Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Provider supplies the last known coordinate of one device owner.
type Provider interface {
	LastKnownLocation() (Coordinate, bool)
	// RequestUpdate asks for a fresh fix. It returns immediately; the result shows up
	// in a later LastKnownLocation call, if at all.
	RequestUpdate()
}

// Fixed is a Provider for a coordinate the caller already has, e.g. from query parameters.
type Fixed Coordinate

func (f Fixed) LastKnownLocation() (Coordinate, bool) { return Coordinate(f), true }
func (Fixed) RequestUpdate()                          {}

// Unknown never has a location.
type Unknown struct{}

func (Unknown) LastKnownLocation() (Coordinate, bool) { return Coordinate{}, false }
func (Unknown) RequestUpdate()                        {}
