package routing

import (
	"context"

	"github.com/shriram-s7/fleetdispatch/core/geo"
	"github.com/shriram-s7/fleetdispatch/core/model"
)

// Route is a precomputed polyline for one leg. Success is false when the
// waypoints come from the straight-line fallback; callers treat both forms
// identically for movement purposes.
type Route struct {
	Waypoints   []model.LatLng `json:"waypoints"`
	DistanceKm  float64        `json:"distance_km"`
	DurationSec float64        `json:"duration_sec"`
	Success     bool           `json:"success"`
}

// Provider returns a road route between two coordinates. It is called exactly
// once per leg, at the moment a destination is chosen, never while a truck is
// already moving. Implementations must be bounded: on failure or timeout they
// return the straight-line fallback instead of an error.
type Provider interface {
	Route(ctx context.Context, from, to model.LatLng) (Route, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, from, to model.LatLng) (Route, error)

func (f ProviderFunc) Route(ctx context.Context, from, to model.LatLng) (Route, error) {
	return f(ctx, from, to)
}

// FallbackSpeedKmh is the cruise speed assumed when deriving a duration for
// fallback routes.
const FallbackSpeedKmh = 50

// Fallback builds a straight-line interpolation between two points. Longer
// legs get proportionally more waypoints for smoother movement.
func Fallback(from, to model.LatLng) Route {
	dist := geo.Haversine(from.Lat, from.Lng, to.Lat, to.Lng)
	steps := int(dist * 2)
	if steps < 20 {
		steps = 20
	}
	wps := make([]model.LatLng, 0, steps+1)
	for i := 0; i <= steps; i++ {
		lat, lng := geo.Lerp(from.Lat, from.Lng, to.Lat, to.Lng, float64(i)/float64(steps))
		wps = append(wps, model.LatLng{Lat: lat, Lng: lng})
	}
	return Route{
		Waypoints:   wps,
		DistanceKm:  dist,
		DurationSec: dist / FallbackSpeedKmh * 3600,
		Success:     false,
	}
}

// Straight is a Provider that always answers with the fallback route. Used in
// tests and as a last-resort configuration.
var Straight Provider = ProviderFunc(func(_ context.Context, from, to model.LatLng) (Route, error) {
	return Fallback(from, to), nil
})
