package routing

import (
	"context"
	"testing"

	"github.com/shriram-s7/fleetdispatch/core/model"
)

func TestFallbackShortLeg(t *testing.T) {
	r := Fallback(model.LatLng{Lat: 10.79, Lng: 78.70}, model.LatLng{Lat: 10.80, Lng: 78.71})
	if r.Success {
		t.Fatalf("fallback route must report success=false")
	}
	if len(r.Waypoints) != 21 {
		t.Fatalf("short legs use 20 steps, got %d waypoints", len(r.Waypoints))
	}
	first, last := r.Waypoints[0], r.Waypoints[len(r.Waypoints)-1]
	if first.Lat != 10.79 || last.Lat != 10.80 {
		t.Fatalf("endpoints wrong: %+v .. %+v", first, last)
	}
}

func TestFallbackLongLegScalesWaypoints(t *testing.T) {
	r := Fallback(model.LatLng{Lat: 10.79, Lng: 78.70}, model.LatLng{Lat: 13.08, Lng: 80.27})
	if len(r.Waypoints) <= 21 {
		t.Fatalf("long legs should get more waypoints, got %d", len(r.Waypoints))
	}
	if r.DurationSec <= 0 {
		t.Fatalf("duration must be derived from distance")
	}
}

func TestStraightProvider(t *testing.T) {
	r, err := Straight.Route(context.Background(), model.LatLng{Lat: 10, Lng: 78}, model.LatLng{Lat: 11, Lng: 79})
	if err != nil {
		t.Fatal(err)
	}
	if r.DistanceKm <= 0 {
		t.Fatalf("expected positive distance")
	}
}
