package geo

import (
	"math"
	"testing"
)

func TestHaversineKnownDistance(t *testing.T) {
	// Trichy to Chennai is roughly 300 km as the crow flies.
	d := Haversine(10.7905, 78.7047, 13.0827, 80.2707)
	if d < 280 || d > 320 {
		t.Fatalf("unexpected distance: %f", d)
	}
}

func TestHaversineZero(t *testing.T) {
	if d := Haversine(10, 78, 10, 78); d != 0 {
		t.Fatalf("expected zero distance, got %f", d)
	}
}

func TestPointToSegmentDegenerate(t *testing.T) {
	d, clat, clon := PointToSegment(11, 79, 10, 78, 10, 78)
	if clat != 10 || clon != 78 {
		t.Fatalf("closest point should be the segment itself")
	}
	if want := Haversine(11, 79, 10, 78); math.Abs(d-want) > 1e-9 {
		t.Fatalf("distance mismatch: %f vs %f", d, want)
	}
}

func TestPointToSegmentProjectsInside(t *testing.T) {
	// Point directly above the middle of a horizontal segment.
	d, clat, clon := PointToSegment(11, 79, 10, 78, 10, 80)
	if math.Abs(clat-10) > 1e-9 || math.Abs(clon-79) > 1e-9 {
		t.Fatalf("closest point (%f,%f) not at segment middle", clat, clon)
	}
	if d <= 0 {
		t.Fatalf("expected positive distance, got %f", d)
	}
}

func TestPointToSegmentClampsToEndpoint(t *testing.T) {
	_, clat, clon := PointToSegment(10, 77, 10, 78, 10, 80)
	if clat != 10 || clon != 78 {
		t.Fatalf("expected clamp to segment start, got (%f,%f)", clat, clon)
	}
}

func TestLerp(t *testing.T) {
	lat, lon := Lerp(10, 78, 12, 80, 0.5)
	if lat != 11 || lon != 79 {
		t.Fatalf("unexpected midpoint (%f,%f)", lat, lon)
	}
}
