package geo

import (
	"math"
	"testing"

	"github.com/wassel-delivery/dispatch/core/model"
)

func TestDistanceMeters_Zero(t *testing.T) {
	p := model.Coordinate{Latitude: 24.7136, Longitude: 46.6753}
	if d := DistanceMeters(p, p); d != 0 {
		t.Fatalf("expected zero distance got %v", d)
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	a := model.Coordinate{Latitude: 24.7136, Longitude: 46.6753}
	b := model.Coordinate{Latitude: 24.7836, Longitude: 46.7753}
	ab := DistanceMeters(a, b)
	ba := DistanceMeters(b, a)
	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("distance not symmetric: %v vs %v", ab, ba)
	}
	if ab <= 0 {
		t.Fatalf("expected positive distance got %v", ab)
	}
}

func TestDistanceMeters_KnownValue(t *testing.T) {
	// One degree of latitude is roughly 111.2 km.
	a := model.Coordinate{Latitude: 24.0, Longitude: 46.0}
	b := model.Coordinate{Latitude: 25.0, Longitude: 46.0}
	d := DistanceMeters(a, b)
	if d < 110000 || d > 112500 {
		t.Fatalf("unexpected distance for one degree of latitude: %v", d)
	}
}
