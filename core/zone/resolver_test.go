package zone

import (
	"testing"

	"github.com/wassel-delivery/dispatch/core/model"
)

func testZones() []model.Zone {
	return []model.Zone{
		{ID: "central", Name: "Central", Center: model.Coordinate{Latitude: 24.7136, Longitude: 46.6753}, RadiusMeters: 5000, Priority: 1},
		{ID: "north", Name: "North", Center: model.Coordinate{Latitude: 24.7836, Longitude: 46.6753}, RadiusMeters: 7000, Priority: 2},
		{ID: "east", Name: "East", Center: model.Coordinate{Latitude: 24.7136, Longitude: 46.7753}, RadiusMeters: 6000, Priority: 2},
	}
}

func TestResolve_AtCenter(t *testing.T) {
	r := NewResolver(testZones())
	got := r.Resolve(model.Coordinate{Latitude: 24.7136, Longitude: 46.6753})
	if got != "central" {
		t.Fatalf("expected central got %q", got)
	}
}

func TestResolve_OutsideAllZones(t *testing.T) {
	r := NewResolver(testZones())
	got := r.Resolve(model.Coordinate{Latitude: 26.5, Longitude: 50.0})
	if got != "" {
		t.Fatalf("expected unzoned got %q", got)
	}
}

func TestResolve_PicksClosestQualifying(t *testing.T) {
	r := NewResolver(testZones())
	// Between the two centers, within north's radius only.
	got := r.Resolve(model.Coordinate{Latitude: 24.76, Longitude: 46.6753})
	if got != "north" {
		t.Fatalf("expected north got %q", got)
	}
}

func TestDriverZone_ExplicitWins(t *testing.T) {
	r := NewResolver(testZones())
	d := model.Driver{Zone: "east", CurrentLocation: model.Coordinate{Latitude: 24.7136, Longitude: 46.6753}}
	if got := r.DriverZone(d); got != "east" {
		t.Fatalf("expected east got %q", got)
	}
	d.Zone = ""
	if got := r.DriverZone(d); got != "central" {
		t.Fatalf("expected central got %q", got)
	}
}

func TestAdjacent(t *testing.T) {
	r := NewResolver(testZones())
	if !r.Adjacent("central", "north") {
		t.Fatalf("central and north centers are under 10km apart")
	}
	if r.Adjacent("central", "missing") {
		t.Fatalf("unknown zone must not be adjacent")
	}
}
