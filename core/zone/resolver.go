// Package zone maps geographic points to configured delivery zones.
package zone

import (
	"github.com/wassel-delivery/dispatch/core/geo"
	"github.com/wassel-delivery/dispatch/core/model"
)

// AdjacencyMeters is the maximum distance between two zone centers for the
// zones to count as adjacent during candidate filtering.
const AdjacencyMeters = 10000.0

// Resolver resolves points against a fixed, ordered zone list. The zone order
// is the configured order and acts as the tie-break when a point qualifies
// for several zones at the same distance.
type Resolver struct {
	zones []model.Zone
	byID  map[string]model.Zone
}

// NewResolver creates a Resolver over the given zones. The slice is copied so
// later mutations by the caller have no effect.
func NewResolver(zones []model.Zone) *Resolver {
	cp := append([]model.Zone(nil), zones...)
	byID := make(map[string]model.Zone, len(cp))
	for _, z := range cp {
		byID[z.ID] = z
	}
	return &Resolver{zones: cp, byID: byID}
}

// Zones returns the configured zones in order.
func (r *Resolver) Zones() []model.Zone {
	return append([]model.Zone(nil), r.zones...)
}

// Resolve returns the id of the zone whose center is within its radius of the
// point and closest among qualifying zones. An empty string means the point
// is unzoned; callers must then skip zone filtering and the zone bonus.
func (r *Resolver) Resolve(p model.Coordinate) string {
	best := ""
	bestDist := 0.0
	for _, z := range r.zones {
		d := geo.DistanceMeters(p, z.Center)
		if d > z.RadiusMeters {
			continue
		}
		if best == "" || d < bestDist {
			best = z.ID
			bestDist = d
		}
	}
	return best
}

// DriverZone returns the driver's explicit zone when set, otherwise the zone
// resolved from the driver's current location.
func (r *Resolver) DriverZone(d model.Driver) string {
	if d.Zone != "" {
		return d.Zone
	}
	return r.Resolve(d.CurrentLocation)
}

// Adjacent reports whether two zone centers lie within AdjacencyMeters of
// each other. Unknown zone ids are never adjacent.
func (r *Resolver) Adjacent(a, b string) bool {
	za, ok := r.byID[a]
	if !ok {
		return false
	}
	zb, ok := r.byID[b]
	if !ok {
		return false
	}
	return geo.DistanceMeters(za.Center, zb.Center) <= AdjacencyMeters
}
