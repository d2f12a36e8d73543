package model

import "errors"

var (
	errEmptyOrderID       = errors.New("order id is empty")
	errNoMerchantLocation = errors.New("order has no merchant location")
)

// Zone is a named geographic catchment area used to localise driver search.
// Zones are statically configured and never mutated at runtime.
type Zone struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Center       Coordinate `json:"center"`
	RadiusMeters float64    `json:"radius_meters"`
	Priority     int        `json:"priority"`
}

// Validate checks that the zone definition is sound.
func (z Zone) Validate() error {
	if z.ID == "" {
		return errors.New("zone id is empty")
	}
	if z.RadiusMeters <= 0 {
		return errors.New("zone radius must be positive")
	}
	return nil
}
