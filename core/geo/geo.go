// Package geo contains pure geographic computation helpers.
package geo

import (
	"math"

	"github.com/wassel-delivery/dispatch/core/model"
)

const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance in meters between two
// points, using the Haversine formula.
func DistanceMeters(a, b model.Coordinate) float64 {
	dLat := radians(b.Latitude - a.Latitude)
	dLng := radians(b.Longitude - a.Longitude)

	rLat1 := radians(a.Latitude)
	rLat2 := radians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
