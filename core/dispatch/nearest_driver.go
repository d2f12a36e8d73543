package dispatch

import (
	"github.com/wassel-delivery/dispatch/core/geo"
	"github.com/wassel-delivery/dispatch/core/model"
	"github.com/wassel-delivery/dispatch/core/scoring"
)

// NearestDriverAlgorithm picks the candidate closest to the merchant.
type NearestDriverAlgorithm struct{}

func (a *NearestDriverAlgorithm) Name() string { return AlgorithmNearest }

func (a *NearestDriverAlgorithm) Select(order model.Order, candidates []model.Driver, _ scoring.Context) *Selection {
	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0]
	bestDist := geo.DistanceMeters(best.CurrentLocation, order.MerchantLocation)
	for _, d := range candidates[1:] {
		dist := geo.DistanceMeters(d.CurrentLocation, order.MerchantLocation)
		if dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return &Selection{
		Driver:         best,
		DistanceMeters: bestDist,
		Algorithm:      a.Name(),
	}
}
