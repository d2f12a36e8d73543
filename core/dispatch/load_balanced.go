package dispatch

import (
	"github.com/wassel-delivery/dispatch/core/geo"
	"github.com/wassel-delivery/dispatch/core/model"
	"github.com/wassel-delivery/dispatch/core/scoring"
)

// LoadBalancedAlgorithm picks the least-utilized candidate, excluding drivers
// at or over capacity.
type LoadBalancedAlgorithm struct{}

func (a *LoadBalancedAlgorithm) Name() string { return AlgorithmLoadBalanced }

func (a *LoadBalancedAlgorithm) Select(order model.Order, candidates []model.Driver, _ scoring.Context) *Selection {
	var (
		best     model.Driver
		bestUtil float64
		found    bool
	)
	for _, d := range candidates {
		util, atCapacity := d.Utilization()
		if atCapacity {
			continue
		}
		if !found || util < bestUtil {
			best, bestUtil, found = d, util, true
		}
	}
	if !found {
		return nil
	}
	return &Selection{
		Driver:         best,
		Score:          bestUtil,
		DistanceMeters: geo.DistanceMeters(best.CurrentLocation, order.MerchantLocation),
		Algorithm:      a.Name(),
	}
}
