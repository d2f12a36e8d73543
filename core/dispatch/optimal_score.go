package dispatch

import (
	"sort"

	"github.com/wassel-delivery/dispatch/core/geo"
	"github.com/wassel-delivery/dispatch/core/model"
	"github.com/wassel-delivery/dispatch/core/scoring"
)

// OptimalScoreAlgorithm ranks candidates by the weighted multi-factor score
// and returns the best, keeping the top three for audit.
type OptimalScoreAlgorithm struct {
	Engine scoring.Engine
}

func (a *OptimalScoreAlgorithm) Name() string { return AlgorithmOptimalScore }

func (a *OptimalScoreAlgorithm) Select(order model.Order, candidates []model.Driver, sctx scoring.Context) *Selection {
	if len(candidates) == 0 {
		return nil
	}

	ranked := make([]model.RankedDriver, 0, len(candidates))
	for _, d := range candidates {
		total, bd := a.Engine.Score(d, order, sctx)
		ranked = append(ranked, model.RankedDriver{Driver: d, Score: total, Breakdown: bd})
	}
	// Stable: candidates with equal scores keep their original order.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	top := ranked
	if len(top) > 3 {
		top = top[:3]
	}
	best := ranked[0]
	return &Selection{
		Driver:         best.Driver,
		Score:          best.Score,
		DistanceMeters: geo.DistanceMeters(best.Driver.CurrentLocation, order.MerchantLocation),
		Algorithm:      a.Name(),
		Ranking:        append([]model.RankedDriver(nil), top...),
	}
}
