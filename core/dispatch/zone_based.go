package dispatch

import (
	"github.com/wassel-delivery/dispatch/core/model"
	"github.com/wassel-delivery/dispatch/core/scoring"
)

// ZoneBasedAlgorithm prefers same-zone candidates and delegates the final
// pick to optimal-score within that subset. When nobody shares the order's
// zone it falls back to the full candidate set.
type ZoneBasedAlgorithm struct {
	Optimal *OptimalScoreAlgorithm
}

func (a *ZoneBasedAlgorithm) Name() string { return AlgorithmZoneBased }

func (a *ZoneBasedAlgorithm) Select(order model.Order, candidates []model.Driver, sctx scoring.Context) *Selection {
	if len(candidates) == 0 {
		return nil
	}
	target := candidates
	if sctx.OrderZone != "" && sctx.DriverZone != nil {
		var sameZone []model.Driver
		for _, d := range candidates {
			if sctx.DriverZone(d) == sctx.OrderZone {
				sameZone = append(sameZone, d)
			}
		}
		if len(sameZone) > 0 {
			target = sameZone
		}
	}
	sel := a.Optimal.Select(order, target, sctx)
	if sel == nil {
		return nil
	}
	sel.Algorithm = a.Name()
	return sel
}
