package dispatch

import (
	"github.com/wassel-delivery/dispatch/core/model"
	"github.com/wassel-delivery/dispatch/core/scoring"
)

// Algorithm names accepted by the strategy selector.
const (
	AlgorithmOptimalScore = "optimal_score"
	AlgorithmNearest      = "nearest_driver"
	AlgorithmLoadBalanced = "load_balanced"
	AlgorithmZoneBased    = "zone_based"
	AlgorithmPredictive   = "predictive"
)

// Selection is the outcome of one algorithm run.
type Selection struct {
	Driver         model.Driver
	Score          float64
	DistanceMeters float64
	Algorithm      string
	Ranking        []model.RankedDriver // top 3 at most, optimal-score only
}

// Algorithm picks a driver for an order from a candidate set. A nil Selection
// means the candidate set was empty or nobody qualified.
type Algorithm interface {
	Name() string
	Select(order model.Order, candidates []model.Driver, sctx scoring.Context) *Selection
}

// Strategies holds the constructed algorithm family and dispatches by name.
type Strategies struct {
	byName   map[string]Algorithm
	fallback Algorithm
}

// NewStrategies builds the full algorithm family around the given scoring
// engine. history and cond feed the predictive strategy and may be nil.
func NewStrategies(engine scoring.Engine, history SuccessHistory, cond ConditionsSource) *Strategies {
	optimal := &OptimalScoreAlgorithm{Engine: engine}
	s := &Strategies{byName: make(map[string]Algorithm), fallback: optimal}
	for _, a := range []Algorithm{
		optimal,
		&NearestDriverAlgorithm{},
		&LoadBalancedAlgorithm{},
		&ZoneBasedAlgorithm{Optimal: optimal},
		&PredictiveAlgorithm{History: history, Conditions: cond},
	} {
		s.byName[a.Name()] = a
	}
	return s
}

// ForName returns the algorithm registered under name, falling back to
// optimal-score for unknown names.
func (s *Strategies) ForName(name string) Algorithm {
	if a, ok := s.byName[name]; ok {
		return a
	}
	return s.fallback
}
