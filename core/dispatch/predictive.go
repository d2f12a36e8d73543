package dispatch

import (
	"math"

	"github.com/wassel-delivery/dispatch/core/geo"
	"github.com/wassel-delivery/dispatch/core/model"
	"github.com/wassel-delivery/dispatch/core/scoring"
)

// SuccessHistory supplies per-zone historical success rates in [0,1]. The
// live metrics collector implements it.
type SuccessHistory interface {
	ZoneSuccessRates() map[string]float64
}

// ConditionsSource supplies the environment inputs of the predictive
// strategy: hour of day and weather condition.
type ConditionsSource interface {
	HourOfDay() int
	Weather() string
}

// PredictiveAlgorithm is a deterministic heuristic, not a trained model. It
// combines driver hour preference, weather fit and the zone's historical
// success rate on top of a flat base score.
type PredictiveAlgorithm struct {
	History    SuccessHistory
	Conditions ConditionsSource
}

func (a *PredictiveAlgorithm) Name() string { return AlgorithmPredictive }

func (a *PredictiveAlgorithm) Select(order model.Order, candidates []model.Driver, sctx scoring.Context) *Selection {
	if len(candidates) == 0 {
		return nil
	}

	var rates map[string]float64
	if a.History != nil {
		rates = a.History.ZoneSuccessRates()
	}

	var (
		best      model.Driver
		bestScore float64
		found     bool
	)
	for _, d := range candidates {
		score := a.predict(d, sctx, rates)
		if !found || score > bestScore {
			best, bestScore, found = d, score, true
		}
	}
	return &Selection{
		Driver:         best,
		Score:          bestScore,
		DistanceMeters: geo.DistanceMeters(best.CurrentLocation, order.MerchantLocation),
		Algorithm:      a.Name(),
	}
}

func (a *PredictiveAlgorithm) predict(d model.Driver, sctx scoring.Context, rates map[string]float64) float64 {
	score := 5.0
	if a.Conditions != nil {
		if d.PrefersHour(a.Conditions.HourOfDay()) {
			score += 2
		}
		if a.Conditions.Weather() == "rain" && d.Vehicle.Type == model.VehicleCar {
			score++
		}
	}
	if sctx.OrderZone != "" {
		score += rates[sctx.OrderZone] * 3
	}
	return math.Min(10, score)
}
