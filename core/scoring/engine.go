// Package scoring computes composite driver scores for dispatch decisions.
package scoring

import (
	"math"

	"github.com/wassel-delivery/dispatch/core/geo"
	"github.com/wassel-delivery/dispatch/core/model"
)

// Engine scores driver-order pairs using a weighted multi-factor model.
// Weights sum to 1.0; each factor is normalised to [0,10] so the composite
// stays in [0,10] before the zone bonus and at most 11 after it.
type Engine struct {
	DistanceWeight     float64
	RatingWeight       float64
	EfficiencyWeight   float64
	VehicleMatchWeight float64
	CurrentLoadWeight  float64
	PriorityWeight     float64
}

// NewEngine returns an engine with the default production weights.
func NewEngine() Engine {
	return Engine{
		DistanceWeight:     0.35,
		RatingWeight:       0.20,
		EfficiencyWeight:   0.15,
		VehicleMatchWeight: 0.10,
		CurrentLoadWeight:  0.10,
		PriorityWeight:     0.10,
	}
}

// Context carries per-dispatch scoring state.
type Context struct {
	// ExpandedSearch widens the distance falloff once local search failed,
	// keeping far-away drivers viable.
	ExpandedSearch bool
	// OrderZone is the order's resolved zone id, empty when unzoned.
	OrderZone string
	// DriverZone resolves a driver to a zone id; nil disables the zone bonus.
	DriverZone func(model.Driver) string
}

const (
	optimalDistanceMeters = 1000.0
	zoneBonus             = 1.1
)

// Score computes the composite score and its per-factor breakdown for the
// given driver-order pair.
func (e Engine) Score(d model.Driver, o model.Order, ctx Context) (float64, model.ScoreBreakdown) {
	dist := geo.DistanceMeters(d.CurrentLocation, o.MerchantLocation)

	bd := model.ScoreBreakdown{
		Distance:     model.FactorScore{Value: dist, Score: e.distanceScore(dist, ctx.ExpandedSearch), Weight: e.DistanceWeight},
		Rating:       model.FactorScore{Value: d.Rating, Score: ratingScore(d.Rating), Weight: e.RatingWeight},
		Efficiency:   model.FactorScore{Value: float64(d.TotalDeliveries), Score: efficiencyScore(d), Weight: e.EfficiencyWeight},
		VehicleMatch: model.FactorScore{Value: float64(d.Vehicle.Type), Score: vehicleMatchScore(d.Vehicle, o), Weight: e.VehicleMatchWeight},
		CurrentLoad:  model.FactorScore{Value: float64(d.CurrentDeliveries), Score: loadScore(d), Weight: e.CurrentLoadWeight},
		Priority:     model.FactorScore{Value: float64(o.Priority), Score: priorityScore(o.Priority), Weight: e.PriorityWeight},
	}

	total := bd.Distance.Score*bd.Distance.Weight +
		bd.Rating.Score*bd.Rating.Weight +
		bd.Efficiency.Score*bd.Efficiency.Weight +
		bd.VehicleMatch.Score*bd.VehicleMatch.Weight +
		bd.CurrentLoad.Score*bd.CurrentLoad.Weight +
		bd.Priority.Score*bd.Priority.Weight

	if ctx.OrderZone != "" && ctx.DriverZone != nil && ctx.DriverZone(d) == ctx.OrderZone {
		total *= zoneBonus
	}

	return math.Round(total*100) / 100, bd
}

// distanceScore is 10 within the optimal band and decays exponentially past
// it. Expanded search uses a shallower falloff.
func (e Engine) distanceScore(meters float64, expanded bool) float64 {
	if meters <= optimalDistanceMeters {
		return 10
	}
	falloff := 0.5
	if expanded {
		falloff = 0.3
	}
	s := 10 * math.Exp(-falloff*(meters-optimalDistanceMeters)/1000)
	return clamp(s, 0, 10)
}

// ratingScore converts the 5-star rating to the 10-point scale. An unset
// rating defaults to 4.0 stars.
func ratingScore(rating float64) float64 {
	if rating == 0 {
		rating = 4.0
	}
	return math.Min(10, rating*2)
}

// efficiencyScore rewards delivery volume and historical speed.
func efficiencyScore(d model.Driver) float64 {
	avg := d.AvgDeliveryMinutes
	if avg == 0 {
		avg = 30
	}
	volume := math.Min(5, float64(d.TotalDeliveries)/50)
	speed := math.Max(0, 5-(avg-20)/5)
	return math.Min(10, volume+speed)
}

// loadScore maps the driver's utilization to a score. 60-80% utilization is
// considered healthy; drivers at capacity score zero.
func loadScore(d model.Driver) float64 {
	util, atCapacity := d.Utilization()
	if atCapacity {
		return 0
	}
	switch {
	case util <= 0.6:
		return 10
	case util <= 0.8:
		return 8
	case util <= 0.9:
		return 5
	default:
		return 2
	}
}

func priorityScore(p model.Priority) float64 {
	switch p {
	case model.PriorityUrgent:
		return 10
	case model.PriorityHigh:
		return 8
	case model.PriorityLow:
		return 3
	default:
		return 5
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
