package scoring

import "github.com/wassel-delivery/dispatch/core/model"

// vehicleProfile captures the capacity thresholds and base score of a vehicle
// type for order matching.
type vehicleProfile struct {
	maxValue  float64
	maxItems  int
	maxSize   model.OrderSize
	baseScore float64
}

func profileFor(t model.VehicleType) vehicleProfile {
	switch t {
	case model.VehicleMotorcycle:
		return vehicleProfile{maxValue: 300, maxItems: 5, maxSize: model.SizeSmall, baseScore: 8}
	case model.VehicleBicycle:
		return vehicleProfile{maxValue: 150, maxItems: 3, maxSize: model.SizeSmall, baseScore: 6}
	case model.VehicleTruck:
		return vehicleProfile{maxValue: 5000, maxItems: 50, maxSize: model.SizeLarge, baseScore: 5}
	case model.VehicleVan:
		return vehicleProfile{maxValue: 3000, maxItems: 30, maxSize: model.SizeLarge, baseScore: 6}
	default:
		// Unknown types fall back to car thresholds.
		return vehicleProfile{maxValue: 1500, maxItems: 15, maxSize: model.SizeMedium, baseScore: 7}
	}
}

// vehicleMatchScore rates how well a vehicle fits the order's value, item
// count and estimated size.
func vehicleMatchScore(v model.Vehicle, o model.Order) float64 {
	p := profileFor(v.Type)
	size := o.Size()
	score := p.baseScore

	if o.TotalAmount > p.maxValue {
		score -= 3
	}
	if o.ItemCount > p.maxItems {
		score -= 2
	}
	if size == model.SizeLarge && p.maxSize == model.SizeSmall {
		score -= 2
	}

	if size == model.SizeSmall && v.Type == model.VehicleMotorcycle {
		score++
	}
	if size == model.SizeLarge && (v.Type == model.VehicleVan || v.Type == model.VehicleTruck) {
		score++
	}

	return clamp(score, 0, 10)
}
