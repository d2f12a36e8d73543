package model

// Coordinate is a WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// VehicleType classifies the delivery vehicle a driver operates.
type VehicleType int

const (
	VehicleUnknown VehicleType = iota
	VehicleMotorcycle
	VehicleCar
	VehicleBicycle
	VehicleTruck
	VehicleVan
)

// String returns a human-readable representation of the vehicle type.
func (t VehicleType) String() string {
	switch t {
	case VehicleMotorcycle:
		return "motorcycle"
	case VehicleCar:
		return "car"
	case VehicleBicycle:
		return "bicycle"
	case VehicleTruck:
		return "truck"
	case VehicleVan:
		return "van"
	default:
		return "unknown"
	}
}

// ParseVehicleType maps a wire-level vehicle type string to its enum value.
// Unrecognised strings map to VehicleUnknown, which scoring treats as a car.
func ParseVehicleType(s string) VehicleType {
	switch s {
	case "motorcycle":
		return VehicleMotorcycle
	case "car":
		return VehicleCar
	case "bicycle":
		return VehicleBicycle
	case "truck":
		return VehicleTruck
	case "van":
		return VehicleVan
	default:
		return VehicleUnknown
	}
}

// MarshalText encodes the vehicle type as its wire string.
func (t VehicleType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a wire-level vehicle type string.
func (t *VehicleType) UnmarshalText(b []byte) error {
	*t = ParseVehicleType(string(b))
	return nil
}

// MaxConcurrentDeliveries returns how many deliveries a vehicle of this type
// can carry at once.
func (t VehicleType) MaxConcurrentDeliveries() int {
	switch t {
	case VehicleMotorcycle:
		return 3
	case VehicleCar:
		return 5
	case VehicleBicycle:
		return 2
	case VehicleTruck:
		return 10
	case VehicleVan:
		return 8
	default:
		return 3
	}
}

// Vehicle describes the vehicle a driver is currently operating.
type Vehicle struct {
	Type VehicleType `json:"type"`
	// CapacityHint is a free-form note from the fleet system, kept for
	// observability only. Scoring relies on Type alone.
	CapacityHint string `json:"capacity_hint,omitempty"`
}

// Driver is the candidate view of a driver as read from the driver provider.
// The dispatcher only holds a snapshot for the duration of one dispatch call.
type Driver struct {
	ID                string     `json:"driver_id"`
	CurrentLocation   Coordinate `json:"current_location"`
	Vehicle           Vehicle    `json:"vehicle"`
	Rating            float64    `json:"rating"` // 0 when unset, otherwise in [0,5]
	TotalDeliveries   int        `json:"total_deliveries"`
	CurrentDeliveries int        `json:"current_deliveries"`
	Zone              string     `json:"zone,omitempty"` // empty when not assigned to a zone
	// AvgDeliveryMinutes is the driver's historical average delivery time.
	// 0 means unknown; scoring substitutes a 30 minute default.
	AvgDeliveryMinutes float64 `json:"avg_delivery_minutes,omitempty"`
	// PreferredHours lists the hours of day (0-23) the driver usually works.
	// Only the predictive strategy consults it.
	PreferredHours []int `json:"preferred_hours,omitempty"`
}

// Utilization returns the driver's current load as a fraction of the vehicle
// capacity, and whether the driver is at or over capacity.
func (d Driver) Utilization() (float64, bool) {
	max := d.Vehicle.Type.MaxConcurrentDeliveries()
	if d.CurrentDeliveries >= max {
		return 1, true
	}
	return float64(d.CurrentDeliveries) / float64(max), false
}

// PrefersHour reports whether the given hour of day is among the driver's
// preferred working hours.
func (d Driver) PrefersHour(hour int) bool {
	for _, h := range d.PreferredHours {
		if h == hour {
			return true
		}
	}
	return false
}
