package model

import "time"

// FactorScore is one weighted component of a driver's composite score.
type FactorScore struct {
	Value  float64 `json:"value"`
	Score  float64 `json:"score"` // normalised to [0,10]
	Weight float64 `json:"weight"`
}

// ScoreBreakdown details the six scoring factors for a driver-order pair.
// It is kept for observability and never persisted.
type ScoreBreakdown struct {
	Distance     FactorScore `json:"distance"`
	Rating       FactorScore `json:"rating"`
	Efficiency   FactorScore `json:"efficiency"`
	VehicleMatch FactorScore `json:"vehicle_match"`
	CurrentLoad  FactorScore `json:"current_load"`
	Priority     FactorScore `json:"priority"`
}

// RankedDriver pairs a candidate with its composite score for audit output.
type RankedDriver struct {
	Driver    Driver         `json:"driver"`
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// Assignment pairs an order with the chosen driver. It is produced once per
// successful dispatch and handed to the notification sink; the dispatcher
// retains no ownership afterwards.
type Assignment struct {
	ID             string         `json:"assignment_id"`
	OrderID        string         `json:"order_id"`
	DriverID       string         `json:"driver_id"`
	Driver         Driver         `json:"driver"`
	Score          float64        `json:"score"`
	DistanceMeters float64        `json:"distance_meters"`
	Algorithm      string         `json:"algorithm"`
	Ranking        []RankedDriver `json:"ranking,omitempty"` // top 3 at most
	Timestamp      time.Time      `json:"timestamp"`
}
