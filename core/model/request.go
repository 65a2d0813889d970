package model

import "time"

// NLRequest is a natural-language ride request as it arrives at the engine.
// GroundTruth, when present, is used only for scoring and is never handed to
// the strategy's parse step.
type NLRequest struct {
	ID          string             `json:"id"`
	ArrivalTime time.Time          `json:"arrival_time"`
	Text        string             `json:"text"`
	GroundTruth *StructuredRequest `json:"ground_truth,omitempty"`
}

// StructuredRequest is the machine-readable form of a ride request, either
// parsed by a strategy or carried as ground truth.
type StructuredRequest struct {
	Origin           Location   `json:"origin"`
	Destination      Location   `json:"destination"`
	PickupTime       time.Time  `json:"pickup_time"`
	ArrivalDeadline  *time.Time `json:"arrival_deadline,omitempty"`
	ArrivalWindowMin float64    `json:"arrival_window_min,omitempty"`
	Wheelchair       bool       `json:"wheelchair,omitempty"`
	Passengers       int        `json:"passengers,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

// RoutingDecision is a strategy's answer for one request. Distance and time
// figures are the strategy's own estimates; the simulator computes its own
// from actual positions and keeps both for comparison.
type RoutingDecision struct {
	RequestID        string  `json:"request_id"`
	VehicleID        string  `json:"vehicle_id"`
	EstPickupMiles   float64 `json:"est_pickup_miles"`
	EstPickupMinutes float64 `json:"est_pickup_minutes"`
	EstTripMiles     float64 `json:"est_trip_miles"`
	EstTripMinutes   float64 `json:"est_trip_minutes"`
}
