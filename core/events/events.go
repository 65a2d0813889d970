// Package events defines the trace events published on the bus for every
// simulation state transition. A full trace is sufficient to reconstruct
// vehicle trajectories for debugging or visualization.
package events

import (
	"time"

	"github.com/mkervran/fleetsim/core/model"
)

// Assignment is published when a routing decision is committed to a vehicle.
type Assignment struct {
	Time            time.Time
	RequestID       string
	VehicleID       string
	PickupMiles     float64
	TripMiles       float64
	EstimatedPickup time.Time
}

// Pickup is published when a vehicle picks up its rider.
type Pickup struct {
	Time      time.Time
	RequestID string
	VehicleID string
	Location  model.Location
}

// Dropoff is published when a trip completes.
type Dropoff struct {
	Time      time.Time
	RequestID string
	VehicleID string
	Location  model.Location
	Revenue   float64
	// Forced marks administrative completion at end of run.
	Forced bool
}

// ErrorKind classifies request-level failures surfaced on the trace.
type ErrorKind string

const (
	KindParseError         ErrorKind = "parse_error"
	KindVehicleUnavailable ErrorKind = "vehicle_unavailable"
	KindInvalidEventTime   ErrorKind = "invalid_event_time"
)

// Error is published for recovered per-request failures and scheduler
// invariant violations.
type Error struct {
	Time      time.Time
	RequestID string
	Kind      ErrorKind
	Message   string
}
