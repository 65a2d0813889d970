package model

import "fmt"

// Location is an immutable geographic position with an optional zone label.
type Location struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Zone string  `json:"zone,omitempty"`
}

// VehicleStatus describes the current activity of a fleet vehicle.
type VehicleStatus int

const (
	StatusIdle VehicleStatus = iota
	StatusEnRouteToPickup
	StatusOnTrip
	StatusOffline
)

// String returns a human-readable representation of the status.
func (s VehicleStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusEnRouteToPickup:
		return "en_route_to_pickup"
	case StatusOnTrip:
		return "on_trip"
	case StatusOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Vehicle represents one fleet vehicle. Records are owned by the fleet
// registry; status and mileage are mutated only through the trip lifecycle.
type Vehicle struct {
	ID                   string
	Location             Location
	Status               VehicleStatus
	WheelchairAccessible bool
	TotalMiles           float64 // cumulative miles driven, loaded and empty
	DeadheadMiles        float64 // cumulative miles driven empty to pickups
	ActiveTripID         string  // request id of the in-flight trip, if any
}

// Validate checks that the vehicle record is sound.
func (v Vehicle) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("vehicle id must not be empty")
	}
	if v.TotalMiles < 0 || v.DeadheadMiles < 0 {
		return fmt.Errorf("vehicle %s: mileage must not be negative", v.ID)
	}
	return nil
}

// Available reports whether the vehicle can take a new assignment with the
// given accessibility requirement.
func (v Vehicle) Available(wheelchair bool) bool {
	if v.Status != StatusIdle {
		return false
	}
	if wheelchair && !v.WheelchairAccessible {
		return false
	}
	return true
}
