package model

import "time"

// TripStatus tracks a trip from assignment to completion.
type TripStatus int

const (
	TripEnRouteToPickup TripStatus = iota
	TripOnTrip
	TripCompleted
)

// String returns a human-readable representation of the trip status.
func (s TripStatus) String() string {
	switch s {
	case TripEnRouteToPickup:
		return "en_route_to_pickup"
	case TripOnTrip:
		return "on_trip"
	case TripCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Trip is the simulator's record of one assignment, keyed by request id.
//
// ActualPickupAt must always equal the EstimatedPickupTime stored at
// assignment, not the clock value at whatever batch processed the event.
// ActualPickupMinutes, once populated, is never reset.
type Trip struct {
	RequestID string
	VehicleID string
	Status    TripStatus

	RequestTime         time.Time
	EstimatedPickupTime time.Time
	// ActualPickupAt is zero until the pickup event is processed.
	ActualPickupAt time.Time
	// ActualPickupMinutes is the wait from request to actual pickup.
	ActualPickupMinutes  float64
	EstimatedDropoffTime time.Time
	ActualDropoffTime    time.Time

	Origin      Location
	Destination Location

	PickupMiles   float64 // vehicle position at assignment to origin
	PickupMinutes float64
	TripMiles     float64 // origin to destination
	TripMinutes   float64

	Revenue float64
	// Forced marks trips completed administratively at end of run.
	Forced bool
}

// PickupRecorded reports whether the pickup event has been processed.
func (t *Trip) PickupRecorded() bool { return !t.ActualPickupAt.IsZero() }

// InFlight reports whether the trip still has a pending pickup or dropoff.
func (t *Trip) InFlight() bool { return t.Status != TripCompleted }

// NextEventTime returns the pending event instant for an in-flight trip:
// the estimated pickup while en route, the estimated dropoff while on trip.
func (t *Trip) NextEventTime() (time.Time, bool) {
	switch t.Status {
	case TripEnRouteToPickup:
		return t.EstimatedPickupTime, true
	case TripOnTrip:
		return t.EstimatedDropoffTime, true
	default:
		return time.Time{}, false
	}
}
