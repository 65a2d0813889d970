package trace

import "github.com/mkervran/fleetsim/core/events"

// FromEvent converts a bus event into its trace record. The second return is
// false for event types that do not belong on the trace.
func FromEvent(e any) (Record, bool) {
	switch ev := e.(type) {
	case events.Assignment:
		return Record{
			Timestamp: ev.Time,
			Kind:      "assignment",
			RequestID: ev.RequestID,
			VehicleID: ev.VehicleID,
			Miles:     ev.PickupMiles + ev.TripMiles,
		}, true
	case events.Pickup:
		return Record{
			Timestamp: ev.Time,
			Kind:      "pickup",
			RequestID: ev.RequestID,
			VehicleID: ev.VehicleID,
			Lat:       ev.Location.Lat,
			Lon:       ev.Location.Lon,
		}, true
	case events.Dropoff:
		kind := "dropoff"
		if ev.Forced {
			kind = "forced_dropoff"
		}
		return Record{
			Timestamp: ev.Time,
			Kind:      kind,
			RequestID: ev.RequestID,
			VehicleID: ev.VehicleID,
			Lat:       ev.Location.Lat,
			Lon:       ev.Location.Lon,
			Revenue:   ev.Revenue,
		}, true
	case events.Error:
		return Record{
			Timestamp: ev.Time,
			Kind:      string(ev.Kind),
			RequestID: ev.RequestID,
			Message:   ev.Message,
		}, true
	default:
		return Record{}, false
	}
}
