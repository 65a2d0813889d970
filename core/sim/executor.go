package sim

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mkervran/fleetsim/core/events"
	"github.com/mkervran/fleetsim/core/fleet"
	"github.com/mkervran/fleetsim/core/geo"
	"github.com/mkervran/fleetsim/core/logger"
	"github.com/mkervran/fleetsim/core/model"
	"github.com/mkervran/fleetsim/internal/eventbus"
)

// ErrVehicleUnavailable is returned when a routing decision names a vehicle
// that does not exist or is not idle.
var ErrVehicleUnavailable = errors.New("vehicle unavailable")

// Executor turns routing decisions into tracked in-flight trips and later
// finalizes them. It is the only writer of vehicle state during a run.
type Executor struct {
	fleet *fleet.Registry
	calc  geo.DistanceCalculator
	fare  FareConfig
	log   logger.Logger
	bus   eventbus.EventBus

	active map[string]*model.Trip
	// order preserves assignment order; events sharing a timestamp are
	// processed in this order.
	order      []string
	completed  []*model.Trip
	onComplete func(*model.Trip)
}

// NewExecutor creates an executor bound to the given fleet. The bus is
// optional; calc defaults to the haversine calculator when nil.
func NewExecutor(reg *fleet.Registry, calc geo.DistanceCalculator, fare FareConfig, log logger.Logger, bus eventbus.EventBus) (*Executor, error) {
	if reg == nil || log == nil {
		return nil, fmt.Errorf("sim: nil parameter provided to NewExecutor")
	}
	if calc == nil {
		calc = geo.HaversineCalculator{}
	}
	fare.SetDefaults()
	if err := fare.Validate(); err != nil {
		return nil, err
	}
	return &Executor{
		fleet:  reg,
		calc:   calc,
		fare:   fare,
		log:    log,
		bus:    bus,
		active: make(map[string]*model.Trip),
	}, nil
}

// SetCompletionHook registers a callback invoked for every completed trip.
func (e *Executor) SetCompletionHook(fn func(*model.Trip)) { e.onComplete = fn }

// Execute applies a routing decision to the fleet at simulated time now.
// The simulator computes its own pickup and trip figures from actual
// positions; the strategy's estimates are only logged for comparison.
func (e *Executor) Execute(dec *model.RoutingDecision, req *model.StructuredRequest, now time.Time) (*model.Trip, error) {
	v, err := e.fleet.Get(dec.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrVehicleUnavailable, dec.VehicleID)
	}
	if v.Status != model.StatusIdle {
		return nil, fmt.Errorf("%w: %s is %s", ErrVehicleUnavailable, v.ID, v.Status)
	}

	pickupMiles := e.calc.Miles(v.Location, req.Origin)
	pickupMinutes := e.calc.TravelMinutes(v.Location, req.Origin)
	tripMiles := e.calc.Miles(req.Origin, req.Destination)
	tripMinutes := e.calc.TravelMinutes(req.Origin, req.Destination)
	e.log.Debugw("assignment estimates", map[string]any{
		"request_id":           dec.RequestID,
		"vehicle_id":           v.ID,
		"sim_pickup_miles":     pickupMiles,
		"sim_pickup_minutes":   pickupMinutes,
		"strat_pickup_miles":   dec.EstPickupMiles,
		"strat_pickup_minutes": dec.EstPickupMinutes,
	})

	trip := &model.Trip{
		RequestID:           dec.RequestID,
		VehicleID:           v.ID,
		Status:              model.TripEnRouteToPickup,
		RequestTime:         now,
		EstimatedPickupTime: now.Add(minutes(pickupMinutes)),
		Origin:              req.Origin,
		Destination:         req.Destination,
		PickupMiles:         pickupMiles,
		PickupMinutes:       pickupMinutes,
		TripMiles:           tripMiles,
		TripMinutes:         tripMinutes,
	}
	v.Status = model.StatusEnRouteToPickup
	v.ActiveTripID = trip.RequestID
	e.active[trip.RequestID] = trip
	e.order = append(e.order, trip.RequestID)

	if e.bus != nil {
		e.bus.Publish(events.Assignment{
			Time:            now,
			RequestID:       trip.RequestID,
			VehicleID:       v.ID,
			PickupMiles:     pickupMiles,
			TripMiles:       tripMiles,
			EstimatedPickup: trip.EstimatedPickupTime,
		})
	}
	return trip, nil
}

// ProcessPickup finalizes the pickup event. The pickup timestamp is the
// estimate stored at assignment, never the caller's batch time: processing a
// window of events must not collapse them onto the window's endpoint.
func (e *Executor) ProcessPickup(trip *model.Trip) error {
	v, err := e.fleet.Get(trip.VehicleID)
	if err != nil {
		return err
	}
	v.Location = trip.Origin
	v.Status = model.StatusOnTrip

	trip.ActualPickupAt = trip.EstimatedPickupTime
	trip.ActualPickupMinutes = trip.ActualPickupAt.Sub(trip.RequestTime).Minutes()
	trip.EstimatedDropoffTime = trip.ActualPickupAt.Add(minutes(trip.TripMinutes))
	trip.Status = model.TripOnTrip

	if e.bus != nil {
		e.bus.Publish(events.Pickup{
			Time:      trip.ActualPickupAt,
			RequestID: trip.RequestID,
			VehicleID: v.ID,
			Location:  trip.Origin,
		})
	}
	return nil
}

// ProcessDropoff finalizes the trip at its estimated dropoff instant.
func (e *Executor) ProcessDropoff(trip *model.Trip) error {
	v, err := e.fleet.Get(trip.VehicleID)
	if err != nil {
		return err
	}
	trip.ActualDropoffTime = trip.EstimatedDropoffTime
	e.finish(trip, v, false)
	return nil
}

// ForceComplete finalizes a still in-flight trip administratively at time at.
// Pickup data already recorded is never overwritten; a trip forced before its
// pickup keeps a zero wait rather than inventing one.
func (e *Executor) ForceComplete(trip *model.Trip, at time.Time) error {
	v, err := e.fleet.Get(trip.VehicleID)
	if err != nil {
		return err
	}
	if !trip.PickupRecorded() {
		trip.ActualPickupMinutes = 0
	}
	trip.ActualDropoffTime = at
	trip.Forced = true
	e.finish(trip, v, true)
	return nil
}

func (e *Executor) finish(trip *model.Trip, v *model.Vehicle, forced bool) {
	v.Location = trip.Destination
	v.TotalMiles += trip.PickupMiles + trip.TripMiles
	v.DeadheadMiles += trip.PickupMiles
	v.Status = model.StatusIdle
	v.ActiveTripID = ""

	trip.Revenue = e.fare.Revenue(trip.TripMiles, trip.TripMinutes)
	trip.Status = model.TripCompleted
	delete(e.active, trip.RequestID)
	for i, id := range e.order {
		if id == trip.RequestID {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	e.completed = append(e.completed, trip)

	tripsCompleted.WithLabelValues(strconv.FormatBool(forced)).Inc()
	if trip.PickupRecorded() {
		pickupWait.Observe(trip.ActualPickupMinutes)
	}
	if e.bus != nil {
		e.bus.Publish(events.Dropoff{
			Time:      trip.ActualDropoffTime,
			RequestID: trip.RequestID,
			VehicleID: trip.VehicleID,
			Location:  trip.Destination,
			Revenue:   trip.Revenue,
			Forced:    forced,
		})
	}
	if e.onComplete != nil {
		e.onComplete(trip)
	}
}

// NextEvent returns the earliest pending pickup or dropoff among in-flight
// trips. Ties between trips keep assignment order.
func (e *Executor) NextEvent() (time.Time, bool) {
	var best time.Time
	found := false
	for _, id := range e.order {
		t, ok := e.active[id].NextEventTime()
		if !ok {
			continue
		}
		if !found || t.Before(best) {
			best = t
			found = true
		}
	}
	return best, found
}

// ProcessEventsAt processes every event due exactly at t, in assignment
// order. Each call transitions each due trip by one state at most.
func (e *Executor) ProcessEventsAt(t time.Time) {
	due := make([]*model.Trip, 0, 2)
	for _, id := range e.order {
		trip := e.active[id]
		if ev, ok := trip.NextEventTime(); ok && ev.Equal(t) {
			due = append(due, trip)
		}
	}
	for _, trip := range due {
		var err error
		switch trip.Status {
		case model.TripEnRouteToPickup:
			err = e.ProcessPickup(trip)
		case model.TripOnTrip:
			err = e.ProcessDropoff(trip)
		}
		if err != nil {
			e.log.Errorf("event processing for trip %s: %v", trip.RequestID, err)
		}
	}
}

// InFlight returns the trips still pending, in assignment order.
func (e *Executor) InFlight() []*model.Trip {
	out := make([]*model.Trip, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.active[id])
	}
	return out
}

// Completed returns all finalized trips in completion order.
func (e *Executor) Completed() []*model.Trip { return e.completed }

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}
