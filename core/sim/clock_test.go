package sim

import (
	"testing"
	"time"

	"github.com/mkervran/fleetsim/core/model"
	"github.com/mkervran/fleetsim/infra/logger"
)

func TestAdvanceToNeverRewinds(t *testing.T) {
	reg := newTestFleet(t, 1, flat(0, 0))
	clock := NewClock(t0, newTestExecutor(t, reg), logger.NopLogger{}, nil)
	clock.AdvanceTo(t0.Add(-time.Hour))
	if !clock.Now().Equal(t0) {
		t.Fatalf("clock moved backwards to %v", clock.Now())
	}
	clock.AdvanceTo(t0.Add(time.Hour))
	if !clock.Now().Equal(t0.Add(time.Hour)) {
		t.Fatalf("clock did not advance")
	}
}

func TestAdvanceToProcessesNothing(t *testing.T) {
	reg := newTestFleet(t, 1, flat(0, 0))
	exec := newTestExecutor(t, reg)
	trip, _ := exec.Execute(&model.RoutingDecision{RequestID: "r1", VehicleID: "veh0001"},
		&model.StructuredRequest{Origin: flat(0, 1), Destination: flat(0, 3)}, t0)
	clock := NewClock(t0, exec, logger.NopLogger{}, nil)

	clock.AdvanceTo(t0.Add(12 * time.Hour))
	if trip.Status != model.TripEnRouteToPickup || trip.PickupRecorded() {
		t.Fatalf("plain AdvanceTo must not process events")
	}
}

func TestAdvanceWithEventsStopsAtExactInstants(t *testing.T) {
	reg := newTestFleet(t, 1, flat(0, 0))
	exec := newTestExecutor(t, reg)
	trip, _ := exec.Execute(&model.RoutingDecision{RequestID: "r1", VehicleID: "veh0001"},
		&model.StructuredRequest{Origin: flat(0, 1), Destination: flat(0, 3)}, t0)
	clock := NewClock(t0, exec, logger.NopLogger{}, nil)

	// jump far past both events in one call
	clock.AdvanceToWithEvents(t0.Add(24 * time.Hour))

	if !trip.ActualPickupAt.Equal(trip.EstimatedPickupTime) {
		t.Fatalf("pickup stamped %v, must be the scheduled %v, not the jump target",
			trip.ActualPickupAt, trip.EstimatedPickupTime)
	}
	if !trip.ActualDropoffTime.Equal(trip.EstimatedDropoffTime) {
		t.Fatalf("dropoff stamped %v, must be the scheduled %v", trip.ActualDropoffTime, trip.EstimatedDropoffTime)
	}
	if trip.Status != model.TripCompleted {
		t.Fatalf("trip not drained")
	}
	if !clock.Now().Equal(t0.Add(24 * time.Hour)) {
		t.Fatalf("clock must finish at the target")
	}
}

func TestAdvanceWithEventsStopsBeforeFutureEvent(t *testing.T) {
	reg := newTestFleet(t, 1, flat(0, 0))
	exec := newTestExecutor(t, reg)
	trip, _ := exec.Execute(&model.RoutingDecision{RequestID: "r1", VehicleID: "veh0001"},
		&model.StructuredRequest{Origin: flat(0, 1), Destination: flat(0, 3)}, t0)
	clock := NewClock(t0, exec, logger.NopLogger{}, nil)

	// target before the pickup: nothing should fire
	target := trip.EstimatedPickupTime.Add(-time.Minute)
	clock.AdvanceToWithEvents(target)
	if trip.PickupRecorded() {
		t.Fatalf("pickup fired before its scheduled instant")
	}
	if !clock.Now().Equal(target) {
		t.Fatalf("clock at %v want %v", clock.Now(), target)
	}
}

func TestAdvanceWithEventsTerminatesOnPastEvent(t *testing.T) {
	reg := newTestFleet(t, 1, flat(0, 0))
	exec := newTestExecutor(t, reg)
	trip, _ := exec.Execute(&model.RoutingDecision{RequestID: "r1", VehicleID: "veh0001"},
		&model.StructuredRequest{Origin: flat(0, 1), Destination: flat(0, 3)}, t0)

	// inject an event time before the current clock: the loop must log,
	// skip to the target and return instead of spinning
	trip.EstimatedPickupTime = t0.Add(-time.Hour)
	clock := NewClock(t0, exec, logger.NopLogger{}, nil)

	done := make(chan struct{})
	go func() {
		clock.AdvanceToWithEvents(t0.Add(time.Hour))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("AdvanceToWithEvents did not terminate on a past event time")
	}
	if !clock.Now().Equal(t0.Add(time.Hour)) {
		t.Fatalf("clock must land on the target after skipping the bad window")
	}
}

func TestAdvanceWithEventsProcessesEventDueNow(t *testing.T) {
	reg := newTestFleet(t, 1, flat(0, 0))
	exec := newTestExecutor(t, reg)
	trip, _ := exec.Execute(&model.RoutingDecision{RequestID: "r1", VehicleID: "veh0001"},
		&model.StructuredRequest{Origin: flat(0, 1), Destination: flat(0, 3)}, t0)
	clock := NewClock(trip.EstimatedPickupTime, exec, logger.NopLogger{}, nil)

	clock.AdvanceToWithEvents(trip.EstimatedPickupTime.Add(time.Second))
	if !trip.PickupRecorded() {
		t.Fatalf("event due at the current instant must be processed without advancing past it")
	}
}
