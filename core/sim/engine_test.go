package sim

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/mkervran/fleetsim/core/eval"
	"github.com/mkervran/fleetsim/core/events"
	"github.com/mkervran/fleetsim/core/fleet"
	"github.com/mkervran/fleetsim/core/geo"
	"github.com/mkervran/fleetsim/core/model"
	"github.com/mkervran/fleetsim/core/strategy"
	"github.com/mkervran/fleetsim/infra/logger"
	"github.com/mkervran/fleetsim/internal/eventbus"
)

// flatParser stands in for a real language parser with deterministic output:
// it reads "from <lat>,<lon> to <lat>,<lon>" texts and routes like Greedy.
type flatParser struct {
	*strategy.Greedy
}

func (p flatParser) Parse(req model.NLRequest) (*model.StructuredRequest, error) {
	var olat, olon, dlat, dlon float64
	if _, err := fmt.Sscanf(req.Text, "from %f,%f to %f,%f", &olat, &olon, &dlat, &dlon); err != nil {
		return nil, fmt.Errorf("%w: %q", strategy.ErrParse, req.Text)
	}
	return &model.StructuredRequest{
		Origin:      flat(olat, olon),
		Destination: flat(dlat, dlon),
		PickupTime:  req.ArrivalTime,
		Passengers:  1,
	}, nil
}

func newTestEngine(t *testing.T, reg *fleet.Registry, bus eventbus.EventBus) (*Engine, *eval.Evaluator) {
	t.Helper()
	exec, err := NewExecutor(reg, nil, FareConfig{}, logger.NopLogger{}, bus)
	if err != nil {
		t.Fatalf("executor: %v", err)
	}
	ev, err := eval.New(eval.CostConfig{}, logger.NopLogger{})
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}
	// test distances are whole degrees, so give the drain a full day
	eng, err := NewEngine(reg, exec, ev, flatParser{strategy.NewGreedy()}, EngineConfig{DrainHorizonMinutes: 1440}, logger.NopLogger{}, bus)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return eng, ev
}

func gtReq(id string, arrival time.Time, origin, dest model.Location) model.NLRequest {
	return model.NLRequest{
		ID:          id,
		ArrivalTime: arrival,
		Text:        fmt.Sprintf("from %g,%g to %g,%g", origin.Lat, origin.Lon, dest.Lat, dest.Lon),
		GroundTruth: &model.StructuredRequest{Origin: origin, Destination: dest, PickupTime: arrival},
	}
}

// Fleet of three idle vehicles at the origin corner; a single request from
// (0,1) to (0,3) must be served by the nearest vehicle with the pickup stamp
// equal to the assignment-time estimate after draining.
func TestSingleRequestScenario(t *testing.T) {
	reg := newTestFleet(t, 3, flat(0, 0))
	eng, _ := newTestEngine(t, reg, nil)

	req := gtReq("r1", t0, flat(0, 1), flat(0, 3))
	summary, err := eng.Run([]model.NLRequest{req})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	trips := eng.exec.Completed()
	if len(trips) != 1 {
		t.Fatalf("expected 1 completed trip got %d", len(trips))
	}
	trip := trips[0]

	pickupMiles := geo.Miles(flat(0, 0), flat(0, 1))
	wantETA := t0.Add(time.Duration(pickupMiles / 18.0 * 60 * float64(time.Minute)))
	if !trip.EstimatedPickupTime.Equal(wantETA) {
		t.Fatalf("estimated pickup %v want request time + travel time %v", trip.EstimatedPickupTime, wantETA)
	}
	if !trip.ActualPickupAt.Equal(wantETA) {
		t.Fatalf("pickup stamp %v want %v after drain", trip.ActualPickupAt, wantETA)
	}
	if trip.PickupMiles <= 0 {
		t.Fatalf("expected positive deadhead miles")
	}
	if want := geo.Miles(flat(0, 1), flat(0, 3)); math.Abs(trip.TripMiles-want) > 1e-9 {
		t.Fatalf("trip miles %v want %v", trip.TripMiles, want)
	}

	v, _ := reg.Get(trip.VehicleID)
	if v.DeadheadMiles <= 0 {
		t.Fatalf("vehicle deadhead miles not accrued")
	}
	if summary.TripsCompleted != 1 || summary.RoutingFailures != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.ForcedCompletions != 0 {
		t.Fatalf("trip should complete naturally within the drain horizon")
	}
}

// Two overlapping requests on a one-vehicle fleet: the second must fail with
// a vehicle-unavailable outcome and increment the failure counter.
func TestOverlappingTripsSameVehicle(t *testing.T) {
	reg := newTestFleet(t, 1, flat(0, 0))
	eng, _ := newTestEngine(t, reg, nil)

	first := gtReq("r1", t0, flat(0, 1), flat(0, 3))
	second := gtReq("r2", t0.Add(time.Minute), flat(0, 1), flat(0, 3))
	summary, err := eng.Run([]model.NLRequest{first, second})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RoutingFailures != 1 {
		t.Fatalf("expected exactly one routing failure got %d", summary.RoutingFailures)
	}
	if summary.TripsCompleted != 1 {
		t.Fatalf("expected one completed trip got %d", summary.TripsCompleted)
	}
	if summary.PenaltyCost == 0 {
		t.Fatalf("unmet request must incur the penalty")
	}
}

func TestSequentialRequestsReuseVehicle(t *testing.T) {
	reg := newTestFleet(t, 1, flat(0, 0))
	eng, _ := newTestEngine(t, reg, nil)

	first := gtReq("r1", t0, flat(0, 0.2), flat(0, 0.4))
	// arrives hours later, after the first trip has fully drained
	second := gtReq("r2", t0.Add(8*time.Hour), flat(0, 0.5), flat(0, 0.6))
	summary, err := eng.Run([]model.NLRequest{first, second})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.TripsCompleted != 2 || summary.RoutingFailures != 0 {
		t.Fatalf("vehicle must serve both sequential requests: %+v", summary)
	}

	// mileage conservation across the whole run
	var tripMiles float64
	for _, trip := range eng.exec.Completed() {
		tripMiles += trip.TripMiles
	}
	s := reg.Statistics()
	if math.Abs(s.TotalMiles-(s.TotalDeadheadMiles+tripMiles)) > 1e-9 {
		t.Fatalf("mileage not conserved: %+v trips %v", s, tripMiles)
	}
}

func TestParseFailureRecovered(t *testing.T) {
	reg := newTestFleet(t, 1, flat(0, 0))
	eng, _ := newTestEngine(t, reg, nil)

	bad := model.NLRequest{ID: "r1", ArrivalTime: t0, Text: "???"}
	good := gtReq("r2", t0.Add(time.Minute), flat(0, 1), flat(0, 2))
	summary, err := eng.Run([]model.NLRequest{bad, good})
	if err != nil {
		t.Fatalf("a parse failure must not abort the run: %v", err)
	}
	if summary.ParseFailures != 1 {
		t.Fatalf("expected 1 parse failure got %d", summary.ParseFailures)
	}
	if summary.TripsCompleted != 1 {
		t.Fatalf("remaining request must still be served")
	}
}

// The structured payload attached for scoring must never reach the parse
// step: an unreadable request fails to parse and drags the parsing score to
// zero even though the payload would have answered everything.
func TestGroundTruthNotFedToParse(t *testing.T) {
	reg := newTestFleet(t, 1, flat(0, 0))
	exec, err := NewExecutor(reg, nil, FareConfig{}, logger.NopLogger{}, nil)
	if err != nil {
		t.Fatalf("executor: %v", err)
	}
	ev, err := eval.New(eval.CostConfig{}, logger.NopLogger{})
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}
	eng, err := NewEngine(reg, exec, ev, strategy.NewGreedy(), EngineConfig{}, logger.NopLogger{}, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	req := model.NLRequest{
		ID:          "r1",
		ArrivalTime: t0,
		Text:        "zzz completely unreadable zzz",
		GroundTruth: &model.StructuredRequest{
			Origin:      model.Location{Lat: 40.7128, Lon: -74.0060, Zone: "downtown"},
			Destination: model.Location{Lat: 40.6413, Lon: -73.7781, Zone: "airport"},
			PickupTime:  t0,
		},
	}
	summary, err := eng.Run([]model.NLRequest{req})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.ParseFailures != 1 {
		t.Fatalf("expected 1 parse failure got %d", summary.ParseFailures)
	}
	if summary.ParsingScore != 0 {
		t.Fatalf("parsing score %v for an unparsed request, want 0", summary.ParsingScore)
	}
	if summary.OriginZoneAccuracy != 0 || summary.RequirementMatchRate != 0 {
		t.Fatalf("accuracy credited without a successful parse: %+v", summary)
	}
}

func TestForceCompleteAtCutoff(t *testing.T) {
	reg := newTestFleet(t, 1, flat(0, 0))
	exec, _ := NewExecutor(reg, nil, FareConfig{}, logger.NopLogger{}, nil)
	ev, _ := eval.New(eval.CostConfig{}, logger.NopLogger{})
	// a one-minute horizon guarantees the trip is still in flight at cutoff
	eng, err := NewEngine(reg, exec, ev, flatParser{strategy.NewGreedy()}, EngineConfig{DrainHorizonMinutes: 1}, logger.NopLogger{}, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	req := gtReq("r1", t0, flat(0, 5), flat(0, 10))
	summary, err := eng.Run([]model.NLRequest{req})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.ForcedCompletions != 1 {
		t.Fatalf("expected forced completion got %+v", summary)
	}
	trip := eng.exec.Completed()[0]
	if !trip.Forced || trip.ActualPickupMinutes != 0 {
		t.Fatalf("forced unpicked trip must carry zero wait: %+v", trip)
	}
}

func TestRunEmitsFullTrace(t *testing.T) {
	reg := newTestFleet(t, 1, flat(0, 0))
	bus := eventbus.New()
	sub := bus.Subscribe()
	eng, _ := newTestEngine(t, reg, bus)

	req := gtReq("r1", t0, flat(0, 1), flat(0, 2))
	if _, err := eng.Run([]model.NLRequest{req}); err != nil {
		t.Fatalf("run: %v", err)
	}
	bus.Close()

	var kinds []string
	for e := range sub {
		switch e.(type) {
		case events.Assignment:
			kinds = append(kinds, "assignment")
		case events.Pickup:
			kinds = append(kinds, "pickup")
		case events.Dropoff:
			kinds = append(kinds, "dropoff")
		}
	}
	want := []string{"assignment", "pickup", "dropoff"}
	if len(kinds) != len(want) {
		t.Fatalf("trace %v want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("trace %v want %v", kinds, want)
		}
	}
}
