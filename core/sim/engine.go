package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/mkervran/fleetsim/core/eval"
	"github.com/mkervran/fleetsim/core/events"
	"github.com/mkervran/fleetsim/core/fleet"
	"github.com/mkervran/fleetsim/core/logger"
	"github.com/mkervran/fleetsim/core/metrics"
	"github.com/mkervran/fleetsim/core/model"
	"github.com/mkervran/fleetsim/core/strategy"
	"github.com/mkervran/fleetsim/internal/eventbus"
)

// registryView adapts the fleet registry to the strategy FleetView contract.
type registryView struct {
	reg *fleet.Registry
}

func (v registryView) Available(near *model.Location, radiusMiles float64, maxCount int, wheelchair bool) []model.Vehicle {
	return v.reg.QueryAvailable(near, radiusMiles, maxCount, wheelchair)
}

// Engine replays an arrival-ordered request sequence against the fleet,
// invoking the strategy once per request and scoring the outcome. Processing
// is strictly sequential in simulated time; independent engines share no
// state and may run in parallel.
type Engine struct {
	reg   *fleet.Registry
	exec  *Executor
	eval  *eval.Evaluator
	strat strategy.Strategy
	log   logger.Logger
	bus   eventbus.EventBus
	cfg   EngineConfig
}

// NewEngine wires a run. The bus is optional.
func NewEngine(reg *fleet.Registry, exec *Executor, ev *eval.Evaluator, strat strategy.Strategy, cfg EngineConfig, log logger.Logger, bus eventbus.EventBus) (*Engine, error) {
	if reg == nil || exec == nil || ev == nil || strat == nil || log == nil {
		return nil, fmt.Errorf("sim: nil parameter provided to NewEngine")
	}
	cfg.SetDefaults()
	exec.SetCompletionHook(ev.RecordTripResult)
	return &Engine{reg: reg, exec: exec, eval: ev, strat: strat, log: log, bus: bus, cfg: cfg}, nil
}

// SetRecorder forwards completed trips to a metrics sink in addition to the
// evaluator. Call before Run.
func (e *Engine) SetRecorder(rec metrics.SimRecorder) {
	if rec == nil {
		return
	}
	e.exec.SetCompletionHook(func(trip *model.Trip) {
		e.eval.RecordTripResult(trip)
		p := metrics.TripPoint{
			RequestID:     trip.RequestID,
			VehicleID:     trip.VehicleID,
			PickupMiles:   trip.PickupMiles,
			TripMiles:     trip.TripMiles,
			PickupMinutes: trip.ActualPickupMinutes,
			Revenue:       trip.Revenue,
			Forced:        trip.Forced,
			CompletedAt:   trip.ActualDropoffTime,
		}
		if err := rec.RecordTrip(p); err != nil {
			e.log.Warnf("record trip %s: %v", trip.RequestID, err)
		}
	})
}

// Run replays the requests and returns the evaluation summary. Requests must
// be ordered by arrival time. Per-request failures are recovered locally and
// reflected in the summary's failure counters; no request aborts the run.
func (e *Engine) Run(requests []model.NLRequest) (*eval.Summary, error) {
	if len(requests) == 0 {
		return nil, fmt.Errorf("sim: no requests to replay")
	}
	clock := NewClock(requests[0].ArrivalTime, e.exec, e.log, e.bus)

	for _, req := range requests {
		clock.AdvanceToWithEvents(req.ArrivalTime)
		e.handleRequest(clock, req)
	}

	cutoff := requests[len(requests)-1].ArrivalTime.Add(minutes(e.cfg.DrainHorizonMinutes))
	clock.AdvanceToWithEvents(cutoff)
	for _, trip := range e.exec.InFlight() {
		e.log.Warnf("trip %s still in flight at cutoff, forcing completion", trip.RequestID)
		if err := e.exec.ForceComplete(trip, clock.Now()); err != nil {
			e.log.Errorf("force complete %s: %v", trip.RequestID, err)
		}
	}

	summary := e.eval.Summary()
	e.log.Infof("run complete: %d requests, %d trips, overall score %.1f",
		summary.RequestsProcessed, summary.TripsCompleted, summary.OverallScore)
	return summary, nil
}

func (e *Engine) handleRequest(clock *Clock, req model.NLRequest) {
	// ground truth is scoring-only input: the strategy parses from text alone
	parseReq := req
	parseReq.GroundTruth = nil
	parsed, err := e.strat.Parse(parseReq)
	if err != nil {
		requestsProcessed.WithLabelValues("parse_error").Inc()
		e.log.Warnf("request %s: parse failed: %v", req.ID, err)
		e.eval.RecordParseFailure(req.ID)
		e.publishError(clock.Now(), req.ID, events.KindParseError, err)
		return
	}

	dec, err := e.strat.Route(parsed, registryView{reg: e.reg})
	if err != nil {
		requestsProcessed.WithLabelValues("no_vehicle").Inc()
		e.log.Warnf("request %s: routing failed: %v", req.ID, err)
		// parsing accuracy still counts for a parsed but unroutable request
		e.eval.EvaluateRequest(req.GroundTruth, parsed, nil)
		e.eval.RecordRoutingFailure(req.ID)
		e.publishError(clock.Now(), req.ID, events.KindVehicleUnavailable, err)
		return
	}
	dec.RequestID = req.ID

	if _, err := e.exec.Execute(dec, parsed, clock.Now()); err != nil {
		if errors.Is(err, ErrVehicleUnavailable) {
			requestsProcessed.WithLabelValues("vehicle_unavailable").Inc()
			e.log.Warnf("request %s: %v", req.ID, err)
			e.eval.EvaluateRequest(req.GroundTruth, parsed, nil)
			e.eval.RecordRoutingFailure(req.ID)
			e.publishError(clock.Now(), req.ID, events.KindVehicleUnavailable, err)
			return
		}
		requestsProcessed.WithLabelValues("error").Inc()
		e.log.Errorf("request %s: execute: %v", req.ID, err)
		e.eval.RecordRoutingFailure(req.ID)
		return
	}

	requestsProcessed.WithLabelValues("assigned").Inc()
	e.eval.EvaluateRequest(req.GroundTruth, parsed, dec)
}

func (e *Engine) publishError(at time.Time, requestID string, kind events.ErrorKind, err error) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(events.Error{Time: at, RequestID: requestID, Kind: kind, Message: err.Error()})
}
