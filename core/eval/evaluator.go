// Package eval scores a simulation run: parsing accuracy against ground
// truth and routing efficiency from completed trips.
package eval

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/mkervran/fleetsim/core/geo"
	"github.com/mkervran/fleetsim/core/logger"
	"github.com/mkervran/fleetsim/core/model"
)

// defaultTimeWindowMin is used when ground truth carries no explicit window.
const defaultTimeWindowMin = 15.0

// score weights
const (
	parsingWeight = 0.3
	routingWeight = 0.7
)

// Evaluator accumulates per-request and per-trip measurements. It is not safe
// for concurrent use; one evaluator belongs to exactly one run.
type Evaluator struct {
	cfg CostConfig
	log logger.Logger

	requests        int
	assigned        int
	parseFailures   int
	routingFailures int

	// parsing accumulators over requests with ground truth
	scored            int
	originZoneMatches int
	destZoneMatches   int
	timeMatches       int
	reqMatches        int
	locationErrors    []float64

	// routing accumulators over completed trips
	tripsCompleted int
	forced         int
	totalRevenue   float64
	idleCost       float64
	penaltyCost    float64
	pickupMinutes  []float64
	deadheadRatios []float64
}

// New creates an evaluator with the given cost model.
func New(cfg CostConfig, log logger.Logger) (*Evaluator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{cfg: cfg, log: log}, nil
}

// EvaluateRequest records per-request parsing accuracy. gt may be nil when no
// ground truth exists; dec may be nil when routing failed after a successful
// parse. Routing metrics are recorded later, when the trip completes.
func (e *Evaluator) EvaluateRequest(gt, parsed *model.StructuredRequest, dec *model.RoutingDecision) {
	e.requests++
	if dec != nil {
		e.assigned++
	}
	if gt == nil || parsed == nil {
		return
	}
	e.scored++
	if geo.ZoneOf(parsed.Origin) == geo.ZoneOf(gt.Origin) {
		e.originZoneMatches++
	}
	if geo.ZoneOf(parsed.Destination) == geo.ZoneOf(gt.Destination) {
		e.destZoneMatches++
	}
	if timeConstraintMatch(gt, parsed) {
		e.timeMatches++
	}
	if parsed.Wheelchair == gt.Wheelchair {
		e.reqMatches++
	}
	locErr := (geo.Miles(gt.Origin, parsed.Origin) + geo.Miles(gt.Destination, parsed.Destination)) / 2
	e.locationErrors = append(e.locationErrors, locErr)
}

// RecordParseFailure counts a request the strategy could not parse.
func (e *Evaluator) RecordParseFailure(requestID string) {
	e.requests++
	e.parseFailures++
	e.penaltyCost += e.cfg.UnmetPenalty
	e.log.Debugf("request %s: parse failure recorded", requestID)
}

// RecordRoutingFailure counts a request left without a vehicle. The
// configured penalty replaces revenue for the request.
func (e *Evaluator) RecordRoutingFailure(requestID string) {
	e.routingFailures++
	e.penaltyCost += e.cfg.UnmetPenalty
	e.log.Debugf("request %s: routing failure recorded", requestID)
}

// RecordTripResult folds a completed trip into the routing metrics.
func (e *Evaluator) RecordTripResult(trip *model.Trip) {
	e.tripsCompleted++
	if trip.Forced {
		e.forced++
	}
	e.totalRevenue += trip.Revenue
	e.idleCost += trip.PickupMiles * e.cfg.IdleCostPerMile
	e.pickupMinutes = append(e.pickupMinutes, trip.ActualPickupMinutes)
	if total := trip.PickupMiles + trip.TripMiles; total > 0 {
		e.deadheadRatios = append(e.deadheadRatios, trip.PickupMiles/total)
	} else {
		e.deadheadRatios = append(e.deadheadRatios, 0)
	}
}

// Summary derives the final report. It is a pure function of the accumulated
// state and may be called repeatedly without double-counting.
func (e *Evaluator) Summary() *Summary {
	s := &Summary{
		RequestsProcessed: e.requests,
		Assigned:          e.assigned,
		TripsCompleted:    e.tripsCompleted,
		ForcedCompletions: e.forced,
		ParseFailures:     e.parseFailures,
		RoutingFailures:   e.routingFailures,
		TotalRevenue:      e.totalRevenue,
		IdleCost:          e.idleCost,
		PenaltyCost:       e.penaltyCost,
	}
	s.NetRevenue = s.TotalRevenue - s.IdleCost - s.PenaltyCost
	if e.scored > 0 {
		s.OriginZoneAccuracy = 100 * float64(e.originZoneMatches) / float64(e.scored)
		s.DestZoneAccuracy = 100 * float64(e.destZoneMatches) / float64(e.scored)
		s.TimeMatchRate = 100 * float64(e.timeMatches) / float64(e.scored)
		s.RequirementMatchRate = 100 * float64(e.reqMatches) / float64(e.scored)
		s.MeanLocationErrorMiles = stat.Mean(e.locationErrors, nil)
	}
	if len(e.pickupMinutes) > 0 {
		s.MeanPickupMinutes = stat.Mean(e.pickupMinutes, nil)
	}
	if len(e.deadheadRatios) > 0 {
		s.MeanDeadheadRatio = stat.Mean(e.deadheadRatios, nil)
	}
	s.ParsingScore = e.parsingScore()
	s.RoutingScore = e.routingScore(s)
	s.OverallScore = parsingWeight*s.ParsingScore + routingWeight*s.RoutingScore
	return s
}

// parsingScore averages the per-request accuracy composite over scored
// requests; parse failures score zero.
func (e *Evaluator) parsingScore() float64 {
	denom := e.scored + e.parseFailures
	if denom == 0 {
		return 0
	}
	sum := 0.25*float64(e.originZoneMatches) +
		0.25*float64(e.destZoneMatches) +
		0.25*float64(e.timeMatches) +
		0.25*float64(e.reqMatches)
	return 100 * sum / float64(denom)
}

func (e *Evaluator) routingScore(s *Summary) float64 {
	if e.requests == 0 {
		return 0
	}
	succeeded := e.requests - e.parseFailures - e.routingFailures
	successRate := float64(succeeded) / float64(e.requests)
	revenueEff := 0.0
	if s.TotalRevenue > 0 {
		revenueEff = clamp01(s.NetRevenue / s.TotalRevenue)
	}
	pickupScore := math.Max(0, 1-s.MeanPickupMinutes/e.cfg.PickupTargetMinutes)
	return 100 * (0.4*successRate + 0.3*revenueEff + 0.15*pickupScore + 0.15*(1-s.MeanDeadheadRatio))
}

func timeConstraintMatch(gt, parsed *model.StructuredRequest) bool {
	window := gt.ArrivalWindowMin
	if window <= 0 {
		window = defaultTimeWindowMin
	}
	if math.Abs(parsed.PickupTime.Sub(gt.PickupTime).Minutes()) > window {
		return false
	}
	if (gt.ArrivalDeadline == nil) != (parsed.ArrivalDeadline == nil) {
		return false
	}
	if gt.ArrivalDeadline != nil &&
		math.Abs(parsed.ArrivalDeadline.Sub(*gt.ArrivalDeadline).Minutes()) > window {
		return false
	}
	return true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
