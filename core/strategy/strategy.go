// Package strategy defines the dispatch strategy contract evaluated by the
// engine. A strategy is an opaque capability set: parse a natural-language
// request, route a structured request against a fleet view, and estimate
// distance and time between locations. The engine never inspects strategy
// internals.
package strategy

import (
	"errors"

	"github.com/mkervran/fleetsim/core/model"
)

// ErrParse indicates the strategy could not extract a structured request.
var ErrParse = errors.New("request could not be parsed")

// ErrNoVehicleAvailable indicates the strategy found no vehicle to assign.
var ErrNoVehicleAvailable = errors.New("no vehicle available")

// FleetView is the read-only fleet access handed to strategies.
type FleetView interface {
	// Available returns idle vehicles matching the filter, sorted by
	// distance to near when supplied, capped at maxCount.
	Available(near *model.Location, radiusMiles float64, maxCount int, wheelchair bool) []model.Vehicle
}

// Strategy is the pluggable dispatch component under evaluation.
type Strategy interface {
	Parse(req model.NLRequest) (*model.StructuredRequest, error)
	Route(req *model.StructuredRequest, fleet FleetView) (*model.RoutingDecision, error)
	EstimateDistanceTime(origin, dest model.Location) (miles, minutes float64)
}
