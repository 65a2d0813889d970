package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mkervran/fleetsim/core/geo"
	"github.com/mkervran/fleetsim/core/model"
)

// Greedy is the baseline strategy shipped with the engine: it recovers the
// structured request with a keyword scan of the text and routes to the
// nearest matching idle vehicle.
type Greedy struct {
	calc geo.DistanceCalculator
	// SearchRadiusMiles bounds the candidate query; zero means unbounded.
	SearchRadiusMiles float64
	// MaxCandidates caps the candidate query; zero means unbounded.
	MaxCandidates int
}

// NewGreedy returns a Greedy strategy using the haversine calculator.
func NewGreedy() *Greedy {
	return &Greedy{calc: geo.HaversineCalculator{}, MaxCandidates: 10}
}

// Parse extracts a structured request by scanning the text for zone names
// and a wheelchair keyword. The first two zones mentioned, in text order,
// become origin and destination. Any structured payload attached to the
// request is ignored.
func (g *Greedy) Parse(req model.NLRequest) (*model.StructuredRequest, error) {
	text := strings.ToLower(req.Text)
	type mention struct {
		idx int
		loc model.Location
	}
	var mentions []mention
	for _, z := range geo.Zones() {
		if idx := strings.Index(text, z.Name); idx >= 0 {
			c := z.Center
			c.Zone = z.Name
			mentions = append(mentions, mention{idx: idx, loc: c})
		}
	}
	sort.Slice(mentions, func(i, j int) bool { return mentions[i].idx < mentions[j].idx })
	if len(mentions) < 2 {
		return nil, fmt.Errorf("%w: need origin and destination zones in %q", ErrParse, req.Text)
	}
	return &model.StructuredRequest{
		Origin:      mentions[0].loc,
		Destination: mentions[1].loc,
		PickupTime:  req.ArrivalTime,
		Wheelchair:  strings.Contains(text, "wheelchair"),
		Passengers:  1,
	}, nil
}

// Route assigns the nearest idle vehicle matching the accessibility
// requirement and fills in the strategy's own estimates.
func (g *Greedy) Route(req *model.StructuredRequest, fleet FleetView) (*model.RoutingDecision, error) {
	cands := fleet.Available(&req.Origin, g.SearchRadiusMiles, g.MaxCandidates, req.Wheelchair)
	if len(cands) == 0 {
		return nil, ErrNoVehicleAvailable
	}
	v := cands[0]
	pm, pt := g.EstimateDistanceTime(v.Location, req.Origin)
	tm, tt := g.EstimateDistanceTime(req.Origin, req.Destination)
	return &model.RoutingDecision{
		VehicleID:        v.ID,
		EstPickupMiles:   pm,
		EstPickupMinutes: pt,
		EstTripMiles:     tm,
		EstTripMinutes:   tt,
	}, nil
}

// EstimateDistanceTime reports the haversine distance and zone-speed travel
// time between two locations.
func (g *Greedy) EstimateDistanceTime(origin, dest model.Location) (float64, float64) {
	return g.calc.Miles(origin, dest), g.calc.TravelMinutes(origin, dest)
}
