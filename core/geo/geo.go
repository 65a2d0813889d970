package geo

import (
	"math"
	"math/rand"

	"github.com/mkervran/fleetsim/core/model"
)

const earthRadiusMiles = 3958.8

// Miles returns the haversine distance between two locations in miles.
func Miles(a, b model.Location) float64 {
	la1 := a.Lat * math.Pi / 180
	la2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}

// TravelMinutes estimates the driving duration between two locations using
// the speed of the origin's zone.
func TravelMinutes(a, b model.Location) float64 {
	zone := a.Zone
	if zone == "" {
		zone = ZoneOf(a)
	}
	return Miles(a, b) / SpeedMPH(zone) * 60
}

// Jitter returns loc displaced by a uniform random offset of at most maxMiles
// in each axis. Used when seeding vehicle positions from location samples so
// that vehicles sharing a sample do not stack on one point.
func Jitter(loc model.Location, rng *rand.Rand, maxMiles float64) model.Location {
	// one degree of latitude is ~69 miles; longitude shrinks with latitude
	latDeg := maxMiles / 69.0
	lonDeg := latDeg
	if c := math.Cos(loc.Lat * math.Pi / 180); c > 0.1 {
		lonDeg = latDeg / c
	}
	loc.Lat += (rng.Float64()*2 - 1) * latDeg
	loc.Lon += (rng.Float64()*2 - 1) * lonDeg
	return loc
}

// DistanceCalculator estimates distance and travel time between locations.
// The default haversine implementation can be swapped for a higher-fidelity
// road-network calculator.
type DistanceCalculator interface {
	Miles(a, b model.Location) float64
	TravelMinutes(a, b model.Location) float64
}

// HaversineCalculator is the default DistanceCalculator built on the
// great-circle distance and the zone speed model.
type HaversineCalculator struct{}

func (HaversineCalculator) Miles(a, b model.Location) float64 { return Miles(a, b) }

func (HaversineCalculator) TravelMinutes(a, b model.Location) float64 {
	return TravelMinutes(a, b)
}
