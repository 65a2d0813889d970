package geo

import "github.com/mkervran/fleetsim/core/model"

// Zone describes a service-area footprint with its typical driving speed.
type Zone struct {
	Name        string
	Center      model.Location
	RadiusMiles float64
	SpeedMPH    float64
}

// defaultSpeedMPH is used for locations outside any known footprint.
const defaultSpeedMPH = 18.0

// zones is the built-in service-area table. Centers follow a compact
// metro layout; denser zones carry lower speeds.
var zones = []Zone{
	{Name: "downtown", Center: model.Location{Lat: 40.7128, Lon: -74.0060}, RadiusMiles: 2.0, SpeedMPH: 12},
	{Name: "midtown", Center: model.Location{Lat: 40.7549, Lon: -73.9840}, RadiusMiles: 2.5, SpeedMPH: 14},
	{Name: "uptown", Center: model.Location{Lat: 40.8116, Lon: -73.9465}, RadiusMiles: 3.0, SpeedMPH: 16},
	{Name: "brooklyn", Center: model.Location{Lat: 40.6782, Lon: -73.9442}, RadiusMiles: 4.0, SpeedMPH: 18},
	{Name: "queens", Center: model.Location{Lat: 40.7282, Lon: -73.7949}, RadiusMiles: 5.0, SpeedMPH: 22},
	{Name: "airport", Center: model.Location{Lat: 40.6413, Lon: -73.7781}, RadiusMiles: 2.0, SpeedMPH: 25},
}

// Zones returns a copy of the built-in zone table.
func Zones() []Zone {
	out := make([]Zone, len(zones))
	copy(out, zones)
	return out
}

// ZoneCenter returns the center of the named zone and whether it exists.
func ZoneCenter(name string) (model.Location, bool) {
	for _, z := range zones {
		if z.Name == name {
			c := z.Center
			c.Zone = z.Name
			return c, true
		}
	}
	return model.Location{}, false
}

// ZoneOf returns the name of the zone nearest to loc. When loc already
// carries a zone label, that label wins.
func ZoneOf(loc model.Location) string {
	if loc.Zone != "" {
		return loc.Zone
	}
	best := ""
	bestDist := 0.0
	for _, z := range zones {
		d := Miles(loc, z.Center)
		if best == "" || d < bestDist {
			best = z.Name
			bestDist = d
		}
	}
	return best
}

// SpeedMPH returns the typical driving speed of the named zone, or the
// default speed when the zone is unknown.
func SpeedMPH(zone string) float64 {
	for _, z := range zones {
		if z.Name == zone {
			return z.SpeedMPH
		}
	}
	return defaultSpeedMPH
}
