package fleet

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/mkervran/fleetsim/core/geo"
	"github.com/mkervran/fleetsim/core/logger"
	"github.com/mkervran/fleetsim/core/model"
)

// ErrVehicleNotFound is returned when a vehicle id is unknown to the registry.
var ErrVehicleNotFound = errors.New("vehicle not found")

// seedJitterMiles bounds the positional jitter applied to seeded placements.
const seedJitterMiles = 0.25

// Config holds fleet initialization parameters.
type Config struct {
	// Size is the number of vehicles to create.
	Size int `json:"size"`
	// WheelchairRatio is the fraction of accessible vehicles in [0,1].
	WheelchairRatio float64 `json:"wheelchair_ratio"`
	// SeedLocations, when present, seed vehicle positions round-robin with
	// small jitter instead of the even zone spread.
	SeedLocations []model.Location `json:"seed_locations,omitempty"`
	// Seed drives the deterministic placement RNG.
	Seed int64 `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Seed == 0 {
		c.Seed = 1
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("fleet size must be positive, got %d", c.Size)
	}
	if c.WheelchairRatio < 0 || c.WheelchairRatio > 1 {
		return fmt.Errorf("wheelchair ratio must be in [0,1], got %v", c.WheelchairRatio)
	}
	return nil
}

// Stats aggregates fleet counters. Computed on demand, never cached.
type Stats struct {
	Total              int
	Idle               int
	EnRouteToPickup    int
	OnTrip             int
	Offline            int
	Wheelchair         int
	TotalMiles         float64
	TotalDeadheadMiles float64
}

// Registry is the single owner of vehicle records. All mutation goes through
// its methods or the lifecycle executor holding it; callers never keep raw
// references across event-processing steps.
type Registry struct {
	vehicles map[string]*model.Vehicle
	order    []string
	log      logger.Logger
}

// New creates a registry with cfg.Size idle vehicles. Seeded placement walks
// the seed locations round-robin with jitter; without seeds, vehicles are
// spread evenly across the zone footprints.
func New(cfg Config, log logger.Logger) (*Registry, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	r := &Registry{vehicles: make(map[string]*model.Vehicle, cfg.Size), log: log}

	accessible := int(math.Ceil(cfg.WheelchairRatio * float64(cfg.Size)))
	stride := 1
	if accessible > 0 {
		stride = cfg.Size / accessible
		if stride < 1 {
			stride = 1
		}
	}
	zones := geo.Zones()
	for i := 0; i < cfg.Size; i++ {
		id := fmt.Sprintf("veh%04d", i+1)
		var loc model.Location
		if len(cfg.SeedLocations) > 0 {
			loc = geo.Jitter(cfg.SeedLocations[i%len(cfg.SeedLocations)], rng, seedJitterMiles)
		} else {
			z := zones[i%len(zones)]
			loc = geo.Jitter(z.Center, rng, z.RadiusMiles/2)
			loc.Zone = z.Name
		}
		v := &model.Vehicle{
			ID:                   id,
			Location:             loc,
			Status:               model.StatusIdle,
			WheelchairAccessible: accessible > 0 && i%stride == 0 && i/stride < accessible,
		}
		r.vehicles[id] = v
		r.order = append(r.order, id)
	}
	log.Infof("fleet initialized: %d vehicles, %d wheelchair accessible", cfg.Size, accessible)
	return r, nil
}

// Get returns the vehicle record for id.
func (r *Registry) Get(id string) (*model.Vehicle, error) {
	v, ok := r.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrVehicleNotFound, id)
	}
	return v, nil
}

// QueryAvailable returns idle vehicles matching the accessibility filter,
// sorted by distance to near when supplied, capped at maxCount. A zero or
// negative radius disables the radius cut. Side-effect free; the returned
// records are copies.
func (r *Registry) QueryAvailable(near *model.Location, radiusMiles float64, maxCount int, wheelchair bool) []model.Vehicle {
	var out []model.Vehicle
	for _, id := range r.order {
		v := r.vehicles[id]
		if !v.Available(wheelchair) {
			continue
		}
		if near != nil && radiusMiles > 0 && geo.Miles(v.Location, *near) > radiusMiles {
			continue
		}
		out = append(out, *v)
	}
	if near != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return geo.Miles(out[i].Location, *near) < geo.Miles(out[j].Location, *near)
		})
	}
	if maxCount > 0 && len(out) > maxCount {
		out = out[:maxCount]
	}
	return out
}

// Snapshot returns copies of all vehicle records in creation order.
func (r *Registry) Snapshot() []model.Vehicle {
	out := make([]model.Vehicle, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.vehicles[id])
	}
	return out
}

// Statistics computes aggregate counters from current state.
func (r *Registry) Statistics() Stats {
	var s Stats
	for _, id := range r.order {
		v := r.vehicles[id]
		s.Total++
		switch v.Status {
		case model.StatusIdle:
			s.Idle++
		case model.StatusEnRouteToPickup:
			s.EnRouteToPickup++
		case model.StatusOnTrip:
			s.OnTrip++
		case model.StatusOffline:
			s.Offline++
		}
		if v.WheelchairAccessible {
			s.Wheelchair++
		}
		s.TotalMiles += v.TotalMiles
		s.TotalDeadheadMiles += v.DeadheadMiles
	}
	return s
}
