package sim

import "fmt"

// FareConfig defines the revenue model for completed trips.
type FareConfig struct {
	BaseFare  float64 `json:"base_fare"`
	PerMile   float64 `json:"per_mile"`
	PerMinute float64 `json:"per_minute"`
}

// SetDefaults applies the standard fare schedule.
func (c *FareConfig) SetDefaults() {
	if c.BaseFare == 0 {
		c.BaseFare = 2.50
	}
	if c.PerMile == 0 {
		c.PerMile = 1.75
	}
	if c.PerMinute == 0 {
		c.PerMinute = 0.35
	}
}

// Validate checks the fare schedule is sound.
func (c FareConfig) Validate() error {
	if c.BaseFare < 0 || c.PerMile < 0 || c.PerMinute < 0 {
		return fmt.Errorf("fare components must not be negative")
	}
	return nil
}

// Revenue computes the fare for a trip of the given length.
func (c FareConfig) Revenue(miles, minutes float64) float64 {
	return c.BaseFare + c.PerMile*miles + c.PerMinute*minutes
}

// EngineConfig holds run-level engine parameters.
type EngineConfig struct {
	// DrainHorizonMinutes bounds how far past the last request arrival the
	// clock advances while draining pending events.
	DrainHorizonMinutes float64 `json:"drain_horizon_minutes"`
}

// SetDefaults applies sane defaults.
func (c *EngineConfig) SetDefaults() {
	if c.DrainHorizonMinutes <= 0 {
		c.DrainHorizonMinutes = 240
	}
}
