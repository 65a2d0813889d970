package eval

import "fmt"

// CostConfig defines the evaluator's cost model.
type CostConfig struct {
	// IdleCostPerMile prices deadhead miles.
	IdleCostPerMile float64 `json:"idle_cost_per_mile"`
	// UnmetPenalty is charged for every request left unassigned.
	UnmetPenalty float64 `json:"unmet_penalty"`
	// PickupTargetMinutes is the wait beyond which the pickup sub-score
	// reaches zero.
	PickupTargetMinutes float64 `json:"pickup_target_minutes"`
}

// SetDefaults applies sane defaults.
func (c *CostConfig) SetDefaults() {
	if c.IdleCostPerMile == 0 {
		c.IdleCostPerMile = 0.65
	}
	if c.UnmetPenalty == 0 {
		c.UnmetPenalty = 10.0
	}
	if c.PickupTargetMinutes == 0 {
		c.PickupTargetMinutes = 30
	}
}

// Validate checks the cost model is sound.
func (c CostConfig) Validate() error {
	if c.IdleCostPerMile < 0 || c.UnmetPenalty < 0 || c.PickupTargetMinutes <= 0 {
		return fmt.Errorf("cost components must not be negative")
	}
	return nil
}
