package config

import (
	"fmt"

	"github.com/mkervran/fleetsim/scenario"
)

// ScenarioConfig selects the request workload for a run. When Path is set the
// scenario file is loaded; otherwise a synthetic workload is generated.
type ScenarioConfig struct {
	Path      string                   `json:"path"`
	Generator scenario.GeneratorConfig `json:"generator"`
}

// SetDefaults applies sane defaults.
func (c *ScenarioConfig) SetDefaults() {
	if c.Path == "" {
		c.Generator.SetDefaults()
	}
}

// Validate checks the generator parameters when no scenario file is given.
func (c ScenarioConfig) Validate() error {
	if c.Path != "" {
		return nil
	}
	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("scenario generator: %w", err)
	}
	return nil
}
