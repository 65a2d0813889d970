// Package config loads the service configuration from YAML or JSON files with
// optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mkervran/fleetsim/core/eval"
	"github.com/mkervran/fleetsim/core/fleet"
	"github.com/mkervran/fleetsim/core/metrics"
	"github.com/mkervran/fleetsim/core/sim"
	"github.com/mkervran/fleetsim/infra/mqtt"
)

type Config struct {
	Fleet    fleet.Config     `json:"fleet"`
	Fare     sim.FareConfig   `json:"fare"`
	Costs    eval.CostConfig  `json:"costs"`
	Engine   sim.EngineConfig `json:"engine"`
	Metrics  metrics.Config   `json:"metrics"`
	MQTT     mqtt.Config      `json:"mqtt"`
	Trace    TraceConfig      `json:"trace"`
	Scenario ScenarioConfig   `json:"scenario"`
	Logging  LoggingConfig    `json:"logging"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides, e.g. FS_METRICS__INFLUX_TOKEN.
	if err := k.Load(env.Provider("FS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "fs_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Fleet.SetDefaults()
	cfg.Fare.SetDefaults()
	cfg.Costs.SetDefaults()
	cfg.Engine.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.Trace.SetDefaults()
	cfg.Scenario.SetDefaults()
	cfg.Logging.SetDefaults()
	if err := cfg.Fleet.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Fare.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Costs.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Scenario.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
