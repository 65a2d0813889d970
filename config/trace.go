package config

// TraceConfig defines where the run trace is persisted.
type TraceConfig struct {
	// Enabled turns the JSONL trace store on.
	Enabled bool `json:"enabled"`
	// Path is the trace file location.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *TraceConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "run-trace.jsonl"
	}
}
