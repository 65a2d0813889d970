package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkervran/fleetsim/config"
	"github.com/mkervran/fleetsim/infra/trace"
)

const scenarioYAML = `
name: smoke
requests:
  - id: req-1
    arrival_time: 2025-03-01T08:00:00Z
    text: "ride from downtown to midtown"
    ground_truth:
      origin: {lat: 40.7130, lon: -74.0060, zone: downtown}
      destination: {lat: 40.7549, lon: -73.9840, zone: midtown}
      pickup_time: 2025-03-01T08:05:00Z
`

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func smokeConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	scPath := writeFile(t, dir, "smoke.yaml", scenarioYAML)
	cfgPath := writeFile(t, dir, "config.yaml", `
fleet:
  size: 3
  seed: 1
trace:
  enabled: true
  path: "`+filepath.Join(dir, "trace.jsonl")+`"
scenario:
  path: "`+scPath+`"
`)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestServiceRunWritesTrace(t *testing.T) {
	cfg := smokeConfig(t)
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RequestsProcessed != 1 || summary.TripsCompleted != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.OverallScore <= 0 {
		t.Fatalf("expected positive overall score, got %f", summary.OverallScore)
	}

	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	store, err := trace.NewJSONLStore(cfg.Trace.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	recs, err := store.Query(context.Background(), trace.Query{})
	if err != nil {
		t.Fatal(err)
	}
	kinds := map[string]bool{}
	for _, r := range recs {
		if r.RequestID == "req-1" {
			kinds[r.Kind] = true
		}
	}
	for _, want := range []string{"assignment", "pickup", "dropoff"} {
		if !kinds[want] {
			t.Fatalf("trace missing %s record, got %v", want, kinds)
		}
	}
}

func TestServiceRunGeneratedWorkload(t *testing.T) {
	cfg := smokeConfig(t)
	cfg.Scenario.Path = ""
	cfg.Scenario.Generator.SetDefaults()
	cfg.Scenario.Generator.Count = 10
	cfg.Scenario.Generator.Seed = 4
	cfg.Trace.Enabled = false
	cfg.Fleet.Size = 20

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RequestsProcessed != 10 {
		t.Fatalf("expected 10 requests processed, got %d", summary.RequestsProcessed)
	}
}
